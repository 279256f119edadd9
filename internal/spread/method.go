package spread

import (
	"fmt"
	"strings"
)

// Method selects how the offset inside the spread window is computed.
type Method string

const (
	// MethodRandom draws the offset uniformly from [0, duration).
	MethodRandom Method = "rand"
	// MethodModulo uses key mod duration, so the same key always lands on
	// the same slot.
	MethodModulo Method = "mod"
)

// ParseMethod accepts rand, random, mod and modulo, optionally written in
// symbol form (":mod").
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ":")) {
	case "rand", "random":
		return MethodRandom, nil
	case "mod", "modulo":
		return MethodModulo, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidMethod, s)
}

// Valid reports whether m is one of the known methods.
func (m Method) Valid() bool {
	return m == MethodRandom || m == MethodModulo
}

func (m Method) String() string { return string(m) }

func methodOf(v any) (Method, error) {
	switch m := v.(type) {
	case Method:
		if m.Valid() {
			return m, nil
		}
		return ParseMethod(string(m))
	case string:
		return ParseMethod(m)
	}
	return "", fmt.Errorf("%w: got %T", ErrInvalidMethod, v)
}
