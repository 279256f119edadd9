package spread

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Control keys recognized in the trailing argument map.
const (
	KeyDuration = "spread_duration"
	KeyIn       = "spread_in"
	KeyAt       = "spread_at"
	KeyMethod   = "spread_method"
	KeyModValue = "spread_mod_value"
)

var controlKeys = [...]string{KeyDuration, KeyIn, KeyAt, KeyMethod, KeyModValue}

// Map is the trailing argument type that may carry control keys.
type Map = map[string]any

// Options is the validated control set for a single call.
type Options struct {
	Duration    int64 // seconds
	StartIn     int64 // seconds from now
	StartAt     int64 // unix seconds, only meaningful when HasStartAt
	HasStartAt  bool
	Method      Method
	ModValue    int64
	HasModValue bool
}

// extraction is the result of splitting the raw argument list.
type extraction struct {
	args     []any
	control  map[string]any
	residual Map
	popped   bool
}

func symbolKey(k string) string { return ":" + k }

func isControlKey(k string) bool {
	for _, c := range controlKeys {
		if k == c || k == symbolKey(c) {
			return true
		}
	}
	return false
}

// extract pops a trailing Map off args and separates control keys from
// payload keys. The caller's slice and map are never modified.
func extract(args []any) extraction {
	n := len(args)
	if n == 0 {
		return extraction{}
	}
	m, ok := args[n-1].(Map)
	if !ok {
		return extraction{args: append([]any(nil), args...)}
	}

	ex := extraction{
		args:     append([]any(nil), args[:n-1]...),
		control:  make(map[string]any, len(controlKeys)),
		residual: make(Map, len(m)),
		popped:   true,
	}
	for _, c := range controlKeys {
		// the symbol form wins when both are present
		if v, ok := m[symbolKey(c)]; ok && !blank(v) {
			ex.control[c] = v
		} else if v, ok := m[c]; ok && !blank(v) {
			ex.control[c] = v
		}
	}
	for k, v := range m {
		if !isControlKey(k) {
			ex.residual[k] = v
		}
	}
	return ex
}

func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case Method:
		return x == ""
	}
	return false
}

// resolve validates the extracted control values against the handler
// defaults. fwd is the reconciled argument list used for the modulo key
// fallback.
func (ex extraction) resolve(duration int64, method Method, fwd []any) (Options, error) {
	o := Options{Duration: duration, Method: method}

	if v, ok := ex.control[KeyDuration]; ok {
		d, ok := toSeconds(v)
		if !ok || d < 0 {
			return Options{}, fmt.Errorf("%w: got %v (%T)", ErrInvalidDuration, v, v)
		}
		o.Duration = d
	}

	if v, ok := ex.control[KeyMethod]; ok {
		m, err := methodOf(v)
		if err != nil {
			return Options{}, err
		}
		o.Method = m
	}

	if o.Method == MethodModulo {
		v, ok := ex.control[KeyModValue]
		if !ok && len(fwd) > 0 {
			v, ok = fwd[0], true
		}
		k, isInt := toInt64(v)
		if !ok || !isInt {
			return Options{}, ErrMissingModuloKey
		}
		o.ModValue, o.HasModValue = k, true
	}

	if v, ok := ex.control[KeyIn]; ok {
		in, ok := toSeconds(v)
		if !ok {
			return Options{}, fmt.Errorf("%w: %s got %v (%T)", ErrInvalidStart, KeyIn, v, v)
		}
		o.StartIn = in
	}

	if v, ok := ex.control[KeyAt]; ok {
		at, ok := toUnix(v)
		if !ok {
			return Options{}, fmt.Errorf("%w: %s got %v (%T)", ErrInvalidStart, KeyAt, v, v)
		}
		o.StartAt, o.HasStartAt = at, true
	}

	return o, nil
}

// addOffset adds a non-negative offset to a start value. It reports false
// when the sum does not fit in an int64.
func addOffset(start, offset int64) (int64, bool) {
	if start > 0 && offset > math.MaxInt64-start {
		return 0, false
	}
	return start + offset, true
}

// toInt64 accepts Go integer kinds and integral json.Numbers. Floats and
// strings are rejected rather than coerced.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt64(n)
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func uintToInt64(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

// toSeconds is toInt64 plus whole-second time.Durations.
func toSeconds(v any) (int64, bool) {
	if d, ok := v.(time.Duration); ok {
		if d%time.Second != 0 {
			return 0, false
		}
		return int64(d / time.Second), true
	}
	return toInt64(v)
}

func toUnix(v any) (int64, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		return t.Unix(), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return 0, false
		}
		return t.Unix(), true
	}
	return toInt64(v)
}
