package spread

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Source yields uniformly distributed integers in [0, n). Implementations
// must be safe for concurrent use.
type Source interface {
	Int63n(n int64) (int64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(n int64) (int64, error)

func (f SourceFunc) Int63n(n int64) (int64, error) { return f(n) }

// CryptoSource reads from crypto/rand.
type CryptoSource struct{}

func (CryptoSource) Int63n(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, fmt.Errorf("spread: read random offset: %w", err)
	}
	return v.Int64(), nil
}

// Offset computes the position inside a window of duration seconds. It is
// zero for an empty window. MethodModulo returns the non-negative remainder
// of key, so negative keys still land inside the window.
func Offset(src Source, method Method, duration, key int64) (int64, error) {
	if duration <= 0 {
		return 0, nil
	}
	switch method {
	case MethodRandom:
		n, err := src.Int63n(duration)
		if err != nil {
			return 0, err
		}
		if n < 0 || n >= duration {
			return 0, fmt.Errorf("spread: random offset %d outside [0, %d)", n, duration)
		}
		return n, nil
	case MethodModulo:
		r := key % duration
		if r < 0 {
			r += duration
		}
		return r, nil
	}
	return 0, fmt.Errorf("%w: got %q", ErrInvalidMethod, method)
}
