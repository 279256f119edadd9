package spread_test

import (
	"redis-spread-queue/internal/spread"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffset_RandomWithinWindow(t *testing.T) {
	for _, d := range []int64{1, 2, 7, 3600, 86400} {
		for range 200 {
			n, err := spread.Offset(spread.CryptoSource{}, spread.MethodRandom, d, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, int64(0))
			assert.Less(t, n, d)
		}
	}
}

func TestOffset_ModuloIsDeterministic(t *testing.T) {
	for _, k := range []int64{0, 1, 59, 60, 1234, 10_000, 1 << 40} {
		first, err := spread.Offset(nil, spread.MethodModulo, 60, k)
		require.NoError(t, err)
		again, err := spread.Offset(nil, spread.MethodModulo, 60, k)
		require.NoError(t, err)

		assert.Equal(t, k%60, first)
		assert.Equal(t, first, again)
	}
}

func TestOffset_NegativeModuloKey(t *testing.T) {
	n, err := spread.Offset(nil, spread.MethodModulo, 60, -61)
	require.NoError(t, err)
	assert.Equal(t, int64(59), n)
}

func TestOffset_EmptyWindow(t *testing.T) {
	called := false
	src := spread.SourceFunc(func(int64) (int64, error) {
		called = true
		return 1, nil
	})

	for _, m := range []spread.Method{spread.MethodRandom, spread.MethodModulo} {
		n, err := spread.Offset(src, m, 0, 1234)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	assert.False(t, called)
}

func TestOffset_SourceOutOfRange(t *testing.T) {
	src := spread.SourceFunc(func(n int64) (int64, error) { return n, nil })
	_, err := spread.Offset(src, spread.MethodRandom, 10, 0)
	require.Error(t, err)
}

func TestOffset_UnknownMethod(t *testing.T) {
	_, err := spread.Offset(nil, spread.Method("fib"), 10, 0)
	require.ErrorIs(t, err, spread.ErrInvalidMethod)
}

func TestParseMethod(t *testing.T) {
	cases := map[string]spread.Method{
		"rand":   spread.MethodRandom,
		"random": spread.MethodRandom,
		":rand":  spread.MethodRandom,
		"mod":    spread.MethodModulo,
		"MODULO": spread.MethodModulo,
		" :mod ": spread.MethodModulo,
	}
	for in, want := range cases {
		got, err := spread.ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := spread.ParseMethod("")
	require.ErrorIs(t, err, spread.ErrInvalidMethod)
}
