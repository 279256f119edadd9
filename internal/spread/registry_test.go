package spread_test

import (
	"redis-spread-queue/internal/spread"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := spread.NewRegistry()
	h := spread.Handler{Name: "report.generate", Signature: spread.Signature{RequiredPositional: 1}, Duration: 2 * time.Hour}
	require.NoError(t, r.Register(h))

	got, err := r.Get("report.generate")
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestRegistry_GetUnknown(t *testing.T) {
	_, err := spread.NewRegistry().Get("nonexistent")
	require.ErrorIs(t, err, spread.ErrHandlerNotFound)
}

func TestRegistry_Rejects(t *testing.T) {
	r := spread.NewRegistry()
	require.NoError(t, r.Register(spread.Handler{Name: "a"}))

	assert.ErrorIs(t, r.Register(spread.Handler{Name: "a"}), spread.ErrDuplicateHandler)
	assert.ErrorIs(t, r.Register(spread.Handler{}), spread.ErrInvalidHandler)
	assert.ErrorIs(t, r.Register(spread.Handler{Name: "b", Duration: 1500 * time.Millisecond}), spread.ErrInvalidDuration)
	assert.ErrorIs(t, r.Register(spread.Handler{Name: "c", Method: "fib"}), spread.ErrInvalidMethod)
}

func TestRegistry_AcceptsNamedParameters(t *testing.T) {
	r := spread.NewRegistry()
	require.NoError(t, r.Register(spread.Handler{Name: "kw", Signature: spread.Signature{RequiredNamed: 1}}))
}

func TestRegistry_Names(t *testing.T) {
	r := spread.NewRegistry()
	for _, n := range []string{"job-c", "job-a", "job-b"} {
		require.NoError(t, r.Register(spread.Handler{Name: n}))
	}
	assert.Equal(t, []string{"job-a", "job-b", "job-c"}, r.Names())
}
