package spread

import (
	"fmt"
	"time"
)

// DefaultDuration is the spread window used when neither the call nor the
// handler sets one.
const DefaultDuration = time.Hour

// Signature describes the positional and named parameters a job handler
// expects. It is declared when the handler is registered.
type Signature struct {
	RequiredPositional int `json:"required" yaml:"required"`
	OptionalPositional int `json:"optional" yaml:"optional"`
	RequiredNamed      int `json:"required_named" yaml:"required_named"`
	OptionalNamed      int `json:"optional_named" yaml:"optional_named"`
}

// HasNamed reports whether the handler declares any named parameter.
// Such handlers cannot be scheduled: the queue only carries positional
// arguments.
func (s Signature) HasNamed() bool {
	return s.RequiredNamed > 0 || s.OptionalNamed > 0
}

// Handler is a job type together with its call shape and spread defaults.
type Handler struct {
	Name      string
	Signature Signature

	// Duration is the default spread window. A zero Duration selects
	// DefaultDuration unless HasDuration is set, in which case the handler
	// runs immediately unless a call asks otherwise.
	Duration    time.Duration
	HasDuration bool

	// Method is the default spread method. Empty selects MethodRandom.
	Method Method
}

func (h Handler) defaults() (int64, Method, error) {
	d := h.Duration
	if d == 0 && !h.HasDuration {
		d = DefaultDuration
	}
	if d < 0 || d%time.Second != 0 {
		return 0, "", fmt.Errorf("%w: handler %s has %s", ErrInvalidDuration, h.Name, h.Duration)
	}

	m := h.Method
	if m == "" {
		m = MethodRandom
	}
	m, err := methodOf(m)
	if err != nil {
		return 0, "", fmt.Errorf("handler %s: %w", h.Name, err)
	}
	return int64(d / time.Second), m, nil
}

// reconcile decides whether the payload left in a popped map goes back onto
// the argument list. It does when the handler still needs a required slot,
// or has an optional slot and the map is not empty. Otherwise the map was
// pure control and is dropped.
func reconcile(sig Signature, ex extraction) []any {
	args := ex.args
	if !ex.popped {
		return args
	}
	n := len(args)
	switch {
	case n < sig.RequiredPositional:
		return append(args, ex.residual)
	case n < sig.RequiredPositional+sig.OptionalPositional && len(ex.residual) > 0:
		return append(args, ex.residual)
	}
	return args
}
