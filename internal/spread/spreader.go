package spread

import (
	"context"
	"fmt"
	"log/slog"
)

// Enqueuer is the queue client a Call is handed to. Each method returns the
// queue's job id.
type Enqueuer interface {
	EnqueueNow(ctx context.Context, args []any) (string, error)
	EnqueueIn(ctx context.Context, seconds int64, args []any) (string, error)
	EnqueueAt(ctx context.Context, unix int64, args []any) (string, error)
}

// Mode is the queue operation a Call is dispatched to.
type Mode string

const (
	ModeNow     Mode = "now"
	ModeDelayed Mode = "delayed"
	ModeAt      Mode = "at"
)

// Call is the outcome of planning: the arguments to forward and when to run.
type Call struct {
	Handler string `json:"handler"`
	Args    []any  `json:"args"`
	Mode    Mode   `json:"mode"`
	Offset  int64  `json:"offset"`

	// Delay is set for ModeDelayed, in seconds from now.
	Delay int64 `json:"delay,omitempty"`
	// At is set for ModeAt, in unix seconds.
	At int64 `json:"at,omitempty"`
}

// Spreader plans and dispatches spread calls. It holds no per-call state and
// may be shared between goroutines.
type Spreader struct {
	src    Source
	logger *slog.Logger
}

// Option configures a Spreader.
type Option func(*Spreader)

// WithSource replaces the crypto/rand source used for MethodRandom.
func WithSource(src Source) Option {
	return func(s *Spreader) {
		s.src = src
	}
}

// WithLogger sets the logger used for dispatch records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Spreader) {
		s.logger = l
	}
}

// New creates a Spreader.
func New(opts ...Option) *Spreader {
	s := &Spreader{
		src:    CryptoSource{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan resolves options, argument shape and offset for one call to h without
// touching the queue.
func (s *Spreader) Plan(h Handler, args ...any) (Call, error) {
	if h.Signature.HasNamed() {
		return Call{}, fmt.Errorf("%w: %s", ErrUnsupportedHandlerShape, h.Name)
	}
	duration, method, err := h.defaults()
	if err != nil {
		return Call{}, err
	}

	ex := extract(args)
	fwd := reconcile(h.Signature, ex)

	opts, err := ex.resolve(duration, method, fwd)
	if err != nil {
		return Call{}, fmt.Errorf("spread %s: %w", h.Name, err)
	}

	offset, err := Offset(s.src, opts.Method, opts.Duration, opts.ModValue)
	if err != nil {
		return Call{}, fmt.Errorf("spread %s: %w", h.Name, err)
	}

	call := Call{Handler: h.Name, Args: fwd, Offset: offset}
	if opts.HasStartAt {
		at, ok := addOffset(opts.StartAt, offset)
		if !ok {
			return Call{}, fmt.Errorf("spread %s: %w: %s %d plus offset %d overflows", h.Name, ErrInvalidStart, KeyAt, opts.StartAt, offset)
		}
		call.Mode = ModeAt
		call.At = at
		return call, nil
	}

	t, ok := addOffset(opts.StartIn, offset)
	if !ok {
		return Call{}, fmt.Errorf("spread %s: %w: %s %d plus offset %d overflows", h.Name, ErrInvalidStart, KeyIn, opts.StartIn, offset)
	}
	if t == 0 {
		call.Mode = ModeNow
	} else {
		call.Mode = ModeDelayed
		call.Delay = t
	}
	return call, nil
}

// Dispatch hands call to exactly one Enqueuer operation and returns its job
// id unchanged.
func (s *Spreader) Dispatch(ctx context.Context, q Enqueuer, call Call) (string, error) {
	var (
		id  string
		err error
	)
	switch call.Mode {
	case ModeNow:
		id, err = q.EnqueueNow(ctx, call.Args)
	case ModeDelayed:
		id, err = q.EnqueueIn(ctx, call.Delay, call.Args)
	case ModeAt:
		id, err = q.EnqueueAt(ctx, call.At, call.Args)
	default:
		return "", fmt.Errorf("spread: unknown dispatch mode %q", call.Mode)
	}
	if err != nil {
		return "", fmt.Errorf("enqueue %s (%s): %w", call.Handler, call.Mode, err)
	}

	s.logger.DebugContext(ctx, "job spread",
		slog.String("handler", call.Handler),
		slog.String("job_id", id),
		slog.String("mode", string(call.Mode)),
		slog.Int64("offset", call.Offset),
		slog.Int64("delay", call.Delay),
		slog.Int64("at", call.At),
	)
	return id, nil
}

// Schedule plans a call to h and dispatches it to q. Nothing is enqueued
// when planning fails.
func (s *Spreader) Schedule(ctx context.Context, q Enqueuer, h Handler, args ...any) (string, error) {
	call, err := s.Plan(h, args...)
	if err != nil {
		return "", err
	}
	return s.Dispatch(ctx, q, call)
}
