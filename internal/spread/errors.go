package spread

import "errors"

var (
	// Configuration errors. Plan returns them before any enqueue happens.
	ErrInvalidDuration         = errors.New("spread: duration must be a non-negative integer number of seconds")
	ErrInvalidMethod           = errors.New("spread: method must be rand or mod")
	ErrMissingModuloKey        = errors.New("spread: spread_mod_value must be provided or first arg must be an integer to use mod")
	ErrUnsupportedHandlerShape = errors.New("spread: handler must not declare named parameters")
	ErrInvalidStart            = errors.New("spread: start must be integer seconds or a unix timestamp")

	// Registry errors.
	ErrHandlerNotFound  = errors.New("spread: handler not found")
	ErrDuplicateHandler = errors.New("spread: duplicate handler")
	ErrInvalidHandler   = errors.New("spread: invalid handler")
)

// IsConfigError reports whether err stems from invalid spread options or an
// unsupported handler shape, as opposed to a failure of the queue itself.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrInvalidMethod) ||
		errors.Is(err, ErrMissingModuloKey) ||
		errors.Is(err, ErrUnsupportedHandlerShape) ||
		errors.Is(err, ErrInvalidStart)
}
