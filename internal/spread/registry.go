package spread

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps job names to handlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds h. Names must be unique and non-empty. Handler defaults are
// validated here so a bad catalogue fails at startup; named parameters are
// only rejected when a call is planned.
func (r *Registry) Register(h Handler) error {
	if h.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidHandler)
	}
	if _, _, err := h.defaults(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[h.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, h.Name)
	}
	r.handlers[h.Name] = h
	return nil
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	if !ok {
		return Handler{}, fmt.Errorf("%w: %s", ErrHandlerNotFound, name)
	}
	return h, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
