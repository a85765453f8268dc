package lifecycle

import (
	"context"
	"sync"

	"github.com/systmms/secretd/internal/domain"
)

// RotationHandler produces a fresh plaintext value for a secret during
// rotate(). A handler may be synchronous or perform its own I/O (calling
// out to a downstream credential source); rotate() awaits its completion
// via ctx.
type RotationHandler interface {
	Rotate(ctx context.Context, secret domain.Secret) (string, error)
}

// RotationHandlerFunc adapts a plain function to RotationHandler.
type RotationHandlerFunc func(ctx context.Context, secret domain.Secret) (string, error)

// Rotate calls f.
func (f RotationHandlerFunc) Rotate(ctx context.Context, secret domain.Secret) (string, error) {
	return f(ctx, secret)
}

// HandlerRegistry maps domain.RotationHandlerRef ids to the
// RotationHandler that implements them. A secret's RotationHandler field
// stores only the id, keeping the secret a plain serializable value
// rather than a closure.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]RotationHandler
}

// NewHandlerRegistry returns an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: map[string]RotationHandler{}}
}

// Register associates id with handler, replacing any prior registration.
func (r *HandlerRegistry) Register(id string, handler RotationHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = handler
}

// Lookup returns the handler registered under id.
func (r *HandlerRegistry) Lookup(id string) (RotationHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[id]
	return h, ok
}
