// Package bus holds the keyed routing shared by the command and query buses.
package bus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Message is anything routed by its Key.
type Message interface {
	Key() string
}

var (
	ErrNoRoute    = errors.New("bus: no handler registered")
	ErrWrongType  = errors.New("bus: message type does not match route")
	ErrResultType = errors.New("bus: result type mismatch")
	ErrDuplicate  = errors.New("bus: duplicate route")
	ErrEmptyKey   = errors.New("bus: empty route key")
	ErrNilRouter  = errors.New("bus: nil router")
)

// Route is the untyped form of a registered handler.
type Route[M Message] func(ctx context.Context, msg M) (any, error)

// Router maps message keys to routes. Registration normally happens once at
// startup; Route is safe for concurrent use afterwards.
type Router[M Message] struct {
	kind   string
	mu     sync.RWMutex
	routes map[string]Route[M]
}

func NewRouter[M Message](kind string) *Router[M] {
	return &Router[M]{kind: kind, routes: make(map[string]Route[M])}
}

func (r *Router[M]) Add(key string, route Route[M]) error {
	if key == "" {
		return fmt.Errorf("%s: %w", r.kind, ErrEmptyKey)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.routes[key]; dup {
		return fmt.Errorf("%s %s: %w", r.kind, key, ErrDuplicate)
	}
	r.routes[key] = route
	return nil
}

func (r *Router[M]) Route(ctx context.Context, msg M) (any, error) {
	key := msg.Key()
	r.mu.RLock()
	route, ok := r.routes[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", r.kind, key, ErrNoRoute)
	}
	return route(ctx, msg)
}

// Keys lists registered keys in sorted order.
func (r *Router[M]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.routes))
	for k := range r.routes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Typed adapts a handler for the concrete message T into a Route keyed by
// the zero value of T.
func Typed[M Message, T Message, R any](handle func(context.Context, T) (R, error)) (string, Route[M]) {
	var zero T
	key := zero.Key()
	return key, func(ctx context.Context, msg M) (any, error) {
		typed, ok := any(msg).(T)
		if !ok {
			return nil, fmt.Errorf("%s: %w", key, ErrWrongType)
		}
		return handle(ctx, typed)
	}
}

// Result narrows an untyped route result. A nil result yields the zero R.
func Result[R any](res any, err error) (R, error) {
	var zero R
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: got %T", ErrResultType, res)
	}
	return value, nil
}
