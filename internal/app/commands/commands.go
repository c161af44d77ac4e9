// Package commands routes write intents to their handlers.
package commands

import (
	"context"

	"hotelrates/internal/app/bus"
)

// Command is a write intent. Key must be constant per concrete type.
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = bus.ErrNoRoute
	ErrResultType      = bus.ErrResultType
	ErrNilBus          = bus.ErrNilRouter
)

// InMemoryBus dispatches to handlers registered in process.
type InMemoryBus struct {
	router *bus.Router[Command]
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{router: bus.NewRouter[Command]("command")}
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	return b.router.Route(ctx, cmd)
}

func (b *InMemoryBus) Keys() []string {
	return b.router.Keys()
}

// RegisterHandler binds handler to the key of C. It panics on a duplicate
// key, which is a wiring bug.
func RegisterHandler[C Command, R any](b *InMemoryBus, handler Handler[C, R]) {
	key, route := bus.Typed[Command, C, R](handler.Handle)
	if err := b.router.Add(key, route); err != nil {
		panic(err)
	}
}

// Dispatch sends cmd through b and narrows the result to R.
func Dispatch[C Command, R any](ctx context.Context, b Bus, cmd C) (R, error) {
	if b == nil {
		var zero R
		return zero, ErrNilBus
	}
	return bus.Result[R](b.Dispatch(ctx, cmd))
}
