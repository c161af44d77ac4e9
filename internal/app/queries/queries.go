// Package queries routes read requests to their handlers.
package queries

import (
	"context"

	"hotelrates/internal/app/bus"
)

type Query interface {
	Key() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = bus.ErrNoRoute
	ErrResultType      = bus.ErrResultType
	ErrNilBus          = bus.ErrNilRouter
)

type InMemoryBus struct {
	router *bus.Router[Query]
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{router: bus.NewRouter[Query]("query")}
}

func (b *InMemoryBus) Ask(ctx context.Context, query Query) (any, error) {
	return b.router.Route(ctx, query)
}

func (b *InMemoryBus) Keys() []string {
	return b.router.Keys()
}

func RegisterHandler[Q Query, R any](b *InMemoryBus, handler Handler[Q, R]) {
	key, route := bus.Typed[Query, Q, R](handler.Handle)
	if err := b.router.Add(key, route); err != nil {
		panic(err)
	}
}

// Ask runs query through b and narrows the result to R.
func Ask[Q Query, R any](ctx context.Context, b Bus, query Q) (R, error) {
	if b == nil {
		var zero R
		return zero, ErrNilBus
	}
	return bus.Result[R](b.Ask(ctx, query))
}
