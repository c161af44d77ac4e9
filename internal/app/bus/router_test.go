package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct{ N int }

func (ping) Key() string { return "ping" }

type pong struct{}

func (pong) Key() string { return "pong" }

func TestTypedRouteDispatchesByKey(t *testing.T) {
	r := NewRouter[Message]("test")
	key, route := Typed[Message, ping, int](func(_ context.Context, p ping) (int, error) {
		return p.N * 2, nil
	})
	require.Equal(t, "ping", key)
	require.NoError(t, r.Add(key, route))

	got, err := Result[int](r.Route(context.Background(), ping{N: 21}))
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = r.Route(context.Background(), pong{})
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestAddRejectsDuplicatesAndEmptyKeys(t *testing.T) {
	r := NewRouter[Message]("test")
	key, route := Typed[Message, ping, int](func(context.Context, ping) (int, error) { return 0, nil })
	require.NoError(t, r.Add(key, route))
	assert.ErrorIs(t, r.Add(key, route), ErrDuplicate)
	assert.ErrorIs(t, r.Add("", route), ErrEmptyKey)
	assert.Equal(t, []string{"ping"}, r.Keys())
}

func TestResultNarrowing(t *testing.T) {
	_, err := Result[string](42, nil)
	assert.ErrorIs(t, err, ErrResultType)

	v, err := Result[*int](nil, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
