package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/topicbus/internal/bus/topic"
)

func TestEmitter_EmitAndOn(t *testing.T) {
	b := newRunningBus(t)
	e := NewEmitter(b.Channel("game"), "player.jim")

	var got []topic.Topic
	_, err := e.On("scored", func(_ context.Context, _ any, env Envelope) error {
		got = append(got, env.Topic)
		return nil
	})
	require.NoError(t, err)
	_, err = e.On("*", func(_ context.Context, _ any, env Envelope) error {
		got = append(got, "any:"+env.Topic)
		return nil
	})
	require.NoError(t, err)

	n, err := e.Emit(context.Background(), "scored", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []topic.Topic{"player.jim.scored", "any:player.jim.scored"}, got)
	assert.Equal(t, topic.Topic("player.jim.scored"), e.Topic("scored"))
}

func TestEmitter_EmptyPrefix(t *testing.T) {
	b := newRunningBus(t)
	e := NewEmitter(b.Channel("c"), "")

	assert.Equal(t, topic.Topic("ready"), e.Topic("ready"))
}

func TestEmitter_Once(t *testing.T) {
	b := newRunningBus(t)
	e := NewEmitter(b.Channel("c"), "door")

	var calls int
	_, err := e.Once("opened", func(context.Context, any, Envelope) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	_, _ = e.Emit(context.Background(), "opened", nil)
	_, _ = e.Emit(context.Background(), "opened", nil)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.Count())
}

func TestEmitter_Close(t *testing.T) {
	b := newRunningBus(t)
	ch := b.Channel("c")
	e := NewEmitter(ch, "a")

	_, _ = e.On("x", nopHandler())
	_, _ = e.On("y", nopHandler())
	other, _ := ch.SubscribeFunc("a.x", nopHandler())
	assert.Equal(t, 2, e.Count())

	e.Close()

	assert.Equal(t, 1, ch.SubscriptionCount(), "only the emitter's subscriptions are removed")
	assert.True(t, other.IsActive())

	_, err := e.Emit(context.Background(), "x", nil)
	assert.ErrorIs(t, err, ErrEmitterClosed)
	_, err = e.On("x", nopHandler())
	assert.ErrorIs(t, err, ErrEmitterClosed)
	assert.NotPanics(t, e.Close)
}

func TestEmitter_Errors(t *testing.T) {
	b := newRunningBus(t)
	e := NewEmitter(b.Channel("c"), "a")

	_, err := e.On("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	_, err = e.On("#.#", nopHandler())
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, 0, e.Count())
}
