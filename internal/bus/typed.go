package bus

import (
	"context"

	"github.com/dshills/topicbus/internal/bus/topic"
)

// TypedHandlerFunc is a handler for payloads of a known type.
type TypedHandlerFunc[T any] func(ctx context.Context, data T, env Envelope) error

// SubscribeTyped subscribes fn to pattern on s. Publishes whose data is not
// a T are skipped like a filtered publish.
func SubscribeTyped[T any](s Subscriber, pattern topic.Topic, fn TypedHandlerFunc[T], opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}

	guard := WithFilter(func(data any, _ Envelope) bool {
		_, ok := data.(T)
		return ok
	})

	h := HandlerFunc(func(ctx context.Context, data any, env Envelope) error {
		return fn(ctx, data.(T), env)
	})

	return s.Subscribe(pattern, h, append([]SubscriptionOption{guard}, opts...)...)
}
