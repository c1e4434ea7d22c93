package bus

import (
	"context"

	"github.com/dshills/topicbus/internal/bus/topic"
)

// Channel is a named partition of a Bus. Topics published on one channel are
// never seen by subscriptions on another.
type Channel struct {
	name string
	bus  *Bus
}

var (
	_ Publisher  = (*Channel)(nil)
	_ Subscriber = (*Channel)(nil)
)

// Name returns the channel name.
func (c *Channel) Name() string {
	return c.name
}

// Publish publishes data on topic t of this channel.
// See Bus.Publish for delivery and error semantics.
func (c *Channel) Publish(ctx context.Context, t topic.Topic, data any) (int, error) {
	return c.bus.Publish(ctx, c.name, t, data)
}

// Subscribe registers h for topics of this channel matching pattern.
func (c *Channel) Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	return c.bus.Subscribe(c.name, pattern, h, opts...)
}

// SubscribeFunc is a convenience method for subscribing with a function.
func (c *Channel) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	return c.bus.SubscribeFunc(c.name, pattern, fn, opts...)
}

// Patterns returns the distinct patterns subscribed on this channel.
func (c *Channel) Patterns() []topic.Topic {
	return c.bus.registry.Patterns(c.name)
}

// SubscriptionCount returns the number of subscriptions on this channel.
func (c *Channel) SubscriptionCount() int {
	return c.bus.registry.CountChannel(c.name)
}
