package bus

import (
	"context"
	"sync"

	"github.com/dshills/topicbus/internal/bus/topic"
)

// Emitter gives an object observer-style events by composition: the object
// holds an Emitter bound to a channel and a topic prefix, and its event names
// become topics under that prefix.
//
// Subscriptions made through an Emitter are tracked and removed by Close.
type Emitter struct {
	channel *Channel
	prefix  topic.Topic

	mu     sync.Mutex
	subs   []Subscription
	closed bool
}

// NewEmitter creates an emitter publishing under prefix on ch.
// An empty prefix uses event names as topics unchanged.
func NewEmitter(ch *Channel, prefix topic.Topic) *Emitter {
	return &Emitter{
		channel: ch,
		prefix:  prefix,
	}
}

// Topic returns the topic used for event.
func (e *Emitter) Topic(event string) topic.Topic {
	return e.prefix.Child(event)
}

// Emit publishes data as event.
func (e *Emitter) Emit(ctx context.Context, event string, data any) (int, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return 0, ErrEmitterClosed
	}
	return e.channel.Publish(ctx, e.Topic(event), data)
}

// On registers fn for event. The event name may contain wildcard segments.
func (e *Emitter) On(event string, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEmitterClosed
	}

	sub, err := e.channel.Subscribe(e.Topic(event), fn, opts...)
	if err != nil {
		return nil, err
	}
	e.subs = append(e.subs, sub)
	return sub, nil
}

// Once registers fn for the first successful delivery of event only.
func (e *Emitter) Once(event string, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	return e.On(event, fn, append(opts, WithOnce())...)
}

// Count returns the number of subscriptions made through the emitter that
// are still active.
func (e *Emitter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, sub := range e.subs {
		if sub.IsActive() {
			n++
		}
	}
	return n
}

// Close removes every subscription made through the emitter. Further calls
// to Emit and On return ErrEmitterClosed.
func (e *Emitter) Close() {
	e.mu.Lock()
	subs := e.subs
	e.subs = nil
	e.closed = true
	e.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
