package bus

import (
	"context"
	"runtime/debug"
	"sync/atomic"

	"github.com/dshills/topicbus/internal/bus/dispatch"
	"github.com/dshills/topicbus/internal/bus/topic"
)

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is registered.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStateCancelled means the subscription has been removed.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Channel returns the channel the subscription belongs to.
	Channel() string

	// Pattern returns the subscribed topic pattern.
	Pattern() topic.Topic

	// Seq returns the creation order of the subscription within its registry.
	Seq() uint64

	// Mode returns the delivery mode.
	Mode() DeliveryMode

	// State returns the current subscription state.
	State() SubscriptionState

	// IsActive returns true until the subscription is removed.
	IsActive() bool

	// Unsubscribe removes the subscription. It is safe to call any number
	// of times, from any goroutine, including from inside a handler.
	// A dispatch already in progress still invokes the handler.
	Unsubscribe()
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Mode selects synchronous or deferred delivery.
	Mode DeliveryMode

	// Filter is an optional predicate; nil accepts everything.
	Filter FilterFunc

	// Binding is an optional value made available to the handler through
	// Binding(ctx).
	Binding any

	// Once removes the subscription after its first successful delivery.
	Once bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithFilter adds a filter predicate. When applied more than once, every
// filter must accept the publish.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		if f == nil {
			return
		}
		prev := c.Filter
		if prev == nil {
			c.Filter = f
			return
		}
		c.Filter = func(data any, env Envelope) bool {
			return prev(data, env) && f(data, env)
		}
	}
}

// WithBinding sets the value the handler is invoked against.
func WithBinding(v any) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Binding = v
	}
}

// WithDeferred opts the subscription into deferred delivery.
func WithDeferred() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Mode = DeliveryDeferred
	}
}

// WithOnce removes the subscription after its first successful delivery.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

type bindingKey struct{}

// Binding returns the value registered with WithBinding for the subscription
// whose handler is running, or nil.
func Binding(ctx context.Context) any {
	return ctx.Value(bindingKey{})
}

// subscription is the internal implementation of Subscription.
type subscription struct {
	id      string
	seq     uint64
	channel string
	pattern topic.Topic
	handler Handler
	config  SubscriptionConfig

	state atomic.Int32
	// claimed guards Once subscriptions against concurrent deliveries.
	claimed atomic.Bool

	registry *Registry
}

func (s *subscription) ID() string           { return s.id }
func (s *subscription) Channel() string      { return s.channel }
func (s *subscription) Pattern() topic.Topic { return s.pattern }
func (s *subscription) Seq() uint64          { return s.seq }
func (s *subscription) Mode() DeliveryMode   { return s.config.Mode }

func (s *subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

func (s *subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

func (s *subscription) Unsubscribe() {
	s.registry.Remove(s)
}

// cancel marks the subscription removed. It reports whether this call made
// the transition.
func (s *subscription) cancel() bool {
	return s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStateCancelled))
}

// accepts evaluates the filter. A panicking filter rejects the delivery and
// the recovered panic is returned as a failed result.
func (s *subscription) accepts(data any, env Envelope) (ok bool, failure *dispatch.Result) {
	if s.config.Filter == nil {
		return true, nil
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			failure = &dispatch.Result{
				Panicked:   true,
				PanicValue: r,
				PanicStack: debug.Stack(),
			}
		}
	}()
	return s.config.Filter(data, env), nil
}

// claim reserves the single delivery of a Once subscription.
func (s *subscription) claim() bool {
	if !s.config.Once {
		return true
	}
	return s.claimed.CompareAndSwap(false, true)
}

// settle finishes a claimed delivery: a Once subscription is removed after
// success and released for the next publish after failure.
func (s *subscription) settle(success bool) {
	if !s.config.Once {
		return
	}
	if success {
		s.Unsubscribe()
		return
	}
	s.claimed.Store(false)
}

func (s *subscription) context(ctx context.Context) context.Context {
	if s.config.Binding == nil {
		return ctx
	}
	return context.WithValue(ctx, bindingKey{}, s.config.Binding)
}

// Handle adapts the subscription to dispatch.Handler; the event is always
// the Envelope built by Publish.
func (s *subscription) Handle(ctx context.Context, event any) error {
	env := event.(Envelope)
	return s.handler.Handle(ctx, env.Data, env)
}
