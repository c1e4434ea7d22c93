package bus

import (
	"context"
	"time"

	"github.com/dshills/topicbus/internal/bus/topic"
)

// Handler is the interface for subscriber callbacks.
//
// Every callback has the same shape: the published data and the envelope it
// arrived in. Returning an error, or panicking, marks this invocation as
// failed without affecting other subscribers.
type Handler interface {
	Handle(ctx context.Context, data any, env Envelope) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, data any, env Envelope) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, data any, env Envelope) error {
	return f(ctx, data, env)
}

// FilterFunc is a predicate evaluated before a handler is invoked.
// Return false to skip the subscriber for this publish.
type FilterFunc func(data any, env Envelope) bool

// ErrorHandler receives every subscriber failure under either error policy.
// It runs on the goroutine that invoked the failing handler.
type ErrorHandler func(err *SubscriberError)

// ErrorPolicy controls how subscriber failures reach the publisher.
type ErrorPolicy int

const (
	// ErrorPolicyReport logs each failure and forwards it to the ErrorHandler.
	// Publish returns a nil error.
	ErrorPolicyReport ErrorPolicy = iota

	// ErrorPolicyCollect does everything Report does and also returns the
	// failures of synchronous subscribers from Publish, combined into one
	// error, after every matched subscriber has been invoked.
	ErrorPolicyCollect
)

// String returns a human-readable policy name.
func (p ErrorPolicy) String() string {
	switch p {
	case ErrorPolicyReport:
		return "report"
	case ErrorPolicyCollect:
		return "collect"
	default:
		return "unknown"
	}
}

// ParseErrorPolicy converts a policy name to an ErrorPolicy.
func ParseErrorPolicy(s string) (ErrorPolicy, bool) {
	switch s {
	case "", "report":
		return ErrorPolicyReport, true
	case "collect":
		return ErrorPolicyCollect, true
	default:
		return ErrorPolicyReport, false
	}
}

// DeliveryMode specifies how a subscription's handler is invoked.
type DeliveryMode int

const (
	// DeliverySync invokes the handler in the publisher's goroutine before
	// Publish returns.
	DeliverySync DeliveryMode = iota

	// DeliveryDeferred queues the invocation for the bus worker pool.
	DeliveryDeferred
)

// String returns a human-readable delivery mode name.
func (m DeliveryMode) String() string {
	switch m {
	case DeliverySync:
		return "sync"
	case DeliveryDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Publisher is the capability to publish on a channel.
type Publisher interface {
	Publish(ctx context.Context, t topic.Topic, data any) (int, error)
}

// Subscriber is the capability to subscribe on a channel.
type Subscriber interface {
	Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error)
}

// Stats contains bus statistics.
type Stats struct {
	// Published is the number of accepted publishes.
	Published uint64

	// Delivered is the number of handler invocations that succeeded.
	Delivered uint64

	// Deferred is the number of deliveries queued for the worker pool.
	Deferred uint64

	// Dropped is the number of deferred deliveries that could not be queued.
	Dropped uint64

	// Filtered is the number of matched subscribers skipped by their filter.
	Filtered uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// AvgHandlerTime is the mean handler execution time, both modes.
	AvgHandlerTime time.Duration

	// ActiveSubscriptions is the current number of subscriptions.
	ActiveSubscriptions int

	// Channels is the number of channels the bus knows about.
	Channels int

	// QueueDepth is the number of deferred deliveries waiting.
	QueueDepth int
}
