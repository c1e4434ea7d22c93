package bus

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dshills/topicbus/internal/bus/topic"
)

// Sentinel errors for the bus.
var (
	// ErrBusNotRunning is returned when publishing on a bus that was not started.
	ErrBusNotRunning = errors.New("bus is not running")

	// ErrBusAlreadyRunning is returned when Start is called on a running bus.
	ErrBusAlreadyRunning = errors.New("bus is already running")

	// ErrBusClosed is returned for any operation on a closed bus.
	ErrBusClosed = errors.New("bus is closed")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidChannel is returned for an empty channel name.
	ErrInvalidChannel = errors.New("invalid channel name")

	// ErrInvalidTopic is returned when a published topic is empty, malformed
	// or contains wildcards.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrInvalidPayload is returned in strict payload mode when the published
	// data holds functions, channels or unsafe pointers.
	ErrInvalidPayload = errors.New("payload is not plain data")

	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("invalid subscription configuration")

	// ErrHandlerPanic matches every *SubscriberError caused by a panic.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrEmitterClosed is returned by an Emitter after Close.
	ErrEmitterClosed = errors.New("emitter is closed")

	// ErrQueueFull is reported when a deferred delivery cannot be queued.
	ErrQueueFull = errors.New("deferred delivery queue is full")
)

// ConfigurationError is returned by Subscribe when the pattern is malformed.
// The registry is left unchanged.
type ConfigurationError struct {
	Channel string
	Pattern topic.Topic
	Err     error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("subscribe %s/%s: %v", e.Channel, e.Pattern, e.Err)
}

// Unwrap returns the underlying syntax error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match ConfigurationError with ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// SubscriberError describes one failed callback invocation. A failure never
// stops the remaining subscribers of the same publish.
type SubscriberError struct {
	// SubscriptionID is the ID of the subscription whose handler failed.
	SubscriptionID string

	// Channel and Pattern identify the subscription.
	Channel string
	Pattern topic.Topic

	// Topic and Sequence identify the published envelope.
	Topic    topic.Topic
	Sequence uint64

	// Err is the returned error, or a description of the panic.
	Err error

	// Panicked is true if the handler or its filter panicked; Stack holds
	// the trace.
	Panicked bool
	Stack    []byte

	// Deferred is true if the handler ran on the deferred worker pool.
	Deferred bool
}

// Error implements the error interface.
func (e *SubscriberError) Error() string {
	what := "failed"
	if e.Panicked {
		what = "panicked"
	}
	return "subscriber " + e.SubscriptionID + " (" + e.Channel + "/" + string(e.Pattern) + ") " +
		what + " on " + string(e.Topic) + " #" + strconv.FormatUint(e.Sequence, 10) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *SubscriberError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match a panicking SubscriberError with ErrHandlerPanic.
func (e *SubscriberError) Is(target error) bool {
	return e.Panicked && target == ErrHandlerPanic
}
