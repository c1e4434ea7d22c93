package bus

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a Bus.
type Option func(*busConfig)

// busConfig contains configuration for the bus.
type busConfig struct {
	// deferredQueueSize bounds the deferred delivery queue.
	deferredQueueSize int

	// deferredWorkers is the number of deferred delivery goroutines.
	deferredWorkers int

	// handlerTimeout, when positive, puts a deadline on each handler context.
	handlerTimeout time.Duration

	errorPolicy  ErrorPolicy
	errorHandler ErrorHandler

	logger *zap.Logger

	// strictPayload rejects publishes whose data is not plain data.
	strictPayload bool

	clock func() time.Time
}

func defaultBusConfig() busConfig {
	return busConfig{
		deferredQueueSize: 1024,
		deferredWorkers:   1,
		errorPolicy:       ErrorPolicyReport,
		logger:            zap.NewNop(),
		clock:             time.Now,
	}
}

// WithDeferredQueueSize sets the capacity of the deferred delivery queue.
func WithDeferredQueueSize(size int) Option {
	return func(c *busConfig) {
		if size > 0 {
			c.deferredQueueSize = size
		}
	}
}

// WithDeferredWorkers sets the number of goroutines running deferred
// deliveries. With more than one worker deferred deliveries may run out of
// publish order.
func WithDeferredWorkers(count int) Option {
	return func(c *busConfig) {
		if count > 0 {
			c.deferredWorkers = count
		}
	}
}

// WithHandlerTimeout attaches a deadline to every handler context.
// Handlers must observe ctx.Done() for the deadline to have any effect.
func WithHandlerTimeout(timeout time.Duration) Option {
	return func(c *busConfig) {
		c.handlerTimeout = timeout
	}
}

// WithErrorPolicy sets how subscriber failures reach the publisher.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(c *busConfig) {
		c.errorPolicy = p
	}
}

// WithErrorHandler sets a callback receiving every subscriber failure.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *busConfig) {
		c.errorHandler = h
	}
}

// WithLogger sets the logger. A nil logger leaves the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStrictPayload makes Publish reject data containing functions,
// channels or unsafe pointers.
func WithStrictPayload() Option {
	return func(c *busConfig) {
		c.strictPayload = true
	}
}

// WithClock overrides the envelope timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *busConfig) {
		if now != nil {
			c.clock = now
		}
	}
}
