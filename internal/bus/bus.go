package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dshills/topicbus/internal/bus/dispatch"
	"github.com/dshills/topicbus/internal/bus/topic"
)

type busState int32

const (
	stateCreated busState = iota
	stateRunning
	stateClosed
)

// Bus routes published envelopes to the subscriptions of a channel whose
// patterns match the published topic.
//
// A Bus is created with New, started with Start and torn down with Close.
// Subscriptions may be registered before Start; publishing requires a
// running bus. Every method is safe for concurrent use.
type Bus struct {
	registry *Registry

	syncDispatcher  *dispatch.SyncDispatcher
	asyncDispatcher *dispatch.AsyncDispatcher

	state atomic.Int32

	chMu     sync.Mutex
	channels map[string]*Channel

	config busConfig
	logger *zap.Logger

	seq atomic.Uint64

	published     atomic.Uint64
	delivered     atomic.Uint64
	deferred      atomic.Uint64
	dropped       atomic.Uint64
	filtered      atomic.Uint64
	handlerErrors atomic.Uint64
	handlerPanics atomic.Uint64
}

// New creates a bus with the given options.
func New(opts ...Option) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	b := &Bus{
		registry: NewRegistry(),
		channels: make(map[string]*Channel),
		config:   config,
		logger:   config.logger.Named("bus"),
	}

	b.syncDispatcher = dispatch.NewSyncDispatcher(
		dispatch.WithTimeout(config.handlerTimeout),
		dispatch.WithPanicHandler(b.recovered),
	)
	b.asyncDispatcher = dispatch.NewAsyncDispatcher(
		dispatch.WithQueueSize(config.deferredQueueSize),
		dispatch.WithWorkerCount(config.deferredWorkers),
		dispatch.WithAsyncTimeout(config.handlerTimeout),
		dispatch.WithAsyncPanicHandler(b.recovered),
		dispatch.WithResultHandler(b.deferredResult),
	)

	return b
}

// Start starts the bus and its deferred delivery workers.
func (b *Bus) Start() error {
	switch busState(b.state.Load()) {
	case stateRunning:
		return ErrBusAlreadyRunning
	case stateClosed:
		return ErrBusClosed
	}
	if err := b.asyncDispatcher.Start(); err != nil {
		return err
	}
	if !b.state.CompareAndSwap(int32(stateCreated), int32(stateRunning)) {
		_ = b.asyncDispatcher.Stop(context.Background())
		return ErrBusAlreadyRunning
	}
	b.logger.Debug("bus started",
		zap.Int("deferred_workers", b.config.deferredWorkers),
		zap.Int("deferred_queue_size", b.config.deferredQueueSize),
	)
	return nil
}

// Close stops accepting publishes, waits for queued deferred deliveries until
// ctx is done, and releases every channel and subscription. A closed bus
// cannot be restarted.
func (b *Bus) Close(ctx context.Context) error {
	prev := busState(b.state.Swap(int32(stateClosed)))
	if prev == stateClosed {
		return ErrBusClosed
	}

	var err error
	if prev == stateRunning {
		err = b.asyncDispatcher.Stop(ctx)
	}

	b.registry.Clear()
	b.chMu.Lock()
	b.channels = make(map[string]*Channel)
	b.chMu.Unlock()

	b.logger.Debug("bus closed", zap.Error(err))
	return err
}

// IsRunning returns true between Start and Close.
func (b *Bus) IsRunning() bool {
	return busState(b.state.Load()) == stateRunning
}

// Registry returns the bus's subscription registry.
func (b *Bus) Registry() *Registry {
	return b.registry
}

// Channel returns the channel with the given name, creating it on first use.
// Repeated calls with the same name return the same channel.
//
// An empty name or a closed bus yields a detached handle that is never
// stored: its operations fail with ErrInvalidChannel or ErrBusClosed.
func (b *Bus) Channel(name string) *Channel {
	b.chMu.Lock()
	defer b.chMu.Unlock()

	if ch, ok := b.channels[name]; ok {
		return ch
	}
	ch := &Channel{name: name, bus: b}
	if name == "" || busState(b.state.Load()) == stateClosed {
		return ch
	}
	b.channels[name] = ch
	b.registry.EnsureChannel(name)
	return ch
}

// Subscribe registers h for topics matching pattern on channel.
func (b *Bus) Subscribe(channel string, pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	if busState(b.state.Load()) == stateClosed {
		return nil, ErrBusClosed
	}
	return b.registry.Add(channel, pattern, h, opts...)
}

// SubscribeFunc is a convenience method for subscribing with a function.
func (b *Bus) SubscribeFunc(channel string, pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(channel, pattern, fn, opts...)
}

// Unsubscribe removes sub. Unknown or already removed handles are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.registry.Remove(sub)
}

// Publish builds an envelope for t on channel and delivers it to every
// matching subscription in creation order.
//
// Synchronous subscribers have all been invoked when Publish returns.
// Deferred subscribers are queued. The returned count is the number of
// synchronous invocations plus accepted deferred deliveries; subscribers
// skipped by their filter are not counted.
//
// Subscriber failures never stop the dispatch. Under ErrorPolicyCollect the
// failures of synchronous subscribers are returned combined after every
// subscriber ran.
func (b *Bus) Publish(ctx context.Context, channel string, t topic.Topic, data any) (int, error) {
	switch busState(b.state.Load()) {
	case stateCreated:
		return 0, ErrBusNotRunning
	case stateClosed:
		return 0, ErrBusClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if channel == "" {
		return 0, ErrInvalidChannel
	}
	if err := topic.ValidateTopic(t); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidTopic, err)
	}
	if b.config.strictPayload && !checkPlainData(data) {
		return 0, fmt.Errorf("%w: %T", ErrInvalidPayload, data)
	}

	b.registry.EnsureChannel(channel)

	env := Envelope{
		ID:        uuid.NewString(),
		Topic:     t,
		Channel:   channel,
		Timestamp: b.config.clock(),
		Sequence:  b.seq.Add(1),
		Data:      data,
	}
	b.published.Add(1)

	subs := b.registry.lookup(channel, t)
	if len(subs) == 0 {
		return 0, nil
	}

	var (
		notified int
		errs     error
		skipped  error
	)
	for _, sub := range subs {
		ok, failure := sub.accepts(data, env)
		if failure != nil {
			serr := b.subscriberError(env, sub, *failure, false)
			serr.Err = fmt.Errorf("%w: filter: %v", ErrHandlerPanic, failure.PanicValue)
			b.report(serr)
			if b.config.errorPolicy == ErrorPolicyCollect {
				errs = multierr.Append(errs, serr)
			}
			continue
		}
		if !ok {
			b.filtered.Add(1)
			continue
		}
		if !sub.claim() {
			continue
		}

		hctx := sub.context(ctx)

		if sub.config.Mode == DeliveryDeferred {
			if b.enqueue(hctx, env, sub) {
				notified++
			}
			continue
		}

		result := b.syncDispatcher.Dispatch(hctx, env, sub)
		if result.Skipped {
			sub.settle(false)
			skipped = result.Error
			continue
		}
		notified++
		if err := b.handleResult(env, sub, result, false); err != nil && b.config.errorPolicy == ErrorPolicyCollect {
			errs = multierr.Append(errs, err)
		}
	}

	if skipped != nil {
		errs = multierr.Append(errs, skipped)
	}
	return notified, errs
}

// enqueue hands a deferred delivery to the worker pool. The delivery does
// not inherit the publisher's cancellation.
func (b *Bus) enqueue(ctx context.Context, env Envelope, sub *subscription) bool {
	err := b.asyncDispatcher.Enqueue(context.WithoutCancel(ctx), env, sub)
	if err == nil {
		b.deferred.Add(1)
		return true
	}

	if errors.Is(err, dispatch.ErrQueueFull) {
		err = ErrQueueFull
	}
	sub.settle(false)
	b.dropped.Add(1)
	b.logger.Warn("deferred delivery dropped",
		zap.String("channel", env.Channel),
		zap.Stringer("topic", env.Topic),
		zap.Uint64("seq", env.Sequence),
		zap.String("subscription", sub.id),
		zap.Error(err),
	)
	return false
}

// recovered runs on the goroutine that recovered a handler panic, before the
// failure is reported. It keeps the raw panic value, which the reported
// error only carries as text.
func (b *Bus) recovered(event any, value any, _ []byte) {
	env, _ := event.(Envelope)
	b.logger.Debug("handler panic recovered",
		zap.String("channel", env.Channel),
		zap.Stringer("topic", env.Topic),
		zap.Uint64("seq", env.Sequence),
		zap.String("panic_type", fmt.Sprintf("%T", value)),
		zap.Any("panic", value),
	)
}

// deferredResult receives results from the worker pool.
func (b *Bus) deferredResult(event any, h dispatch.Handler, result dispatch.Result) {
	env, ok := event.(Envelope)
	if !ok {
		return
	}
	sub, ok := h.(*subscription)
	if !ok {
		return
	}
	_ = b.handleResult(env, sub, result, true)
}

// handleResult settles a delivery and reports its failure, if any.
func (b *Bus) handleResult(env Envelope, sub *subscription, result dispatch.Result, deferred bool) *SubscriberError {
	if result.IsSuccess() {
		b.delivered.Add(1)
		sub.settle(true)
		return nil
	}
	sub.settle(false)

	serr := b.subscriberError(env, sub, result, deferred)
	b.report(serr)
	return serr
}

// subscriberError describes a failed delivery of env to sub.
func (b *Bus) subscriberError(env Envelope, sub *subscription, result dispatch.Result, deferred bool) *SubscriberError {
	serr := &SubscriberError{
		SubscriptionID: sub.id,
		Channel:        sub.channel,
		Pattern:        sub.pattern,
		Topic:          env.Topic,
		Sequence:       env.Sequence,
		Err:            result.Error,
		Deferred:       deferred,
	}
	if result.Panicked {
		serr.Panicked = true
		serr.Stack = result.PanicStack
		serr.Err = fmt.Errorf("%w: %v", ErrHandlerPanic, result.PanicValue)
	}
	return serr
}

func (b *Bus) report(serr *SubscriberError) {
	fields := []zap.Field{
		zap.String("channel", serr.Channel),
		zap.Stringer("pattern", serr.Pattern),
		zap.Stringer("topic", serr.Topic),
		zap.Uint64("seq", serr.Sequence),
		zap.String("subscription", serr.SubscriptionID),
		zap.Bool("deferred", serr.Deferred),
	}

	if serr.Panicked {
		b.handlerPanics.Add(1)
		b.logger.Error("subscriber panicked",
			append(fields, zap.Error(serr.Err), zap.ByteString("stack", serr.Stack))...)
	} else {
		b.handlerErrors.Add(1)
		b.logger.Warn("subscriber failed", append(fields, zap.Error(serr.Err))...)
	}

	if b.config.errorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("error handler panicked", zap.Any("panic", r))
		}
	}()
	b.config.errorHandler(serr)
}

// Stats returns a snapshot of bus statistics.
func (b *Bus) Stats() Stats {
	syncStats := b.syncDispatcher.Stats()
	asyncStats := b.asyncDispatcher.Stats()

	var avg time.Duration
	if n := syncStats.Runs - syncStats.Skipped + asyncStats.Runs - asyncStats.Skipped; n > 0 {
		avg = (syncStats.TotalDuration + asyncStats.TotalDuration) / time.Duration(n)
	}

	return Stats{
		Published:           b.published.Load(),
		Delivered:           b.delivered.Load(),
		Deferred:            b.deferred.Load(),
		Dropped:             b.dropped.Load(),
		Filtered:            b.filtered.Load(),
		HandlerErrors:       b.handlerErrors.Load(),
		HandlerPanics:       b.handlerPanics.Load(),
		AvgHandlerTime:      avg,
		ActiveSubscriptions: b.registry.Count(),
		Channels:            len(b.registry.Channels()),
		QueueDepth:          asyncStats.QueueDepth,
	}
}
