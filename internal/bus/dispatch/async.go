package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// AsyncDispatcher runs handlers on a fixed pool of worker goroutines fed by
// a bounded queue. Enqueue never blocks.
type AsyncDispatcher struct {
	queueSize   int
	workerCount int
	timeout     time.Duration

	panicHandler  PanicHandler
	resultHandler ResultHandler

	// mu orders Enqueue against Start and Stop so a send never races the
	// queue being closed.
	mu      sync.RWMutex
	queue   chan task
	running bool
	workers sync.WaitGroup

	tally    tally
	enqueued atomic.Uint64
	dropped  atomic.Uint64
}

type task struct {
	ctx     context.Context
	event   any
	handler Handler
}

// AsyncStats extends Stats with queue counters.
type AsyncStats struct {
	Stats

	Enqueued   uint64
	Dropped    uint64 // rejected with ErrQueueFull
	QueueDepth int
}

// AsyncOption configures an AsyncDispatcher.
type AsyncOption func(*AsyncDispatcher)

// WithQueueSize sets the queue capacity. Non-positive values are ignored.
func WithQueueSize(size int) AsyncOption {
	return func(d *AsyncDispatcher) {
		if size > 0 {
			d.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of workers. Non-positive values are ignored.
func WithWorkerCount(count int) AsyncOption {
	return func(d *AsyncDispatcher) {
		if count > 0 {
			d.workerCount = count
		}
	}
}

// WithAsyncTimeout puts a deadline on the context of every run.
func WithAsyncTimeout(timeout time.Duration) AsyncOption {
	return func(d *AsyncDispatcher) {
		d.timeout = timeout
	}
}

// WithAsyncPanicHandler sets the function told about recovered panics.
func WithAsyncPanicHandler(h PanicHandler) AsyncOption {
	return func(d *AsyncDispatcher) {
		d.panicHandler = h
	}
}

// WithResultHandler sets a callback receiving the outcome of every task.
// It runs on the worker goroutine; a panic inside it is swallowed.
func WithResultHandler(h ResultHandler) AsyncOption {
	return func(d *AsyncDispatcher) {
		d.resultHandler = h
	}
}

// NewAsyncDispatcher creates a worker pool. By default it has one worker,
// so tasks run in the order they were enqueued, and room for 1024 tasks.
func NewAsyncDispatcher(opts ...AsyncOption) *AsyncDispatcher {
	d := &AsyncDispatcher{
		queueSize:   1024,
		workerCount: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the workers.
func (d *AsyncDispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return ErrAlreadyRunning
	}
	d.queue = make(chan task, d.queueSize)
	d.running = true

	executor := NewExecutor(WithExecutorPanicHandler(d.panicHandler))
	d.workers.Add(d.workerCount)
	for range d.workerCount {
		go d.work(executor, d.queue)
	}
	return nil
}

// Stop rejects new tasks and waits until the queued ones ran or ctx is
// done. Workers keep draining the queue after an early return.
func (d *AsyncDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return ErrNotRunning
	}
	d.running = false
	close(d.queue)
	d.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue queues handler to run with event under ctx.
func (d *AsyncDispatcher) Enqueue(ctx context.Context, event any, handler Handler) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.running {
		return ErrNotRunning
	}

	select {
	case d.queue <- task{ctx: ctx, event: event, handler: handler}:
		d.enqueued.Add(1)
		return nil
	default:
		d.dropped.Add(1)
		return ErrQueueFull
	}
}

func (d *AsyncDispatcher) work(executor *Executor, queue <-chan task) {
	defer d.workers.Done()

	for t := range queue {
		result := executor.ExecuteWithTimeout(t.ctx, t.event, t.handler, d.timeout)
		d.tally.record(result)
		d.report(t, result)
	}
}

func (d *AsyncDispatcher) report(t task, result Result) {
	if d.resultHandler == nil {
		return
	}
	defer func() { _ = recover() }()
	d.resultHandler(t.event, t.handler, result)
}

// QueueDepth returns the number of tasks waiting for a worker.
func (d *AsyncDispatcher) QueueDepth() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.queue)
}

// IsRunning reports whether the pool accepts tasks.
func (d *AsyncDispatcher) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.running
}

// Stats returns run and queue statistics.
func (d *AsyncDispatcher) Stats() AsyncStats {
	return AsyncStats{
		Stats:      d.tally.snapshot(),
		Enqueued:   d.enqueued.Load(),
		Dropped:    d.dropped.Load(),
		QueueDepth: d.QueueDepth(),
	}
}
