package dispatch

import (
	"context"
	"time"
)

// SyncDispatcher runs each handler in the caller's goroutine and returns
// once it finished.
type SyncDispatcher struct {
	executor *Executor
	timeout  time.Duration
	tally    tally
}

// SyncOption configures a SyncDispatcher.
type SyncOption func(*SyncDispatcher)

// WithPanicHandler sets the function told about recovered panics.
func WithPanicHandler(h PanicHandler) SyncOption {
	return func(d *SyncDispatcher) {
		d.executor = NewExecutor(WithExecutorPanicHandler(h))
	}
}

// WithTimeout puts a deadline on the context of every run.
func WithTimeout(timeout time.Duration) SyncOption {
	return func(d *SyncDispatcher) {
		d.timeout = timeout
	}
}

// NewSyncDispatcher creates a synchronous dispatcher.
func NewSyncDispatcher(opts ...SyncOption) *SyncDispatcher {
	d := &SyncDispatcher{executor: NewExecutor()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs handler with event. A done ctx skips the handler.
func (d *SyncDispatcher) Dispatch(ctx context.Context, event any, handler Handler) Result {
	result := d.executor.ExecuteWithTimeout(ctx, event, handler, d.timeout)
	d.tally.record(result)
	return result
}

// Stats returns run statistics.
func (d *SyncDispatcher) Stats() Stats {
	return d.tally.snapshot()
}
