// Package dispatch runs bus handlers.
//
// The Executor invokes a single handler with panic recovery and timing. The
// SyncDispatcher runs handlers in the caller's goroutine and is what the bus
// uses for its default, zero-latency delivery. The AsyncDispatcher is a
// bounded worker pool used for subscriptions that opt into deferred delivery:
// the publisher enqueues and returns, and a worker invokes the handler later.
//
// With a single worker, deferred tasks run in the order they were enqueued.
// A full queue never blocks the publisher; the task is dropped and
// ErrQueueFull is returned.
package dispatch
