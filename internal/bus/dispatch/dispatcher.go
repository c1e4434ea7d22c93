package dispatch

import (
	"context"
	"time"
)

// Handler is a unit of work. The bus adapts each subscription to it.
type Handler interface {
	Handle(ctx context.Context, event any) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event any) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, event any) error {
	return f(ctx, event)
}

// Result is the outcome of one run. Exactly one of Success, Panicked,
// Skipped or a non-nil Error without the others describes it.
type Result struct {
	Success bool
	Error   error

	Panicked   bool
	PanicValue any
	PanicStack []byte

	// Skipped means the handler was never called because the context was
	// already done; Error then holds ctx.Err().
	Skipped bool

	Duration time.Duration
}

// IsSuccess reports a run that returned nil.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

// IsError reports a run that failed without panicking, including skips.
func (r Result) IsError() bool {
	return r.Error != nil && !r.Panicked
}

// IsPanic reports a recovered panic.
func (r Result) IsPanic() bool {
	return r.Panicked
}

// PanicHandler is told about every recovered panic.
type PanicHandler func(event, panicValue any, stack []byte)

// ResultHandler receives the outcome of every task run by an
// AsyncDispatcher.
type ResultHandler func(event any, handler Handler, result Result)
