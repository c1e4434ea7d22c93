package dispatch

import (
	"context"
	"runtime/debug"
	"time"
)

// Executor runs one handler at a time, turning a panic into a Result.
type Executor struct {
	panicHandler PanicHandler
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorPanicHandler sets the function told about recovered panics.
func WithExecutorPanicHandler(h PanicHandler) ExecutorOption {
	return func(e *Executor) {
		e.panicHandler = h
	}
}

// NewExecutor creates an executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs handler with event. If ctx is already done the handler is
// not called and the result is Skipped with ctx.Err().
func (e *Executor) Execute(ctx context.Context, event any, handler Handler) (result Result) {
	if err := ctx.Err(); err != nil {
		return Result{Error: err, Skipped: true}
	}

	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)

		r := recover()
		if r == nil {
			return
		}
		result = Result{
			Panicked:   true,
			PanicValue: r,
			PanicStack: debug.Stack(),
			Duration:   result.Duration,
		}
		e.notifyPanic(event, r, result.PanicStack)
	}()

	err := handler.Handle(ctx, event)
	return Result{Success: err == nil, Error: err}
}

// notifyPanic calls the panic handler, containing any panic it raises.
func (e *Executor) notifyPanic(event, value any, stack []byte) {
	if e.panicHandler == nil {
		return
	}
	defer func() { _ = recover() }()
	e.panicHandler(event, value, stack)
}

// ExecuteWithTimeout is Execute with a deadline on the handler context.
// A non-positive timeout means none; handlers must watch ctx.Done().
func (e *Executor) ExecuteWithTimeout(ctx context.Context, event any, handler Handler, timeout time.Duration) Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return e.Execute(ctx, event, handler)
}
