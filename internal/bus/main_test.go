package bus

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newRunningBus starts a bus that is closed when the test ends.
func newRunningBus(t *testing.T, opts ...Option) *Bus {
	t.Helper()

	b := New(opts...)
	if err := b.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = b.Close(ctx)
	})
	return b
}

// recorder collects handler invocations in order.
type recorder struct {
	calls []string
}

func (r *recorder) handler(name string) HandlerFunc {
	return func(context.Context, any, Envelope) error {
		r.calls = append(r.calls, name)
		return nil
	}
}
