package runtime

import (
	"context"
	"time"
)

// Clock abstracts the monotonic clock and the poll-interval sleep so the
// checker can run under test without real waiting.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is canceled, returning ctx.Err() in
	// the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// SystemClock returns the real clock. time.Time carries a monotonic reading,
// so Sub is immune to wall-clock steps during the wait.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
