// Package guardrails holds cross cutting safety helpers for backfill
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for one window of work.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Window is the overall time budget for processing one sync window
	Window time.Duration

	// Channel caps one channel's stream-and-flush step
	Channel time.Duration

	// Flush caps a single collector flush
	Flush time.Duration
}

// WithWindow returns a context limited by the window budget without ever
// extending a parent deadline. A zero budget yields a plain cancelable child
func WithWindow(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Window)
}

// ForChannel returns a sub context for one channel bounded by Channel and any
// remaining parent budget
func ForChannel(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Channel)
}

// ForFlush returns a sub context for the flush phase bounded by Flush and any
// remaining parent budget
func ForFlush(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Flush)
}

// Remaining returns the time until the deadline on ctx, or zero when none is
// set or it already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout takes the tighter of the requested duration and the parent
// remainder; it never extends the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
