package guardrails

import (
	"context"
	"testing"
	"time"
)

func TestWithWindow_ZeroBudgetAddsNoDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := WithWindow(context.Background(), Timeouts{})
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatalf("zero budget must not set a deadline")
	}
}

func TestForChannel_NeverExtendsParentDeadline(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ctx, ccancel := ForChannel(parent, Timeouts{Channel: time.Hour})
	defer ccancel()

	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatalf("expected a deadline")
	}
	pdl, _ := parent.Deadline()
	if dl.After(pdl) {
		t.Fatalf("child deadline %v extends past parent %v", dl, pdl)
	}
}

func TestForFlush_TightensWideParent(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	ctx, fcancel := ForFlush(parent, Timeouts{Flush: 25 * time.Millisecond})
	defer fcancel()

	if Remaining(ctx) > 30*time.Millisecond {
		t.Fatalf("flush budget not applied, remaining %v", Remaining(ctx))
	}
}

func TestRemaining_ZeroWithoutDeadline(t *testing.T) {
	t.Parallel()

	if got := Remaining(context.Background()); got != 0 {
		t.Fatalf("Remaining = %v, want 0", got)
	}
}
