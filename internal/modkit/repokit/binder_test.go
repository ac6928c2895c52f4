package repokit

import (
	"context"
	"testing"

	"chatmirror/internal/platform/store"
)

type fakeQ struct{}

func (f *fakeQ) Exec(ctx context.Context, sql string, args ...any) (store.CommandTag, error) {
	var z store.CommandTag
	return z, nil
}

func (f *fakeQ) Query(ctx context.Context, sql string, args ...any) (store.Rows, error) {
	var z store.Rows
	return z, nil
}

func (f *fakeQ) QueryRow(ctx context.Context, sql string, args ...any) store.Row {
	var z store.Row
	return z
}

var _ Queryer = (*fakeQ)(nil)

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("%s: expected panic, got none", name)
		}
	}()
	fn()
}

// checkpointRepo stands in for a domain repo produced by a binder
type checkpointRepo struct {
	q Queryer
}

func TestBindFunc_BindCallsFunc(t *testing.T) {
	t.Parallel()

	q := &fakeQ{}
	b := BindFunc[checkpointRepo](func(bound Queryer) checkpointRepo {
		return checkpointRepo{q: bound}
	})

	got := b.Bind(q)
	if got.q != Queryer(q) {
		t.Fatalf("BindFunc.Bind did not pass the Queryer through")
	}
}

func TestRequireQueryer_PanicsOnNil(t *testing.T) {
	t.Parallel()

	var q Queryer // nil interface
	mustPanic(t, "RequireQueryer(nil)", func() {
		_ = RequireQueryer(q)
	})
}

func TestMustBind_PanicsOnNilQueryer(t *testing.T) {
	t.Parallel()

	var q Queryer // nil interface
	b := BindFunc[int](func(_ Queryer) int { return 42 })

	mustPanic(t, "MustBind(nil Queryer)", func() {
		_ = MustBind[int](b, q)
	})
}

func TestMustBind_BindsOnValidQueryer(t *testing.T) {
	t.Parallel()

	q := &fakeQ{}
	b := BindFunc[checkpointRepo](func(bound Queryer) checkpointRepo {
		return checkpointRepo{q: bound}
	})

	got := MustBind[checkpointRepo](b, q)
	if got.q != Queryer(q) {
		t.Fatalf("MustBind did not hand the Queryer to the binder")
	}
}

func TestRequireQueryer_ReturnsSame(t *testing.T) {
	t.Parallel()

	var in Queryer = &fakeQ{}
	out := RequireQueryer(in)

	if out == nil {
		t.Fatalf("RequireQueryer returned nil for non-nil input")
	}
	if out != in {
		t.Fatalf("RequireQueryer did not return the same instance")
	}
}
