package store

import (
	"context"
	"errors"
	"testing"
)

// fakeTxRecorder satisfies TxRunner and records the ctx passed to Tx
type fakeTxRecorder struct {
	fakeTxNoPing
	lastCtx context.Context
	txErr   error
}

func (f *fakeTxRecorder) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	f.lastCtx = ctx
	if f.txErr != nil {
		return f.txErr
	}
	return fn(f)
}

func TestRunInTenant_StampsCtxAndRunsInTx(t *testing.T) {
	t.Parallel()

	f := &fakeTxRecorder{}
	var seen string
	err := RunInTenant(context.Background(), f, "991245", func(ctx context.Context, q RowQuerier) error {
		id, ok := TenantID(ctx)
		if !ok {
			return errors.New("tenant missing inside tx")
		}
		seen = id
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTenant err: %v", err)
	}
	if seen != "991245" {
		t.Fatalf("tenant mismatch: %q", seen)
	}

	// the ctx handed to Tx itself also carries the tenant, so begin hooks see it
	if id, ok := TenantID(f.lastCtx); !ok || id != "991245" {
		t.Fatalf("Tx ctx missing tenant: %q ok=%v", id, ok)
	}
}

func TestRunInTenant_PropagatesTxError(t *testing.T) {
	t.Parallel()

	f := &fakeTxRecorder{txErr: errors.New("begin failed")}
	err := RunInTenant(context.Background(), f, "991245", func(context.Context, RowQuerier) error {
		t.Fatal("fn should not run when Tx fails")
		return nil
	})
	if err == nil || err.Error() != "begin failed" {
		t.Fatalf("expected tx error, got %v", err)
	}
}
