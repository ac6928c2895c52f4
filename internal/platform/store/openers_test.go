package store

import (
	"context"
	"testing"
	"time"
)

// fastFailPGURL points at a closed port so dials fail immediately
func fastFailPGURL() string {
	return "postgres://u:p@127.0.0.1:1/db?sslmode=disable"
}

func TestOpenPG_ParentAlreadyCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{PG: PGConfig{URL: fastFailPGURL(), MaxConns: 1}}
	s := &Store{}

	start := time.Now()
	txr, err := openPG(ctx, cfg, s)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatalf("expected error due to canceled context, got nil (txr=%T)", txr)
	}
	if txr != nil {
		t.Fatalf("expected nil TxRunner on canceled context, got %T", txr)
	}
	// no DNS, immediate refusal; should return quickly
	if elapsed > time.Second {
		t.Fatalf("expected quick failure, got %v", elapsed)
	}
}

func TestOpenPG_BackoffThenCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := Config{PG: PGConfig{URL: fastFailPGURL(), MaxConns: 1}}

	// cancel a bit after the first 150ms backoff sleep so we exercise
	// the sleep and the next iteration's ctx.Err check
	go func() {
		time.Sleep(160 * time.Millisecond)
		cancel()
	}()

	s := &Store{}

	start := time.Now()
	txr, err := openPG(ctx, cfg, s)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatalf("expected error due to parent cancellation, got nil (txr=%T)", txr)
	}
	if txr != nil {
		t.Fatalf("expected nil TxRunner when parent deadline hits, got %T", txr)
	}

	// at least one backoff sleep (~150ms) must have happened
	if elapsed < 140*time.Millisecond {
		t.Fatalf("expected at least one backoff sleep (~150ms), got %v", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("test took too long (%v); expected early cancel", elapsed)
	}
}

func TestOpenPG_RetriesExhausted(t *testing.T) {
	t.Parallel()

	cfg := Config{PG: PGConfig{
		URL:            fastFailPGURL(),
		MaxConns:       1,
		ConnectRetries: 2, // two quick attempts, then give up
		PingTimeout:    200 * time.Millisecond,
	}}
	s := &Store{}

	txr, err := openPG(context.Background(), cfg, s)
	if err == nil {
		t.Fatalf("expected exhaustion error, got nil (txr=%T)", txr)
	}
	if txr != nil {
		t.Fatalf("expected nil TxRunner, got %T", txr)
	}
}

func TestOpenCH_BadDSN(t *testing.T) {
	t.Parallel()

	cfg := Config{CH: CHConfig{Enabled: true, URL: "://bad"}}
	c, err := openCH(context.Background(), cfg, nil)
	if err == nil {
		t.Fatalf("expected DSN parse error, got client %T", c)
	}
}

func TestOpenCH_LazyOK(t *testing.T) {
	t.Parallel()

	cfg := Config{CH: CHConfig{
		Enabled:    true,
		URL:        "clickhouse://default@127.0.0.1:1/chatmirror",
		ClientRole: "backfill",
		ClientTag:  "test",
	}}
	c, err := openCH(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("openCH error: %v", err)
	}
	if c == nil {
		t.Fatalf("openCH returned nil Clickhouse")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
