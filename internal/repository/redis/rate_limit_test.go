package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return client
}

func TestRateLimitStoreSlidingWindow(t *testing.T) {
	client := newTestClient(t)
	store := NewRateLimitStore(client, "test:ratelimit")

	ctx := context.Background()
	window := time.Minute
	base := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

	// Two attempts inside the window, one far before it.
	if err := store.RecordAttempt(ctx, "1.2.3.4", base.Add(-2*time.Minute)); err != nil {
		t.Fatalf("record old attempt: %v", err)
	}
	if err := store.RecordAttempt(ctx, "1.2.3.4", base.Add(-30*time.Second)); err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	if err := store.RecordAttempt(ctx, "1.2.3.4", base.Add(-10*time.Second)); err != nil {
		t.Fatalf("record attempt: %v", err)
	}

	count, err := store.CountAttempts(ctx, "1.2.3.4", window, base)
	if err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 attempts in window, got %d", count)
	}

	oldest, found, err := store.OldestAttempt(ctx, "1.2.3.4", window, base)
	if err != nil {
		t.Fatalf("oldest attempt: %v", err)
	}
	if !found {
		t.Fatal("expected an attempt in the window")
	}
	if !oldest.Equal(base.Add(-30 * time.Second)) {
		t.Fatalf("unexpected oldest attempt %v", oldest)
	}

	if err := store.TrimWindow(ctx, "1.2.3.4", window, base); err != nil {
		t.Fatalf("trim window: %v", err)
	}

	// Trimming removes the stale attempt but keeps in-window ones.
	count, err = store.CountAttempts(ctx, "1.2.3.4", 24*time.Hour, base)
	if err != nil {
		t.Fatalf("count after trim: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 attempts after trim, got %d", count)
	}
}

func TestRateLimitStoreIsolatesIdentifiers(t *testing.T) {
	client := newTestClient(t)
	store := NewRateLimitStore(client, "test:ratelimit")

	ctx := context.Background()
	now := time.Now()

	if err := store.RecordAttempt(ctx, "1.2.3.4", now); err != nil {
		t.Fatalf("record attempt: %v", err)
	}

	count, err := store.CountAttempts(ctx, "5.6.7.8", time.Minute, now)
	if err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 attempts for other identifier, got %d", count)
	}

	_, found, err := store.OldestAttempt(ctx, "5.6.7.8", time.Minute, now)
	if err != nil {
		t.Fatalf("oldest attempt: %v", err)
	}
	if found {
		t.Fatal("expected no attempts for other identifier")
	}
}
