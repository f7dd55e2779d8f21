package redis

import (
	"context"
	"testing"
	"time"
)

func TestSignInLimiter_DeniesAfterMaxFailures(t *testing.T) {
	_, client := newTestClient(t)
	l := NewSignInLimiter(client, 5, 15*time.Minute)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		ok, err := l.Allow(ctx, "dana@example.com")
		if err != nil || !ok {
			t.Fatalf("attempt %d: expected allowed, got ok=%v err=%v", i, ok, err)
		}
		if err := l.RecordFailure(ctx, "dana@example.com"); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}

	ok, err := l.Allow(ctx, "dana@example.com")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatalf("sixth attempt should be denied")
	}

	if ok, _ := l.Allow(ctx, "  DANA@example.com "); ok {
		t.Fatalf("email should be normalised into the same counter")
	}
	if ok, _ := l.Allow(ctx, "other@example.com"); !ok {
		t.Fatalf("other accounts must not be throttled")
	}
}

func TestSignInLimiter_ResetClearsCount(t *testing.T) {
	mr, client := newTestClient(t)
	l := NewSignInLimiter(client, 5, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = l.RecordFailure(ctx, "dana@example.com")
	}
	if err := l.Reset(ctx, "dana@example.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if mr.Exists("signin:dana@example.com") {
		t.Fatalf("counter key should be gone after reset")
	}
	if ok, err := l.Allow(ctx, "dana@example.com"); err != nil || !ok {
		t.Fatalf("expected allowed after reset, got ok=%v err=%v", ok, err)
	}
}

func TestSignInLimiter_WindowStartsAtFirstFailure(t *testing.T) {
	mr, client := newTestClient(t)
	l := NewSignInLimiter(client, 5, 15*time.Minute)
	ctx := context.Background()
	key := "signin:dana@example.com"

	_ = l.RecordFailure(ctx, "dana@example.com")
	if ttl := mr.TTL(key); ttl != 15*time.Minute {
		t.Fatalf("expected 15m window, got %v", ttl)
	}

	mr.FastForward(10 * time.Minute)
	_ = l.RecordFailure(ctx, "dana@example.com")
	if ttl := mr.TTL(key); ttl != 5*time.Minute {
		t.Fatalf("later failures must not extend the window, ttl=%v", ttl)
	}

	mr.FastForward(5*time.Minute + time.Second)
	if mr.Exists(key) {
		t.Fatalf("counter should expire with the window")
	}
}

func TestSignInLimiter_Defaults(t *testing.T) {
	_, client := newTestClient(t)
	l := NewSignInLimiter(client, 0, 0)

	if l.maxAttempts != defaultMaxAttempts || l.window != defaultWindow {
		t.Fatalf("expected defaults, got %d/%v", l.maxAttempts, l.window)
	}
}
