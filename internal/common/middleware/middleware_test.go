package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenBucketExhausts(t *testing.T) {
	tb := NewTokenBucket(2, 1)
	ctx := context.Background()

	if !tb.Allow(ctx) || !tb.Allow(ctx) {
		t.Fatalf("expected first two requests allowed")
	}
	if tb.Allow(ctx) {
		t.Fatalf("expected third request rejected")
	}
}

func TestSlidingWindowLimits(t *testing.T) {
	sw := NewSlidingWindow(time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !sw.Allow(ctx) {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if sw.Allow(ctx) {
		t.Fatalf("expected request beyond window limit rejected")
	}
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 50*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if err := cb.Call(ctx, func() error { return boom }); err != boom {
			t.Fatalf("expected underlying error, got %v", err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state after failures")
	}
	if err := cb.Call(ctx, func() error { return nil }); err != ErrCircuitOpen {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("expected half-open probe to pass: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed state after successful probe")
	}
}
