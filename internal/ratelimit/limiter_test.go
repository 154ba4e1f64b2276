package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// newTestLimiter creates a Limiter against a local Redis instance and clears
// leftover test keys. Tests that call this helper require a running Redis on
// localhost:6379.
func newTestLimiter(t *testing.T) *Limiter {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	cleanup := func() {
		iter := client.Scan(ctx, 0, "rl:*:test_*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		client.Close()
	})
	return NewLimiter(client)
}

func TestAllow_WithinLimit(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Key: "rl:msg:", Limit: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "test_within", rule)
		if err != nil {
			t.Fatalf("Allow() error on hit %d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("hit %d denied, want allowed", i+1)
		}
	}
}

func TestAllow_OverLimit(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Key: "rl:msg:", Limit: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.Allow(ctx, "test_over", rule); !ok {
			t.Fatalf("hit %d denied, want allowed", i+1)
		}
	}

	ok, err := limiter.Allow(ctx, "test_over", rule)
	if err != nil {
		t.Fatalf("Allow() error: %v", err)
	}
	if ok {
		t.Error("third hit allowed, want denied")
	}
}

func TestAllow_IdentifiersIsolated(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Key: "rl:auth:", Limit: 1, Window: time.Minute}

	if ok, _ := limiter.Allow(ctx, "test_ip_a", rule); !ok {
		t.Fatal("first identifier denied on first hit")
	}
	if ok, _ := limiter.Allow(ctx, "test_ip_a", rule); ok {
		t.Error("first identifier allowed past its limit")
	}
	if ok, _ := limiter.Allow(ctx, "test_ip_b", rule); !ok {
		t.Error("second identifier denied, counters should be isolated")
	}
}

func TestAllow_WindowExpires(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Key: "rl:conn:", Limit: 1, Window: time.Second}

	if ok, _ := limiter.Allow(ctx, "test_expiry", rule); !ok {
		t.Fatal("first hit denied")
	}
	if ok, _ := limiter.Allow(ctx, "test_expiry", rule); ok {
		t.Fatal("second hit allowed inside the window")
	}

	time.Sleep(1100 * time.Millisecond)

	if ok, _ := limiter.Allow(ctx, "test_expiry", rule); !ok {
		t.Error("hit denied after the window expired")
	}
}

func TestRemaining(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Key: "rl:refresh:", Limit: 5, Window: time.Minute}

	n, err := limiter.Remaining(ctx, "test_remaining", rule)
	if err != nil {
		t.Fatalf("Remaining() error: %v", err)
	}
	if n != 5 {
		t.Errorf("untouched identifier: got %d remaining, want 5", n)
	}

	for i := 0; i < 2; i++ {
		limiter.Allow(ctx, "test_remaining", rule)
	}

	n, err = limiter.Remaining(ctx, "test_remaining", rule)
	if err != nil {
		t.Fatalf("Remaining() error: %v", err)
	}
	if n != 3 {
		t.Errorf("after 2 hits: got %d remaining, want 3", n)
	}
}

func TestRemaining_NeverNegative(t *testing.T) {
	limiter := newTestLimiter(t)
	ctx := context.Background()
	rule := Rule{Key: "rl:msg:", Limit: 1, Window: time.Minute}

	for i := 0; i < 4; i++ {
		limiter.Allow(ctx, "test_floor", rule)
	}

	n, err := limiter.Remaining(ctx, "test_floor", rule)
	if err != nil {
		t.Fatalf("Remaining() error: %v", err)
	}
	if n != 0 {
		t.Errorf("got %d remaining, want 0", n)
	}
}
