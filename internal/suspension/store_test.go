package suspension

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// newTestStore creates a Store connected to a local Redis instance and
// flushes all suspension and strike test keys before returning. Tests that
// call this helper require a running Redis on localhost:6379.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	cleanup := func() {
		for _, prefix := range []string{SuspendPrefix + "test_*", StrikesPrefix + "test_*"} {
			iter := client.Scan(ctx, 0, prefix, 100).Iterator()
			for iter.Next(ctx) {
				client.Del(ctx, iter.Val())
			}
		}
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		client.Close()
	})
	return NewStore(client)
}

func TestIsSuspended_NotSuspended(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	suspended, remaining, reason, err := store.IsSuspended(ctx, "test_clean_user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suspended {
		t.Errorf("expected not suspended, got suspended (remaining=%d reason=%q)", remaining, reason)
	}
}

func TestSuspendAndCheck(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := "test_suspend_check"

	if err := store.Suspend(ctx, uid, 30*time.Second, "spam"); err != nil {
		t.Fatalf("Suspend() error: %v", err)
	}

	suspended, remaining, reason, err := store.IsSuspended(ctx, uid)
	if err != nil {
		t.Fatalf("IsSuspended() error: %v", err)
	}
	if !suspended {
		t.Fatal("expected suspended=true")
	}
	if reason != "spam" {
		t.Errorf("expected reason=%q, got %q", "spam", reason)
	}
	if remaining <= 0 || remaining > 30 {
		t.Errorf("expected remaining in (0,30], got %d", remaining)
	}
}

func TestLift(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := "test_lift"

	if err := store.Suspend(ctx, uid, time.Minute, "test"); err != nil {
		t.Fatalf("Suspend() error: %v", err)
	}

	suspended, _, _, _ := store.IsSuspended(ctx, uid)
	if !suspended {
		t.Fatal("expected suspended=true after Suspend()")
	}

	if err := store.Lift(ctx, uid); err != nil {
		t.Fatalf("Lift() error: %v", err)
	}
	suspended, _, _, err := store.IsSuspended(ctx, uid)
	if err != nil {
		t.Fatalf("IsSuspended() error: %v", err)
	}
	if suspended {
		t.Error("expected not suspended after Lift()")
	}
}

func TestEscalationDuration(t *testing.T) {
	cases := []struct {
		strikes  int
		expected time.Duration
	}{
		{1, Suspend24Hour},
		{3, Suspend24Hour},
		{4, Suspend7Day},
		{5, Suspend30Day},
		{10, Suspend30Day},
	}
	for _, tc := range cases {
		got := escalationDuration(tc.strikes)
		if got != tc.expected {
			t.Errorf("escalationDuration(%d) = %v, want %v", tc.strikes, got, tc.expected)
		}
	}
}

func TestStrikes_None(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.Strikes(ctx, "test_no_strikes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 strikes, got %d", count)
	}
}

func TestRecordStrike_BelowThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := "test_strike_below"

	suspended, duration, err := store.RecordStrike(ctx, uid, "harassment")
	if err != nil {
		t.Fatalf("RecordStrike() error: %v", err)
	}
	if suspended {
		t.Error("expected suspended=false after 1 strike")
	}
	if duration != 0 {
		t.Errorf("expected duration=0, got %v", duration)
	}

	suspended, _, err = store.RecordStrike(ctx, uid, "harassment")
	if err != nil {
		t.Fatalf("RecordStrike() error: %v", err)
	}
	if suspended {
		t.Error("expected suspended=false after 2 strikes")
	}

	isSuspended, _, _, _ := store.IsSuspended(ctx, uid)
	if isSuspended {
		t.Error("user should not be suspended with only 2 strikes")
	}
}

func TestRecordStrike_AutoSuspendAtThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := "test_strike_threshold"

	store.RecordStrike(ctx, uid, "spam")
	store.RecordStrike(ctx, uid, "spam")

	suspended, duration, err := store.RecordStrike(ctx, uid, "spam")
	if err != nil {
		t.Fatalf("RecordStrike() error: %v", err)
	}
	if !suspended {
		t.Fatal("expected suspended=true after 3 strikes")
	}
	if duration != Suspend24Hour {
		t.Errorf("expected duration %v, got %v", Suspend24Hour, duration)
	}

	isSuspended, _, reason, _ := store.IsSuspended(ctx, uid)
	if !isSuspended {
		t.Fatal("expected IsSuspended=true after auto-suspend")
	}
	if reason != "spam" {
		t.Errorf("expected reason=%q, got %q", "spam", reason)
	}
}

func TestRecordStrike_EscalatesPastThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := "test_strike_escalate"

	store.RecordStrike(ctx, uid, "spam")
	store.RecordStrike(ctx, uid, "spam")
	store.RecordStrike(ctx, uid, "spam")

	// Fourth strike escalates to a week.
	suspended, duration, err := store.RecordStrike(ctx, uid, "spam")
	if err != nil {
		t.Fatalf("RecordStrike() error: %v", err)
	}
	if !suspended {
		t.Fatal("expected suspended=true for 4th strike")
	}
	if duration != Suspend7Day {
		t.Errorf("expected %v, got %v", Suspend7Day, duration)
	}

	// Fifth strike escalates to a month.
	_, duration, err = store.RecordStrike(ctx, uid, "spam")
	if err != nil {
		t.Fatalf("RecordStrike() error: %v", err)
	}
	if duration != Suspend30Day {
		t.Errorf("expected %v, got %v", Suspend30Day, duration)
	}
}

func TestStrikeCounterTTL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := "test_strike_ttl"

	store.RecordStrike(ctx, uid, "test")

	key := StrikesPrefix + uid
	ttl, err := store.client.TTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("TTL() error: %v", err)
	}
	// TTL should be positive and close to the 7-day window. Allow 10s slack.
	if ttl < StrikesTTL-10*time.Second || ttl > StrikesTTL {
		t.Errorf("expected TTL ~%v, got %v", StrikesTTL, ttl)
	}
}

func TestStrikes_AfterRecording(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uid := "test_strike_count"

	store.RecordStrike(ctx, uid, "a")
	store.RecordStrike(ctx, uid, "b")
	store.RecordStrike(ctx, uid, "c")

	count, err := store.Strikes(ctx, uid)
	if err != nil {
		t.Fatalf("Strikes() error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count=3, got %d", count)
	}
}
