// Package suspension provides account suspension management backed by Redis.
// Suspensions are stored as simple key-value pairs with TTL-based expiry:
//
//	Key:   suspend:<user_id>
//	Value: <reason>
//	TTL:   suspension duration
//
// A per-user strike counter drives the auto-suspension policy: enough
// reports inside the strike window trigger a suspension whose duration
// escalates with repeat offenses.
package suspension

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SuspendPrefix is the Redis key prefix for suspension records.
	SuspendPrefix = "suspend:"

	// StrikesPrefix is the Redis key prefix for per-user strike counters.
	StrikesPrefix = "strikes:"

	// Escalating suspension durations.
	Suspend24Hour = 24 * time.Hour      // at the threshold
	Suspend7Day   = 7 * 24 * time.Hour  // one past the threshold
	Suspend30Day  = 30 * 24 * time.Hour // further offenses

	// StrikesTTL is how long the strike counter lives in Redis. Without new
	// reports for a week the counter resets to zero.
	StrikesTTL = 7 * 24 * time.Hour

	// AutoSuspendThreshold is the number of reports within StrikesTTL that
	// triggers an automatic suspension.
	AutoSuspendThreshold = 3
)

// Store manages suspension records in Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a suspension store using the provided Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// IsSuspended checks whether a user is currently suspended.
// Returns (suspended, remainingSeconds, reason, error). Redis errors are
// returned so callers can decide how to handle them; the recommended
// policy is fail-open.
func (s *Store) IsSuspended(ctx context.Context, userID string) (bool, int, string, error) {
	key := SuspendPrefix + userID

	reason, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, 0, "", nil
	}
	if err != nil {
		return false, 0, "", err
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		// The suspension exists but the TTL read failed. Report suspended
		// with 0 remaining rather than swallowing it.
		return true, 0, reason, nil
	}

	remaining := 0
	if ttl > 0 {
		remaining = int(ttl.Seconds())
	}

	return true, remaining, reason, nil
}

// Suspend places a suspension on a user for the given duration and reason.
// It expires automatically.
func (s *Store) Suspend(ctx context.Context, userID string, duration time.Duration, reason string) error {
	key := SuspendPrefix + userID
	return s.client.Set(ctx, key, reason, duration).Err()
}

// Lift removes a user's suspension immediately.
func (s *Store) Lift(ctx context.Context, userID string) error {
	key := SuspendPrefix + userID
	return s.client.Del(ctx, key).Err()
}

// escalationDuration returns the suspension duration for a strike count.
func escalationDuration(strikes int) time.Duration {
	switch {
	case strikes <= AutoSuspendThreshold:
		return Suspend24Hour
	case strikes == AutoSuspendThreshold+1:
		return Suspend7Day
	default:
		return Suspend30Day
	}
}

// Strikes returns the current strike counter for a user. Returns 0 if the
// key does not exist (no strikes recorded or the counter expired).
func (s *Store) Strikes(ctx context.Context, userID string) (int, error) {
	key := StrikesPrefix + userID
	val, err := s.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// RecordStrike increments the strike counter for a user and checks whether
// the auto-suspension threshold has been reached.
//
// The counter's TTL is set only on the first increment so the window does
// not slide. Once the threshold is met or exceeded, a suspension is applied
// whose duration escalates with the count:
//
//	3 strikes  -> 24 hours
//	4 strikes  -> 7 days
//	5+ strikes -> 30 days
//
// Returns (suspended, duration, error).
func (s *Store) RecordStrike(ctx context.Context, userID string, reason string) (bool, time.Duration, error) {
	key := StrikesPrefix + userID

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("suspension: strike incr: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, StrikesTTL).Err(); err != nil {
			return false, 0, fmt.Errorf("suspension: strike expire: %w", err)
		}
	}

	if count >= AutoSuspendThreshold {
		duration := escalationDuration(int(count))
		if err := s.Suspend(ctx, userID, duration, reason); err != nil {
			return false, 0, fmt.Errorf("suspension: strike suspend: %w", err)
		}
		return true, duration, nil
	}

	return false, 0, nil
}
