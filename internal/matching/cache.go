package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key pattern for cached match results.
	keyResultsPrefix = "match:results:" // + <user_id> -> JSON ResultSet

	// TTL for cached results. Stale results are recomputed on demand, so
	// expiry only bounds how long an unrequested cache entry lingers.
	resultsTTL = 10 * time.Minute
)

// ResultSet is a user's ranked match results together with the time they
// were computed. It is both the cache value and the NATS results payload.
type ResultSet struct {
	UserID     string        `json:"user_id"`
	ComputedAt time.Time     `json:"computed_at"`
	Results    []MatchResult `json:"results"`
}

// Cache stores computed match results in Redis, keyed by user ID.
type Cache struct {
	rdb *redis.Client
}

// NewCache creates a match result cache backed by Redis.
func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Put stores a user's result set with the standard TTL.
func (c *Cache) Put(ctx context.Context, rs *ResultSet) error {
	data, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("matching: marshal results for %s: %w", rs.UserID, err)
	}
	if err := c.rdb.Set(ctx, keyResultsPrefix+rs.UserID, data, resultsTTL).Err(); err != nil {
		return fmt.Errorf("matching: cache results for %s: %w", rs.UserID, err)
	}
	return nil
}

// Get retrieves a user's cached result set. Returns nil if not found.
func (c *Cache) Get(ctx context.Context, userID string) (*ResultSet, error) {
	data, err := c.rdb.Get(ctx, keyResultsPrefix+userID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("matching: read cached results for %s: %w", userID, err)
	}

	var rs ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("matching: decode cached results for %s: %w", userID, err)
	}
	return &rs, nil
}

// SweepExpired walks cached result sets and deletes entries that Redis will
// never reclaim on its own: keys left without an armed TTL by a partial
// write or an errant PERSIST. Entries with a TTL expire naturally and are
// left alone. Returns the number of entries removed.
func (c *Cache) SweepExpired(ctx context.Context) (int, error) {
	removed := 0
	iter := c.rdb.Scan(ctx, 0, keyResultsPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ttl, err := c.rdb.TTL(ctx, key).Result()
		if err != nil {
			return removed, fmt.Errorf("matching: sweep ttl %s: %w", key, err)
		}
		// -2s: the key expired between SCAN and TTL. -1s: no expiry armed.
		if ttl != -1*time.Second {
			continue
		}
		if err := c.rdb.Del(ctx, key).Err(); err != nil {
			return removed, fmt.Errorf("matching: sweep del %s: %w", key, err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("matching: sweep scan: %w", err)
	}
	return removed, nil
}

// Invalidate removes cached result sets for the given users. A profile edit
// changes the scores of everyone who matched against that profile, so callers
// pass the affected peers alongside the edited user.
func (c *Cache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}

	pipe := c.rdb.Pipeline()
	for _, id := range userIDs {
		pipe.Del(ctx, keyResultsPrefix+id)
	}
	_, err := pipe.Exec(ctx)
	return err
}
