// Package ratelimit provides Redis-backed rate limiting using the INCR + EXPIRE
// fixed window algorithm. It is designed for high-throughput API and
// WebSocket servers where each action (message, match refresh, login,
// connection) needs per-user or per-IP throttling.
package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule defines one throttling policy: the Redis key prefix, the maximum
// number of hits per window, and the window duration.
type Rule struct {
	Key    string        // Redis key prefix (e.g., "rl:msg:", "rl:refresh:")
	Limit  int           // max count in the window
	Window time.Duration // time window
}

// Standard rate limiting rules.
var (
	// RuleMessage allows 10 chat messages per 10 seconds per user.
	RuleMessage = Rule{Key: "rl:msg:", Limit: 10, Window: 10 * time.Second}

	// RuleRefresh allows 5 match recomputes per minute per user.
	RuleRefresh = Rule{Key: "rl:refresh:", Limit: 5, Window: 1 * time.Minute}

	// RuleAuth allows 10 login or signup attempts per minute per IP.
	RuleAuth = Rule{Key: "rl:auth:", Limit: 10, Window: 1 * time.Minute}

	// RuleConnect allows 5 WebSocket connections per minute per IP.
	RuleConnect = Rule{Key: "rl:conn:", Limit: 5, Window: 1 * time.Minute}
)

// Limiter performs rate limiting checks against Redis.
type Limiter struct {
	client *redis.Client
}

// NewLimiter creates a Limiter backed by the given Redis client.
func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow records one hit for the identifier under the given rule and reports
// whether it is still inside the limit. The counter and its window TTL are
// written in one pipeline round trip; EXPIRE NX arms the TTL only on the
// first hit so the window boundary is fixed by the first request.
//
// On Redis errors the method fails open (returns true) so that a Redis
// outage does not block legitimate traffic.
func (l *Limiter) Allow(ctx context.Context, identifier string, rule Rule) (bool, error) {
	key := rule.Key + identifier

	pipe := l.client.Pipeline()
	hits := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, rule.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[ratelimit] redis pipeline error key=%s: %v (failing open)", key, err)
		return true, err
	}

	return hits.Val() <= int64(rule.Limit), nil
}

// Remaining reports how many hits the identifier has left in the current
// window. An absent counter means the full limit is available, as does a
// Redis error (fail open).
func (l *Limiter) Remaining(ctx context.Context, identifier string, rule Rule) (int, error) {
	key := rule.Key + identifier

	hits, err := l.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return rule.Limit, nil
	}
	if err != nil {
		log.Printf("[ratelimit] redis GET error key=%s: %v (failing open)", key, err)
		return rule.Limit, err
	}

	if hits >= rule.Limit {
		return 0, nil
	}
	return rule.Limit - hits, nil
}
