package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionPrefix is the Redis key prefix for all session hashes.
	SessionPrefix = "session:"

	// SessionTTL is the time-to-live for session keys in Redis. Sessions
	// are refreshed on use, so an idle login expires after a day.
	SessionTTL = 24 * time.Hour
)

// Session represents an authenticated session stored in Redis.
type Session struct {
	Token      string `redis:"token"`
	UserID     string `redis:"user_id"`
	Server     string `redis:"server"`       // which server instance issued it
	MatchID    string `redis:"match_id"`     // active chat match, empty if none
	CreatedAt  int64  `redis:"created_at"`   // unix timestamp
	LastActive int64  `redis:"last_active"`  // unix timestamp
}

// Store manages session state in Redis.
type Store struct {
	client     *redis.Client
	serverName string // identifier for this server instance
}

// NewStore creates a new session store connected to Redis.
func NewStore(redisAddr string, serverName string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// Verify connection.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: redis connection failed: %w", err)
	}

	return &Store{client: client, serverName: serverName}, nil
}

// Create issues a new session token for the given user and stores it with
// the standard TTL.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	key := SessionPrefix + token
	now := time.Now().Unix()

	session := map[string]interface{}{
		"token":       token,
		"user_id":     userID,
		"server":      s.serverName,
		"match_id":    "",
		"created_at":  now,
		"last_active": now,
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, session)
	pipe.Expire(ctx, key, SessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("session: create for user %s: %w", userID, err)
	}
	return token, nil
}

// Get retrieves a session by token. Returns nil if not found or expired.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	key := SessionPrefix + token
	var session Session
	err := s.client.HGetAll(ctx, key).Scan(&session)
	if err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, nil // not found
	}
	return &session, nil
}

// Touch records activity on the session and refreshes its TTL.
func (s *Store) Touch(ctx context.Context, token string) error {
	key := SessionPrefix + token
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, "last_active", time.Now().Unix())
	pipe.Expire(ctx, key, SessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// SetMatchID records the match whose chat this session is currently in.
func (s *Store) SetMatchID(ctx context.Context, token string, matchID string) error {
	key := SessionPrefix + token
	return s.client.HSet(ctx, key, "match_id", matchID, "last_active", time.Now().Unix()).Err()
}

// ClearMatchID clears the session's active chat match.
func (s *Store) ClearMatchID(ctx context.Context, token string) error {
	key := SessionPrefix + token
	return s.client.HSet(ctx, key, "match_id", "", "last_active", time.Now().Unix()).Err()
}

// Delete removes a session, logging the user out.
func (s *Store) Delete(ctx context.Context, token string) error {
	key := SessionPrefix + token
	return s.client.Del(ctx, key).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client for use by other packages.
func (s *Store) Client() *redis.Client {
	return s.client
}
