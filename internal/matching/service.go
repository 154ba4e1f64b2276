package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillswap/backend/internal/messaging"
	"github.com/skillswap/backend/internal/metrics"
)

// RefreshRequest is the NATS payload sent by the API server when a user's
// matches need recomputing, typically after a profile edit.
type RefreshRequest struct {
	UserID string `json:"user_id"`
}

// UserSource loads scoring inputs for the matcher. It is implemented by the
// profile store; the matcher itself never touches Postgres directly.
type UserSource interface {
	// User returns the scoring view of one user. Returns nil if not found.
	User(ctx context.Context, id string) (*User, error)
	// Candidates returns the scoring views of every completed profile
	// except the excluded user.
	Candidates(ctx context.Context, excludeID string) ([]User, error)
}

// Service is the background matching service. It recomputes ranked match
// results on demand, caches them in Redis, and publishes them over NATS.
type Service struct {
	source UserSource
	cache  *Cache
	nats   *messaging.NATSClient
	ctx    context.Context
	cancel context.CancelFunc
}

// NewService creates a new matching service.
func NewService(source UserSource, rdb *redis.Client, nats *messaging.NATSClient) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		source: source,
		cache:  NewCache(rdb),
		nats:   nats,
		ctx:    ctx,
		cancel: cancel,
	}
}

// sweepInterval is how often the result cache is checked for entries whose
// expiry can no longer fire.
const sweepInterval = 5 * time.Minute

// Start subscribes to refresh requests over NATS and starts the periodic
// cache sweep.
func (s *Service) Start() error {
	if err := s.nats.SubscribeMatchRefresh(s.handleRefresh); err != nil {
		return err
	}

	go s.sweepLoop()

	log.Println("[matcher] service started")
	return nil
}

// sweepLoop periodically reclaims cache entries that lost their TTL. It
// exits when the service is stopped.
func (s *Service) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			n, err := s.cache.SweepExpired(s.ctx)
			if err != nil {
				log.Printf("[matcher] cache sweep: %v", err)
			}
			if n > 0 {
				log.Printf("[matcher] cache sweep removed %d orphaned entries", n)
			}
		}
	}
}

// Stop gracefully shuts down the matching service.
func (s *Service) Stop() {
	s.cancel()
	log.Println("[matcher] service stopped")
}

func (s *Service) handleRefresh(data []byte) {
	var req RefreshRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("[matcher] invalid refresh request: %v", err)
		return
	}
	if req.UserID == "" {
		log.Printf("[matcher] refresh request missing user_id")
		return
	}

	rs, err := s.Refresh(s.ctx, req.UserID)
	if err != nil {
		metrics.MatchRefreshTotal.WithLabelValues("error").Inc()
		log.Printf("[matcher] refresh %s: %v", req.UserID, err)
		return
	}

	metrics.MatchRefreshTotal.WithLabelValues("ok").Inc()
	log.Printf("[matcher] refreshed %s (%d results)", req.UserID, len(rs.Results))
}

// Refresh recomputes a user's ranked matches against the full candidate pool,
// caches the result set, and publishes it on match.results.<user_id>.
func (s *Service) Refresh(ctx context.Context, userID string) (*ResultSet, error) {
	focal, err := s.source.User(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("matching: load user %s: %w", userID, err)
	}
	if focal == nil {
		// No completed profile yet. Zero results, not an error: every
		// freshly signed-up user hits this path before finishing setup.
		return &ResultSet{
			UserID:     userID,
			ComputedAt: time.Now().UTC(),
			Results:    []MatchResult{},
		}, nil
	}

	pool, err := s.source.Candidates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("matching: load candidates for %s: %w", userID, err)
	}

	start := time.Now()
	results := ComputeMatches(*focal, pool)
	metrics.MatchComputeDuration.Observe(time.Since(start).Seconds())

	rs := &ResultSet{
		UserID:     userID,
		ComputedAt: time.Now().UTC(),
		Results:    results,
	}

	// Cache and publish failures are logged rather than returned: the
	// computed results are still valid and go back to the caller.
	if err := s.cache.Put(ctx, rs); err != nil {
		log.Printf("[matcher] cache results for %s: %v", userID, err)
	}
	if err := PublishResults(s.nats, rs); err != nil {
		log.Printf("[matcher] publish results for %s: %v", userID, err)
	}

	return rs, nil
}

// Results returns a user's ranked matches, serving from the cache when
// possible and recomputing on a miss.
func (s *Service) Results(ctx context.Context, userID string) (*ResultSet, error) {
	rs, err := s.cache.Get(ctx, userID)
	if err != nil {
		log.Printf("[matcher] cache read for %s: %v", userID, err)
	}
	if rs != nil {
		return rs, nil
	}
	return s.Refresh(ctx, userID)
}

// Invalidate drops cached results for the given users.
func (s *Service) Invalidate(ctx context.Context, userIDs ...string) error {
	return s.cache.Invalidate(ctx, userIDs...)
}
