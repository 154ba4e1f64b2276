package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/matching"
)

// MatchSource adapts the profile store to the matcher's UserSource interface,
// translating stored profiles into scoring views.
type MatchSource struct {
	store *Store
}

// NewMatchSource wraps a profile store for use by the matcher.
func NewMatchSource(store *Store) *MatchSource {
	return &MatchSource{store: store}
}

// User returns the scoring view of one user. Returns nil if the profile does
// not exist or is not yet completed.
func (m *MatchSource) User(ctx context.Context, id string) (*matching.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("profile: parse user id %q: %w", id, err)
	}

	p, err := m.store.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.ProfileCompleted {
		return nil, nil
	}

	u := p.MatchUser()
	return &u, nil
}

// Candidates returns scoring views for every completed profile except the
// excluded user.
func (m *MatchSource) Candidates(ctx context.Context, excludeID string) ([]matching.User, error) {
	uid, err := uuid.Parse(excludeID)
	if err != nil {
		return nil, fmt.Errorf("profile: parse user id %q: %w", excludeID, err)
	}

	profiles, err := m.store.ListCandidates(ctx, uid)
	if err != nil {
		return nil, err
	}

	users := make([]matching.User, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, p.MatchUser())
	}
	return users, nil
}
