package match

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidTransition is returned when a status update would violate the
// lifecycle state machine.
var ErrInvalidTransition = errors.New("match: invalid status transition")

// Match is a persisted match record between two users.
type Match struct {
	ID        uuid.UUID
	UserA     uuid.UUID
	UserB     uuid.UUID
	Score     float64
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Partner returns the other participant's ID, or uuid.Nil if the given
// user is not part of this match.
func (m *Match) Partner(userID uuid.UUID) uuid.UUID {
	switch userID {
	case m.UserA:
		return m.UserB
	case m.UserB:
		return m.UserA
	}
	return uuid.Nil
}

// IsParticipant reports whether the user is one of the two sides.
func (m *Match) IsParticipant(userID uuid.UUID) bool {
	return userID == m.UserA || userID == m.UserB
}

// Store manages match records in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a match store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const matchColumns = `id, user_a, user_b, match_score, status, created_at, updated_at`

// Create inserts a new pending match between two users.
func (s *Store) Create(ctx context.Context, userA, userB uuid.UUID, score float64) (*Match, error) {
	m := &Match{
		ID:     uuid.New(),
		UserA:  userA,
		UserB:  userB,
		Score:  score,
		Status: StatusPending,
	}

	const query = `
		INSERT INTO matches (id, user_a, user_b, match_score, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query, m.ID, m.UserA, m.UserB, m.Score, m.Status).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("match: insert: %w", err)
	}
	return m, nil
}

// Get retrieves a match by ID. Returns nil if not found.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Match, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)

	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// FindBetween retrieves the match record for an unordered user pair. A pair
// can accumulate terminal records over time but holds at most one open one;
// the open record is preferred, falling back to the newest terminal record.
// Returns nil if the pair has no record at all.
func (s *Store) FindBetween(ctx context.Context, a, b uuid.UUID) (*Match, error) {
	const query = `
		SELECT ` + matchColumns + ` FROM matches
		WHERE (user_a = $1 AND user_b = $2) OR (user_a = $2 AND user_b = $1)
		ORDER BY (status IN ('pending', 'accepted')) DESC, created_at DESC
		LIMIT 1`

	m, err := scanMatch(s.db.QueryRowContext(ctx, query, a, b))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// ListForUser returns all matches the user participates in, newest first.
func (s *Store) ListForUser(ctx context.Context, userID uuid.UUID) ([]Match, error) {
	const query = `
		SELECT ` + matchColumns + ` FROM matches
		WHERE user_a = $1 OR user_b = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("match: list for user: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match: list for user: %w", err)
	}
	return out, nil
}

// UpdateStatus moves a match to a new lifecycle status, enforcing the
// transition table atomically: the row is only updated when its current
// status still permits the move. Returns the updated match, or
// ErrInvalidTransition if the move is not allowed (or the match is gone).
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Match, error) {
	if !IsTransitionAllowed(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	const query = `
		UPDATE matches SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + matchColumns

	m, err := scanMatch(s.db.QueryRowContext(ctx, query, id, from, to))
	if errors.Is(err, sql.ErrNoRows) {
		// Either the match does not exist or a concurrent update already
		// moved it out of the expected status.
		return nil, fmt.Errorf("%w: match %s is not %s", ErrInvalidTransition, id, from)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (*Match, error) {
	var (
		m      Match
		status string
	)
	err := row.Scan(&m.ID, &m.UserA, &m.UserB, &m.Score, &status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("match: scan: %w", err)
	}

	m.Status, err = ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
