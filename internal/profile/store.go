// Package profile provides PostgreSQL-backed storage for user profiles:
// identity, declared teach/learn skills, and the weekly availability
// schedule the matching engine scores against. Availability is validated at
// this boundary so the engine only ever sees well-formed slots.
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/skillswap/backend/internal/matching"
)

// Profile is a stored user profile.
type Profile struct {
	ID               uuid.UUID
	Email            string
	Name             string
	PasswordHash     string
	Bio              string
	TeachSkills      []string
	LearnSkills      []string
	Availability     []matching.Slot
	ProfileCompleted bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MatchUser converts the profile to the matching engine's read-only view.
func (p *Profile) MatchUser() matching.User {
	return matching.User{
		ID:           p.ID.String(),
		TeachSkills:  p.TeachSkills,
		LearnSkills:  p.LearnSkills,
		Availability: p.Availability,
	}
}

// slotJSON is the wire/storage form of one availability slot.
type slotJSON struct {
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// EncodeAvailability serializes a schedule for JSONB storage.
func EncodeAvailability(slots []matching.Slot) ([]byte, error) {
	out := make([]slotJSON, len(slots))
	for i, s := range slots {
		out[i] = slotJSON{
			Day:       s.Day.String(),
			StartTime: s.Start.String(),
			EndTime:   s.End.String(),
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("profile: encode availability: %w", err)
	}
	return data, nil
}

// DecodeAvailability parses and validates a stored or submitted schedule.
// Any malformed slot fails the whole schedule: partial schedules would
// silently skew overlap totals.
func DecodeAvailability(data []byte) ([]matching.Slot, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raw []slotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("profile: decode availability: %w", err)
	}
	slots := make([]matching.Slot, 0, len(raw))
	for _, r := range raw {
		s, err := matching.ParseSlot(r.Day, r.StartTime, r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("profile: invalid availability slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, nil
}

// Store manages user profiles in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a profile store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const profileColumns = `id, email, name, password_hash, bio, teach_skills, learn_skills, availability, profile_completed, created_at, updated_at`

// Create inserts a new profile. The caller is expected to have set the ID.
func (s *Store) Create(ctx context.Context, p *Profile) error {
	availability, err := EncodeAvailability(p.Availability)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO users (id, email, name, password_hash, bio, teach_skills, learn_skills, availability, profile_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.Email, p.Name, p.PasswordHash, p.Bio,
		pq.Array(p.TeachSkills), pq.Array(p.LearnSkills),
		availability, p.ProfileCompleted,
	)
	if err != nil {
		return fmt.Errorf("profile: insert: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID. Returns nil if not found.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM users WHERE id = $1`, id)
	return scanProfile(row)
}

// GetByEmail retrieves a profile by email. Returns nil if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM users WHERE email = $1`, email)
	return scanProfile(row)
}

// Update persists the mutable profile fields: name, bio, skills,
// availability, and the completion flag.
func (s *Store) Update(ctx context.Context, p *Profile) error {
	availability, err := EncodeAvailability(p.Availability)
	if err != nil {
		return err
	}

	const query = `
		UPDATE users
		SET name = $2, bio = $3, teach_skills = $4, learn_skills = $5,
		    availability = $6, profile_completed = $7, updated_at = NOW()
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Bio,
		pq.Array(p.TeachSkills), pq.Array(p.LearnSkills),
		availability, p.ProfileCompleted,
	)
	if err != nil {
		return fmt.Errorf("profile: update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("profile: update: no profile with id %s", p.ID)
	}
	return nil
}

// ListCandidates returns every completed profile except the given one.
// This is the candidate pool handed to the matching engine; profiles still
// being filled in are not offered as matches.
func (s *Store) ListCandidates(ctx context.Context, exclude uuid.UUID) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM users WHERE profile_completed AND id <> $1`, exclude)
	if err != nil {
		return nil, fmt.Errorf("profile: list candidates: %w", err)
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfileRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profile: list candidates: %w", err)
	}
	return out, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row *sql.Row) (*Profile, error) {
	p, err := scanProfileRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func scanProfileRow(row scanner) (*Profile, error) {
	var (
		p            Profile
		availability []byte
	)
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.PasswordHash, &p.Bio,
		pq.Array(&p.TeachSkills), pq.Array(&p.LearnSkills),
		&availability, &p.ProfileCompleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("profile: scan: %w", err)
	}

	p.Availability, err = DecodeAvailability(availability)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
