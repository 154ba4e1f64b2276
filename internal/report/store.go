// Package report provides PostgreSQL-backed storage for abuse reports.
// Each report captures who reported whom, the match it happened on, and an
// optional free-text comment for moderator review.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// validReasons is the set of allowed reason values, matching the CHECK
// constraint on the abuse_reports table.
var validReasons = map[string]bool{
	"harassment": true,
	"spam":       true,
	"no_show":    true,
	"other":      true,
}

// ValidReason reports whether reason is an accepted report reason.
func ValidReason(reason string) bool {
	return validReasons[reason]
}

// Store manages abuse reports in PostgreSQL.
type Store struct {
	db *sql.DB
}

// Report is a single abuse report filed by one match participant against
// the other.
type Report struct {
	ID         uuid.UUID `json:"id"`
	MatchID    uuid.UUID `json:"match_id"`
	ReporterID uuid.UUID `json:"reporter_id"`
	ReportedID uuid.UUID `json:"reported_id"`
	Reason     string    `json:"reason"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewStore creates a report store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts an abuse report. The reason is validated against the
// allowed set before insertion.
func (s *Store) Create(ctx context.Context, r *Report) error {
	if !validReasons[r.Reason] {
		return fmt.Errorf("report: invalid reason %q", r.Reason)
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	const query = `
		INSERT INTO abuse_reports (id, match_id, reporter_id, reported_id, reason, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query,
		r.ID, r.MatchID, r.ReporterID, r.ReportedID, r.Reason, r.Comment,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("report: insert: %w", err)
	}
	return nil
}

// CountRecent returns the number of reports filed against a user within the
// given time window. Used by the auto-suspension policy.
func (s *Store) CountRecent(ctx context.Context, reportedID uuid.UUID, window time.Duration) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM abuse_reports
		WHERE reported_id = $1
		  AND created_at >= NOW() - $2::interval`

	var count int
	err := s.db.QueryRowContext(ctx, query, reportedID, window.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("report: count recent: %w", err)
	}
	return count, nil
}

// HasReported reports whether the reporter already filed a report for this
// match. One report per participant per match keeps strike counts honest.
func (s *Store) HasReported(ctx context.Context, matchID, reporterID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM abuse_reports
			WHERE match_id = $1 AND reporter_id = $2
		)`

	var exists bool
	err := s.db.QueryRowContext(ctx, query, matchID, reporterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("report: has reported: %w", err)
	}
	return exists, nil
}
