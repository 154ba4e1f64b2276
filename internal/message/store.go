// Package message provides PostgreSQL-backed storage for chat messages
// exchanged within a match, plus an in-memory buffer of the most recent
// messages per conversation for cheap previews.
package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is one persisted chat message.
type Message struct {
	ID        uuid.UUID `json:"id"`
	MatchID   uuid.UUID `json:"match_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages messages in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates a message store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a message and returns it with its assigned timestamp.
func (s *Store) Create(ctx context.Context, matchID, senderID uuid.UUID, content string) (*Message, error) {
	m := &Message{
		ID:       uuid.New(),
		MatchID:  matchID,
		SenderID: senderID,
		Content:  content,
	}

	const query = `
		INSERT INTO messages (id, match_id, sender_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query, m.ID, m.MatchID, m.SenderID, m.Content).
		Scan(&m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("message: insert: %w", err)
	}
	return m, nil
}

// ListByMatch returns up to limit messages for a match, newest first,
// skipping offset rows. Callers reverse the page if they want
// chronological display order.
func (s *Store) ListByMatch(ctx context.Context, matchID uuid.UUID, limit, offset int) ([]Message, error) {
	const query = `
		SELECT id, match_id, sender_id, content, read, created_at
		FROM messages
		WHERE match_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.db.QueryContext(ctx, query, matchID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("message: list: %w", err)
	}
	defer rows.Close()

	out := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.MatchID, &m.SenderID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("message: scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("message: list: %w", err)
	}
	return out, nil
}

// MarkRead flags every message in the match sent by the other side as
// read. Returns the number of messages updated.
func (s *Store) MarkRead(ctx context.Context, matchID, readerID uuid.UUID) (int64, error) {
	const query = `
		UPDATE messages SET read = TRUE
		WHERE match_id = $1 AND sender_id <> $2 AND NOT read`

	res, err := s.db.ExecContext(ctx, query, matchID, readerID)
	if err != nil {
		return 0, fmt.Errorf("message: mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("message: mark read: %w", err)
	}
	return n, nil
}

// UnreadCount returns how many messages addressed to the user in this
// match are still unread.
func (s *Store) UnreadCount(ctx context.Context, matchID, userID uuid.UUID) (int, error) {
	const query = `
		SELECT COUNT(*) FROM messages
		WHERE match_id = $1 AND sender_id <> $2 AND NOT read`

	var count int
	err := s.db.QueryRowContext(ctx, query, matchID, userID).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("message: unread count: %w", err)
	}
	return count, nil
}
