package matching

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/skillswap/backend/internal/messaging"
)

// MatchNotification is sent via NATS match.notify.<user_id> for match
// lifecycle events.
type MatchNotification struct {
	Type    string `json:"type"` // "requested", "accepted", "rejected", "completed"
	MatchID string `json:"match_id"`
	FromID  string `json:"from_id,omitempty"`
}

// PublishResults publishes a freshly computed result set to the owning user
// via NATS.
func PublishResults(nats *messaging.NATSClient, rs *ResultSet) error {
	data, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("matching: marshal result set for %s: %w", rs.UserID, err)
	}
	if err := nats.PublishMatchResults(rs.UserID, data); err != nil {
		return fmt.Errorf("matching: publish match.results for %s: %w", rs.UserID, err)
	}

	log.Printf("[matcher] results published: user=%s count=%d", rs.UserID, len(rs.Results))
	return nil
}

// PublishNotification publishes a match lifecycle event to a user via NATS.
func PublishNotification(nats *messaging.NATSClient, userID string, n MatchNotification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("matching: marshal notification for %s: %w", userID, err)
	}
	if err := nats.PublishMatchNotify(userID, data); err != nil {
		return fmt.Errorf("matching: publish match.notify for %s: %w", userID, err)
	}
	return nil
}
