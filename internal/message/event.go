package message

// Event is the payload published to NATS chat.<match_id> subjects for
// real-time relay between matched users.
type Event struct {
	Type     string `json:"type"`                // "message", "typing", "read", "partner_online", "partner_left"
	From     string `json:"from"`                // sender's user ID
	Text     string `json:"text,omitempty"`      // for message events
	IsTyping bool   `json:"is_typing,omitempty"` // for typing events
	Ts       int64  `json:"ts,omitempty"`        // unix timestamp for messages
}
