// Package protocol defines the WebSocket message types and structures used for
// communication between the client and server. All messages are serialized as
// JSON and follow a consistent envelope format with a type discriminator.
package protocol

import (
	"encoding/json"
	"fmt"
)

// ---------------------------------------------------------------------------
// Message type constants
// ---------------------------------------------------------------------------

// Client -> Server message types.
const (
	TypeJoinChat  = "join_chat"
	TypeLeaveChat = "leave_chat"
	TypeMessage   = "message"
	TypeTyping    = "typing"
	TypeMarkRead  = "mark_read"
	TypePing      = "ping"
)

// Server -> Client message types.
const (
	TypeChatJoined    = "chat_joined"
	TypeReadReceipt   = "read_receipt"
	TypePartnerOnline = "partner_online"
	TypePartnerLeft   = "partner_left"
	TypeMatchResults  = "match_results"
	TypeMatchUpdate   = "match_update"
	TypeRateLimited   = "rate_limited"
	TypeError         = "error"
	TypePong          = "pong"
)

// ---------------------------------------------------------------------------
// Envelope — used for initial JSON parsing to extract the type discriminator.
// ---------------------------------------------------------------------------

// Envelope holds the message type and the raw JSON payload for deferred
// parsing into a concrete struct.
type Envelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. It captures the
// full raw bytes and extracts only the "type" field so that the rest of the
// payload can be decoded later into the appropriate concrete struct.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	// Capture the full raw message for deferred parsing.
	e.Raw = make(json.RawMessage, len(data))
	copy(e.Raw, data)

	// Extract only the type field.
	var partial struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("protocol: failed to unmarshal envelope: %w", err)
	}
	if partial.Type == "" {
		return fmt.Errorf("protocol: missing or empty \"type\" field")
	}
	e.Type = partial.Type
	return nil
}

// ---------------------------------------------------------------------------
// Client -> Server message structs
// ---------------------------------------------------------------------------

// JoinChatMsg is sent by the client to open the chat for an accepted match.
type JoinChatMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
}

// LeaveChatMsg is sent by the client to leave the current chat.
type LeaveChatMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
}

// ChatMsg is a text message sent by the client within a match chat.
type ChatMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	Text    string `json:"text"`
}

// TypingMsg indicates whether the client is currently typing.
type TypingMsg struct {
	Type     string `json:"type"`
	MatchID  string `json:"match_id"`
	IsTyping bool   `json:"is_typing"`
}

// MarkReadMsg is sent by the client to mark the partner's messages as read.
type MarkReadMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
}

// PingMsg is a client-initiated keepalive ping.
type PingMsg struct {
	Type string `json:"type"`
}

// ---------------------------------------------------------------------------
// Server -> Client message structs
// ---------------------------------------------------------------------------

// RecentMsg is one entry in the recent-history replay sent on chat join.
type RecentMsg struct {
	From string `json:"from"`
	Text string `json:"text"`
	Ts   int64  `json:"ts"`
}

// ChatJoinedMsg is sent by the server to confirm the client joined a chat,
// replaying recent messages so the client can render context immediately.
type ChatJoinedMsg struct {
	Type    string      `json:"type"`
	MatchID string      `json:"match_id"`
	Recent  []RecentMsg `json:"recent"`
}

// ServerChatMsg is a text message relayed from the partner by the server.
type ServerChatMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	From    string `json:"from"`
	Text    string `json:"text"`
	Ts      int64  `json:"ts"`
}

// ServerTypingMsg relays the partner's typing indicator to the client.
type ServerTypingMsg struct {
	Type     string `json:"type"`
	MatchID  string `json:"match_id"`
	IsTyping bool   `json:"is_typing"`
}

// ReadReceiptMsg tells the client the partner has read their messages.
type ReadReceiptMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
	By      string `json:"by"`
}

// PartnerOnlineMsg is sent when the chat partner joins the chat.
type PartnerOnlineMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
}

// PartnerLeftMsg is sent when the chat partner has disconnected or left.
type PartnerLeftMsg struct {
	Type    string `json:"type"`
	MatchID string `json:"match_id"`
}

// MatchResultsMsg pushes a freshly computed ranked result set to the client.
// The results payload is forwarded verbatim from the matcher.
type MatchResultsMsg struct {
	Type    string          `json:"type"`
	Results json.RawMessage `json:"results"`
}

// MatchUpdateMsg notifies the client of a match lifecycle event.
type MatchUpdateMsg struct {
	Type    string `json:"type"`
	Event   string `json:"event"` // "requested", "accepted", "rejected", "completed"
	MatchID string `json:"match_id"`
	FromID  string `json:"from_id,omitempty"`
}

// RateLimitedMsg is sent by the server when the client has been rate-limited.
type RateLimitedMsg struct {
	Type       string `json:"type"`
	RetryAfter int    `json:"retry_after"`
}

// ErrorMsg is sent by the server to communicate an error condition.
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PongMsg is the server's response to a client ping.
type PongMsg struct {
	Type string `json:"type"`
}

// ---------------------------------------------------------------------------
// Helper functions
// ---------------------------------------------------------------------------

// ParseClientMessage parses raw WebSocket bytes into a typed client message.
// It returns the message type string, the decoded struct, and any error
// encountered during parsing. An error is returned for unknown or
// server-only message types.
func ParseClientMessage(data []byte) (string, interface{}, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("protocol: failed to parse message: %w", err)
	}

	var (
		msg interface{}
		err error
	)

	switch env.Type {
	case TypeJoinChat:
		var m JoinChatMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeLeaveChat:
		var m LeaveChatMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeMessage:
		var m ChatMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeTyping:
		var m TypingMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypeMarkRead:
		var m MarkReadMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	case TypePing:
		var m PingMsg
		err = json.Unmarshal(env.Raw, &m)
		msg = m
	default:
		return env.Type, nil, fmt.Errorf("protocol: unknown client message type: %q", env.Type)
	}

	if err != nil {
		return env.Type, nil, fmt.Errorf("protocol: failed to decode %q payload: %w", env.Type, err)
	}
	return env.Type, msg, nil
}

// NewServerMessage creates a JSON-encoded byte slice for a server message.
// The msgType is injected into the payload under the "type" key. The payload
// should be one of the Server*Msg structs; this function marshals it to JSON,
// injects the type field, and returns the final bytes.
func NewServerMessage(msgType string, payload interface{}) ([]byte, error) {
	// Marshal the payload struct to a generic map so we can ensure the "type"
	// field is present and correct.
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal payload: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("protocol: failed to unmarshal payload into map: %w", err)
	}

	m["type"] = msgType

	out, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal server message: %w", err)
	}
	return out, nil
}
