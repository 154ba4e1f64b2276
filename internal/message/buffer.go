package message

import "sync"

// RecentLimit is the number of recent messages retained per match.
const RecentLimit = 10

// Preview is a single message as held in the recent-messages buffer,
// just enough for conversation list previews without a database round trip.
type Preview struct {
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
	Ts       int64  `json:"ts"`
}

// RecentBuffer stores the last N messages per match in memory.
// It is goroutine-safe and uses a fixed-size ring per match.
type RecentBuffer struct {
	mu      sync.RWMutex
	buffers map[string]*ring // match ID -> ring
}

type ring struct {
	items []Preview
	pos   int
	count int
}

// NewRecentBuffer creates an empty RecentBuffer.
func NewRecentBuffer() *RecentBuffer {
	return &RecentBuffer{
		buffers: make(map[string]*ring),
	}
}

// Add appends a message to the match's ring. If the ring is full, the
// oldest message is overwritten.
func (rb *RecentBuffer) Add(matchID string, msg Preview) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	r, ok := rb.buffers[matchID]
	if !ok {
		r = &ring{items: make([]Preview, RecentLimit)}
		rb.buffers[matchID] = r
	}

	r.items[r.pos] = msg
	r.pos = (r.pos + 1) % RecentLimit
	if r.count < RecentLimit {
		r.count++
	}
}

// Get returns the buffered messages for a match in chronological order
// (oldest first). Returns an empty slice if the match has no buffer.
func (rb *RecentBuffer) Get(matchID string) []Preview {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	r, ok := rb.buffers[matchID]
	if !ok {
		return []Preview{}
	}

	out := make([]Preview, r.count)
	start := (r.pos - r.count + RecentLimit) % RecentLimit
	for i := 0; i < r.count; i++ {
		out[i] = r.items[(start+i)%RecentLimit]
	}
	return out
}

// Remove deletes the buffer for a match (called when the chat ends).
func (rb *RecentBuffer) Remove(matchID string) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	delete(rb.buffers, matchID)
}
