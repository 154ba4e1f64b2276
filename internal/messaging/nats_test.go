package messaging

import (
	"fmt"
	"testing"
	"time"
)

// newTestClient connects to a local NATS server. Tests that call this helper
// require a running NATS on localhost:4222.
func newTestClient(t *testing.T) *NATSClient {
	t.Helper()

	cfg := DefaultNATSConfig()
	cfg.Name = "skillswap-test"
	client, err := NewNATSClient(cfg)
	if err != nil {
		t.Skipf("nats not available: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func uniqueID(prefix string) string {
	return fmt.Sprintf("test_%s_%d", prefix, time.Now().UnixNano())
}

func TestSubscribeToChat_SwitchDropsOldSubscription(t *testing.T) {
	client := newTestClient(t)
	userID := uniqueID("user")
	matchA, matchB := uniqueID("match_a"), uniqueID("match_b")

	got := make(chan string, 8)
	if err := client.SubscribeToChat(matchA, userID, func(data []byte) {
		got <- "a:" + string(data)
	}); err != nil {
		t.Fatalf("SubscribeToChat(a) error: %v", err)
	}
	// Joining another chat without leaving must displace the old subscription.
	if err := client.SubscribeToChat(matchB, userID, func(data []byte) {
		got <- "b:" + string(data)
	}); err != nil {
		t.Fatalf("SubscribeToChat(b) error: %v", err)
	}
	client.conn.Flush()

	client.PublishChatMessage(matchA, []byte("stale"))
	client.PublishChatMessage(matchB, []byte("live"))
	client.conn.Flush()

	select {
	case v := <-got:
		if v != "b:live" {
			t.Fatalf("delivery = %q, want only the active chat's message", v)
		}
	case <-time.After(time.Second):
		t.Fatal("no delivery from the active chat")
	}

	select {
	case v := <-got:
		t.Fatalf("unexpected extra delivery %q from a displaced subscription", v)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSubscribeToChat_RejoinDeliversOnce(t *testing.T) {
	client := newTestClient(t)
	userID := uniqueID("user")
	matchID := uniqueID("match")

	got := make(chan string, 8)
	handler := func(data []byte) { got <- string(data) }

	// A rejoin after a missed leave_chat must not stack subscriptions.
	for i := 0; i < 2; i++ {
		if err := client.SubscribeToChat(matchID, userID, handler); err != nil {
			t.Fatalf("SubscribeToChat() error on join %d: %v", i+1, err)
		}
	}
	client.conn.Flush()

	client.PublishChatMessage(matchID, []byte("hello"))
	client.conn.Flush()

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("no delivery after rejoin")
	}

	select {
	case v := <-got:
		t.Fatalf("duplicate delivery %q after rejoin", v)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnsubscribeFromChat(t *testing.T) {
	client := newTestClient(t)
	userID := uniqueID("user")
	matchID := uniqueID("match")

	got := make(chan string, 8)
	if err := client.SubscribeToChat(matchID, userID, func(data []byte) {
		got <- string(data)
	}); err != nil {
		t.Fatalf("SubscribeToChat() error: %v", err)
	}
	if err := client.UnsubscribeFromChat(userID); err != nil {
		t.Fatalf("UnsubscribeFromChat() error: %v", err)
	}
	client.conn.Flush()

	client.PublishChatMessage(matchID, []byte("after"))
	client.conn.Flush()

	select {
	case v := <-got:
		t.Fatalf("delivery %q after unsubscribe", v)
	case <-time.After(200 * time.Millisecond):
	}

	if err := client.UnsubscribeFromChat(userID); err == nil {
		t.Error("second UnsubscribeFromChat() succeeded, want missing-subscription error")
	}
}
