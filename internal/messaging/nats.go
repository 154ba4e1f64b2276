// Package messaging provides a NATS client wrapper for pub/sub messaging
// across SkillSwap services. It handles connection lifecycle, subject-based
// subscriptions, and convenience methods for match and chat channels.
package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subject patterns used across SkillSwap services.
const (
	SubjectMatchRefresh = "match.refresh"
	SubjectMatchResults = "match.results" // + .<user_id>
	SubjectMatchNotify  = "match.notify"  // + .<user_id> (lifecycle events)
	SubjectChat         = "chat"          // + .<match_id>
	SubjectReport       = "moderation.report"
)

// NATSClient wraps the NATS connection with helper methods for pub/sub.
type NATSClient struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://localhost:4222",
		Name:          "skillswap",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewNATSClient connects to NATS with the given config and returns a ready client.
// It returns an error if the initial connection fails.
func NewNATSClient(config NATSConfig) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *NATSClient) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.store(subject, sub)
	return nil
}

// SubscribeToChat subscribes to the chat.<matchID> subject for a specific user.
// The subscription is keyed by userID so two participants relayed by the same
// server can subscribe to the same match without overwriting each other, and
// so that a user moving between chats holds exactly one chat subscription.
func (c *NATSClient) SubscribeToChat(matchID string, userID string, handler func(data []byte)) error {
	subject := SubjectChat + "." + matchID
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.store("chatsub:"+userID, sub)
	return nil
}

// store records a subscription under the given key. A subscription displaced
// from the key (a user rejoining a chat, or switching to another match
// without a leave) is unsubscribed so it cannot keep relaying events.
func (c *NATSClient) store(key string, sub *nats.Subscription) {
	c.mu.Lock()
	old := c.subs[key]
	c.subs[key] = sub
	c.mu.Unlock()

	if old != nil {
		if err := old.Unsubscribe(); err != nil {
			log.Printf("[nats] unsubscribe displaced %s: %v", key, err)
		}
	}
}

// UnsubscribeFromChat unsubscribes a user's chat subscription.
func (c *NATSClient) UnsubscribeFromChat(userID string) error {
	key := "chatsub:" + userID
	return c.unsubscribe(key)
}

// PublishChatMessage publishes data to the chat.<matchID> subject.
func (c *NATSClient) PublishChatMessage(matchID string, data []byte) error {
	subject := SubjectChat + "." + matchID
	return c.Publish(subject, data)
}

// PublishMatchRefresh publishes a request to recompute a user's matches.
func (c *NATSClient) PublishMatchRefresh(data []byte) error {
	return c.Publish(SubjectMatchRefresh, data)
}

// SubscribeMatchRefresh subscribes to match recompute requests from API servers.
func (c *NATSClient) SubscribeMatchRefresh(handler func(data []byte)) error {
	return c.Subscribe(SubjectMatchRefresh, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// PublishMatchResults publishes freshly computed results for a user.
func (c *NATSClient) PublishMatchResults(userID string, data []byte) error {
	return c.Publish(SubjectMatchResults+"."+userID, data)
}

// SubscribeMatchResults subscribes to the match.results.<userID> subject and
// passes the raw message data to the handler.
func (c *NATSClient) SubscribeMatchResults(userID string, handler func(data []byte)) error {
	subject := SubjectMatchResults + "." + userID
	return c.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// UnsubscribeMatchResults unsubscribes from the match.results.<userID> subject.
func (c *NATSClient) UnsubscribeMatchResults(userID string) error {
	return c.unsubscribe(SubjectMatchResults + "." + userID)
}

// SubscribeMatchNotify subscribes to match lifecycle notifications for a user.
func (c *NATSClient) SubscribeMatchNotify(userID string, handler func(data []byte)) error {
	subject := SubjectMatchNotify + "." + userID
	return c.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// UnsubscribeMatchNotify unsubscribes from match lifecycle notifications.
func (c *NATSClient) UnsubscribeMatchNotify(userID string) error {
	return c.unsubscribe(SubjectMatchNotify + "." + userID)
}

// PublishMatchNotify publishes a match lifecycle notification to a user.
func (c *NATSClient) PublishMatchNotify(userID string, data []byte) error {
	return c.Publish(SubjectMatchNotify+"."+userID, data)
}

// PublishReport publishes an abuse report event for the moderator service.
func (c *NATSClient) PublishReport(data []byte) error {
	return c.Publish(SubjectReport, data)
}

// SubscribeReports subscribes to abuse report events from API servers.
func (c *NATSClient) SubscribeReports(handler func(data []byte)) error {
	return c.Subscribe(SubjectReport, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}

// unsubscribe removes and unsubscribes from a specific subject.
func (c *NATSClient) unsubscribe(subject string) error {
	c.mu.Lock()
	sub, ok := c.subs[subject]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("nats: no subscription for subject %s", subject)
	}
	delete(c.subs, subject)
	c.mu.Unlock()

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("nats unsubscribe %s: %w", subject, err)
	}
	return nil
}
