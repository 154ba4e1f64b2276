package ws

import (
	"log"
	"time"

	"github.com/gobwas/ws"
)

const (
	// pingEvery is the heartbeat cadence.
	pingEvery = 30 * time.Second
	// staleAfter is how long a connection may go without traffic before it is
	// reaped. It covers one full ping interval plus a grace period for the pong.
	staleAfter = 40 * time.Second
)

// runHeartbeat pings every connection on a fixed cadence and reaps those that
// have shown no traffic past the stale cutoff. It runs until the server's
// done channel closes.
func (s *Server) runHeartbeat() {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweepStale()
		}
	}
}

// sweepStale closes connections idle past staleAfter and sends a
// protocol-level ping frame to the rest. Browsers answer the ping with a pong
// automatically, which counts as traffic on the next read.
func (s *Server) sweepStale() {
	now := time.Now()
	for _, c := range s.conns.All() {
		idle := now.Sub(c.LastActive())
		if idle > staleAfter {
			log.Printf("ws: heartbeat timeout conn=%s idle=%s", c.ID, idle.Round(time.Second))
			s.RemoveConnection(c)
			continue
		}

		if err := c.WritePing(); err != nil {
			log.Printf("ws: heartbeat ping failed conn=%s: %v", c.ID, err)
			s.RemoveConnection(c)
		}
	}
}

// WritePing sends a WebSocket ping frame (opcode 0x9). The write mutex keeps
// it from interleaving with application frames.
func (c *Connection) WritePing() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ws.WriteFrame(c.Conn, ws.NewPingFrame(nil))
}
