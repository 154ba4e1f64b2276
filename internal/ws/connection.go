package ws

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Connection is one authenticated WebSocket client. Outbound frames are
// serialized through the write mutex since the heartbeat, NATS fan-in, and
// dispatcher replies all write concurrently.
type Connection struct {
	ID         string   // connection ID (UUID)
	UserID     string   // authenticated user this connection belongs to
	Token      string   // session token presented at upgrade
	Conn       net.Conn // underlying TCP connection
	Fd         int      // socket file descriptor, used for poller lookups
	CreatedAt  time.Time
	// lastActive is unix nanos of the last traffic seen from the client.
	lastActive atomic.Int64
	writeMu    sync.Mutex
	processing int32 // atomic flag guarding against duplicate read dispatch
}

// Touch records client traffic now. Read workers and the dispatcher call it
// concurrently with the heartbeat's LastActive reads, hence the atomic.
func (c *Connection) Touch() {
	c.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns the time of the last traffic seen from the client.
func (c *Connection) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

// WriteMessage sends a WebSocket text frame to this connection.
func (c *Connection) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.WriteServerMessage(c.Conn, ws.OpText, data)
}

// Close closes the underlying network connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}

// ConnectionManager indexes active connections by connection ID, user ID, and
// socket fd for O(1) lookup on each path: the heartbeat walks everything, the
// event loop resolves by fd, and chat delivery resolves by user.
type ConnectionManager struct {
	mu     sync.RWMutex
	byID   map[string]*Connection
	byUser map[string]*Connection // latest connection wins on reconnect
	byFd   map[int]*Connection
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		byID:   make(map[string]*Connection),
		byUser: make(map[string]*Connection),
		byFd:   make(map[int]*Connection),
	}
}

// Add registers a connection in all indexes. A reconnecting user displaces
// their previous entry in the user index; the stale connection stays
// reachable by ID until the heartbeat or a read error reaps it.
func (cm *ConnectionManager) Add(conn *Connection) {
	cm.mu.Lock()
	cm.byID[conn.ID] = conn
	cm.byFd[conn.Fd] = conn
	if conn.UserID != "" {
		cm.byUser[conn.UserID] = conn
	}
	cm.mu.Unlock()
}

// unlink removes the connection from every index. Caller holds the write lock.
func (cm *ConnectionManager) unlink(conn *Connection) {
	delete(cm.byID, conn.ID)
	delete(cm.byFd, conn.Fd)
	if cm.byUser[conn.UserID] == conn {
		delete(cm.byUser, conn.UserID)
	}
}

// Remove deregisters the connection with the given ID and closes its socket.
// It reports whether the connection was still registered, so racing removers
// (read error vs heartbeat timeout) run cleanup exactly once.
func (cm *ConnectionManager) Remove(id string) bool {
	cm.mu.Lock()
	conn, ok := cm.byID[id]
	if ok {
		cm.unlink(conn)
	}
	cm.mu.Unlock()

	if ok {
		conn.Close()
	}
	return ok
}

// GetByUser returns the user's current connection, or nil if the user is not
// connected to this server.
func (cm *ConnectionManager) GetByUser(userID string) *Connection {
	cm.mu.RLock()
	conn := cm.byUser[userID]
	cm.mu.RUnlock()
	return conn
}

// GetByConn resolves a net.Conn back to its Connection via the socket fd.
func (cm *ConnectionManager) GetByConn(c net.Conn) *Connection {
	fd := socketFD(c)
	cm.mu.RLock()
	conn := cm.byFd[fd]
	cm.mu.RUnlock()
	return conn
}

// Count returns the number of active connections.
func (cm *ConnectionManager) Count() int {
	cm.mu.RLock()
	n := len(cm.byID)
	cm.mu.RUnlock()
	return n
}

// All returns a snapshot of current connections, safe to iterate without the
// lock.
func (cm *ConnectionManager) All() []*Connection {
	cm.mu.RLock()
	conns := make([]*Connection, 0, len(cm.byID))
	for _, conn := range cm.byID {
		conns = append(conns, conn)
	}
	cm.mu.RUnlock()
	return conns
}
