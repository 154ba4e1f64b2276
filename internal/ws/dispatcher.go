package ws

import (
	"log"

	"github.com/skillswap/backend/internal/protocol"
)

// MessageHandler handles one parsed client message. The msg parameter is the
// concrete struct returned by protocol.ParseClientMessage for the registered
// type (protocol.JoinChatMsg, protocol.ChatMsg, and so on).
type MessageHandler func(conn *Connection, msg interface{})

// MessageDispatcher routes incoming frames to handlers keyed by message type.
// Ping/pong keepalive is answered internally; malformed or unregistered
// messages get a structured error reply.
type MessageDispatcher struct {
	handlers map[string]MessageHandler
	server   *Server
}

// NewMessageDispatcher creates a dispatcher bound to the given server. The
// server reference may be nil at construction and set later via SetServer,
// since NewServer itself wants Dispatch as its callback.
func NewMessageDispatcher(server *Server) *MessageDispatcher {
	return &MessageDispatcher{
		handlers: make(map[string]MessageHandler),
		server:   server,
	}
}

// SetServer assigns the Server reference after construction.
func (d *MessageDispatcher) SetServer(server *Server) {
	d.server = server
}

// Register associates a handler with a message type, replacing any previous
// handler for that type.
func (d *MessageDispatcher) Register(msgType string, handler MessageHandler) {
	d.handlers[msgType] = handler
}

// Dispatch is the server's onMessage callback. It parses the raw frame into a
// typed message and routes it to the registered handler.
func (d *MessageDispatcher) Dispatch(conn *Connection, data []byte) {
	msgType, msg, err := protocol.ParseClientMessage(data)
	if err != nil {
		log.Printf("ws: dispatch parse error conn=%s: %v", conn.ID, err)
		d.reply(conn, protocol.TypeError, protocol.ErrorMsg{
			Code:    "parse_error",
			Message: "invalid message format",
		})
		return
	}

	// Pings are answered here so handlers never see them.
	if msgType == protocol.TypePing {
		conn.Touch()
		d.reply(conn, protocol.TypePong, protocol.PongMsg{})
		return
	}

	handler, ok := d.handlers[msgType]
	if !ok {
		log.Printf("ws: unsupported message type=%q conn=%s", msgType, conn.ID)
		d.reply(conn, protocol.TypeError, protocol.ErrorMsg{
			Code:    "unsupported_type",
			Message: "unsupported message type",
		})
		return
	}

	handler(conn, msg)
}

// reply marshals a server message and writes it to the connection. Failures
// are logged and swallowed; the client gets nothing rather than a broken
// frame.
func (d *MessageDispatcher) reply(conn *Connection, msgType string, payload interface{}) {
	data, err := protocol.NewServerMessage(msgType, payload)
	if err != nil {
		log.Printf("ws: failed to build %s reply conn=%s: %v", msgType, conn.ID, err)
		return
	}

	if err := conn.WriteMessage(data); err != nil {
		log.Printf("ws: failed to send %s reply conn=%s: %v", msgType, conn.ID, err)
	}
}
