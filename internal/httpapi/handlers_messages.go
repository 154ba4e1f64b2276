package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/match"
	"github.com/skillswap/backend/internal/message"
	"github.com/skillswap/backend/internal/metrics"
	"github.com/skillswap/backend/internal/ratelimit"
)

const defaultMessagePageSize = 50

// loadChatMatch resolves and authorizes the match named in the URL. Writes
// the error response and returns nil when the caller may not touch it.
func (s *Server) loadChatMatch(w http.ResponseWriter, r *http.Request, uid uuid.UUID) *match.Match {
	matchID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return nil
	}

	m, err := s.matches.Get(r.Context(), matchID)
	if err != nil {
		log.Printf("[api] chat match get: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	if m == nil || !m.IsParticipant(uid) {
		writeError(w, http.StatusNotFound, "match not found")
		return nil
	}
	return m
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	uid, err := uuid.Parse(sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	m := s.loadChatMatch(w, r, uid)
	if m == nil {
		return
	}

	limit := intQuery(r, "limit", defaultMessagePageSize)
	offset := intQuery(r, "offset", 0)

	msgs, err := s.messages.ListByMatch(r.Context(), m.ID, limit, offset)
	if err != nil {
		log.Printf("[api] messages list match=%s: %v", m.ID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	unread, err := s.messages.UnreadCount(r.Context(), m.ID, uid)
	if err != nil {
		log.Printf("[api] unread count match=%s: %v", m.ID, err)
		unread = 0
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": msgs,
		"unread":   unread,
	})
}

// handleSendMessage persists a message and relays it over NATS so the
// partner's WebSocket picks it up. Chat is only open on accepted matches.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	uid, err := uuid.Parse(sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	m := s.loadChatMatch(w, r, uid)
	if m == nil {
		return
	}
	if m.Status != match.StatusAccepted {
		writeError(w, http.StatusConflict, "chat is not open for this match")
		return
	}

	allowed, _ := s.limiter.Allow(r.Context(), sess.UserID, ratelimit.RuleMessage)
	if !allowed {
		writeError(w, http.StatusTooManyRequests, "slow down")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := message.ValidateContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if res := s.filter.Check(req.Content); res.Blocked {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, "message blocked: "+res.Reason)
		return
	}

	stored, err := s.messages.Create(r.Context(), m.ID, uid, req.Content)
	if err != nil {
		log.Printf("[api] message create match=%s: %v", m.ID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	event := message.Event{
		Type: "message",
		From: sess.UserID,
		Text: req.Content,
		Ts:   stored.CreatedAt.Unix(),
	}
	data, _ := json.Marshal(event)
	if err := s.nats.PublishChatMessage(m.ID.String(), data); err != nil {
		log.Printf("[api] message relay match=%s: %v", m.ID, err)
	}
	metrics.MessagesTotal.WithLabelValues("sent").Inc()

	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	uid, err := uuid.Parse(sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	m := s.loadChatMatch(w, r, uid)
	if m == nil {
		return
	}

	n, err := s.messages.MarkRead(r.Context(), m.ID, uid)
	if err != nil {
		log.Printf("[api] mark read match=%s: %v", m.ID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if n > 0 {
		event := message.Event{Type: "read", From: sess.UserID, Ts: time.Now().Unix()}
		data, _ := json.Marshal(event)
		if err := s.nats.PublishChatMessage(m.ID.String(), data); err != nil {
			log.Printf("[api] read relay match=%s: %v", m.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"marked": n})
}
