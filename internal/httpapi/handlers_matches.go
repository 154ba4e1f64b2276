package httpapi

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/match"
	"github.com/skillswap/backend/internal/matching"
	"github.com/skillswap/backend/internal/ratelimit"
)

// recordResponse is the API's view of a persisted match record.
type recordResponse struct {
	ID         string    `json:"id"`
	PartnerID  string    `json:"partner_id"`
	MatchScore float64   `json:"match_score"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toRecordResponse(m *match.Match, viewer uuid.UUID) recordResponse {
	return recordResponse{
		ID:         m.ID.String(),
		PartnerID:  m.Partner(viewer).String(),
		MatchScore: m.Score,
		Status:     string(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// handleListMatches returns the caller's ranked candidates, served from the
// result cache and recomputed on a miss.
func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	rs, err := s.matcher.Results(r.Context(), sess.UserID)
	if err != nil {
		log.Printf("[api] matches user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, rs)
}

// handleRefreshMatches queues an asynchronous recompute. Fresh results land
// in the cache and are pushed over the caller's WebSocket.
func (s *Server) handleRefreshMatches(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	allowed, _ := s.limiter.Allow(r.Context(), sess.UserID, ratelimit.RuleRefresh)
	if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many refreshes")
		return
	}

	s.publishRefresh(sess.UserID)
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "queued"})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	uid, err := uuid.Parse(sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	records, err := s.matches.ListForUser(r.Context(), uid)
	if err != nil {
		log.Printf("[api] records list user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]recordResponse, 0, len(records))
	for i := range records {
		out = append(out, toRecordResponse(&records[i], uid))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateRecord opens a pending match with a scored candidate.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req struct {
		CandidateID string `json:"candidate_id"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	uid, err := uuid.Parse(sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	if candidateID == uid {
		writeError(w, http.StatusBadRequest, "cannot match with yourself")
		return
	}

	// Only scored candidates can be requested; the score is recorded on the
	// match itself.
	rs, err := s.matcher.Results(r.Context(), sess.UserID)
	if err != nil {
		log.Printf("[api] record create results user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	var score float64
	found := false
	for _, res := range rs.Results {
		if res.CandidateID == req.CandidateID {
			score = res.MatchScore
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusBadRequest, "candidate is not in your match results")
		return
	}

	existing, err := s.matches.FindBetween(r.Context(), uid, candidateID)
	if err != nil {
		log.Printf("[api] record lookup user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil && !existing.Status.IsTerminal() {
		writeError(w, http.StatusConflict, "a match with this user is already open")
		return
	}

	m, err := s.matches.Create(r.Context(), uid, candidateID, score)
	if err != nil {
		log.Printf("[api] record create user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.notifyPartner(candidateID.String(), "requested", m.ID.String(), sess.UserID)

	log.Printf("[api] match requested id=%s from=%s to=%s score=%.1f", m.ID, uid, candidateID, score)
	writeJSON(w, http.StatusCreated, toRecordResponse(m, uid))
}

func (s *Server) handleAcceptRecord(w http.ResponseWriter, r *http.Request) {
	s.transitionRecord(w, r, match.StatusPending, match.StatusAccepted, "accepted", true)
}

func (s *Server) handleRejectRecord(w http.ResponseWriter, r *http.Request) {
	s.transitionRecord(w, r, match.StatusPending, match.StatusRejected, "rejected", true)
}

func (s *Server) handleCompleteRecord(w http.ResponseWriter, r *http.Request) {
	s.transitionRecord(w, r, match.StatusAccepted, match.StatusCompleted, "completed", false)
}

// transitionRecord moves a match through its lifecycle. When recipientOnly
// is set, only the user who received the request may perform the move
// (accepting your own request would defeat the handshake).
func (s *Server) transitionRecord(w http.ResponseWriter, r *http.Request, from, to match.Status, event string, recipientOnly bool) {
	sess := sessionFrom(r)

	uid, err := uuid.Parse(sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	matchID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid match id")
		return
	}

	m, err := s.matches.Get(r.Context(), matchID)
	if err != nil {
		log.Printf("[api] record get user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if m == nil || !m.IsParticipant(uid) {
		writeError(w, http.StatusNotFound, "match not found")
		return
	}
	if recipientOnly && m.UserA == uid {
		writeError(w, http.StatusForbidden, "only the requested user can do that")
		return
	}

	updated, err := s.matches.UpdateStatus(r.Context(), matchID, from, to)
	if errors.Is(err, match.ErrInvalidTransition) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		log.Printf("[api] record transition user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.notifyPartner(m.Partner(uid).String(), event, matchID.String(), sess.UserID)

	log.Printf("[api] match %s id=%s by=%s", event, matchID, uid)
	writeJSON(w, http.StatusOK, toRecordResponse(updated, uid))
}

func (s *Server) notifyPartner(partnerID, event, matchID, fromID string) {
	err := matching.PublishNotification(s.nats, partnerID, matching.MatchNotification{
		Type:    event,
		MatchID: matchID,
		FromID:  fromID,
	})
	if err != nil {
		log.Printf("[api] notify partner=%s event=%s: %v", partnerID, event, err)
	}
}
