package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/matching"
	"github.com/skillswap/backend/internal/profile"
)

// profileResponse is the API's view of a profile. Availability is rendered
// in the same day/startTime/endTime shape the client submits.
type profileResponse struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	Name             string          `json:"name"`
	Bio              string          `json:"bio"`
	TeachSkills      []string        `json:"teach_skills"`
	LearnSkills      []string        `json:"learn_skills"`
	Availability     json.RawMessage `json:"availability"`
	ProfileCompleted bool            `json:"profile_completed"`
}

func toProfileResponse(p *profile.Profile) (*profileResponse, error) {
	availability, err := profile.EncodeAvailability(p.Availability)
	if err != nil {
		return nil, err
	}
	return &profileResponse{
		ID:               p.ID.String(),
		Email:            p.Email,
		Name:             p.Name,
		Bio:              p.Bio,
		TeachSkills:      emptyIfNil(p.TeachSkills),
		LearnSkills:      emptyIfNil(p.LearnSkills),
		Availability:     availability,
		ProfileCompleted: p.ProfileCompleted,
	}, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	uid, err := uuid.Parse(sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	p, err := s.profiles.GetByID(r.Context(), uid)
	if err != nil {
		log.Printf("[api] profile get user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	resp, err := toProfileResponse(p)
	if err != nil {
		log.Printf("[api] profile render user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req struct {
		Name         string          `json:"name"`
		Bio          string          `json:"bio"`
		TeachSkills  []string        `json:"teach_skills"`
		LearnSkills  []string        `json:"learn_skills"`
		Availability json.RawMessage `json:"availability"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	// A malformed slot rejects the whole schedule; a partially valid
	// schedule would silently change this user's scores.
	var slots []matching.Slot
	if len(req.Availability) > 0 {
		var err error
		slots, err = profile.DecodeAvailability(req.Availability)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	uid, err := uuid.Parse(sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	p, err := s.profiles.GetByID(r.Context(), uid)
	if err != nil {
		log.Printf("[api] profile load user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	p.Name = req.Name
	p.Bio = strings.TrimSpace(req.Bio)
	p.TeachSkills = s.filter.CheckSkills(normalizeSkills(req.TeachSkills))
	p.LearnSkills = s.filter.CheckSkills(normalizeSkills(req.LearnSkills))
	p.Availability = slots
	p.ProfileCompleted = len(p.TeachSkills) > 0 && len(p.LearnSkills) > 0 && len(p.Availability) > 0

	if err := s.profiles.Update(r.Context(), p); err != nil {
		log.Printf("[api] profile update user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// A profile edit invalidates this user's cached results and kicks off a
	// recompute. Peer caches age out on their own TTL.
	if err := s.matcher.Invalidate(r.Context(), sess.UserID); err != nil {
		log.Printf("[api] cache invalidate user=%s: %v", sess.UserID, err)
	}
	s.publishRefresh(sess.UserID)

	resp, err := toProfileResponse(p)
	if err != nil {
		log.Printf("[api] profile render user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// normalizeSkills trims, drops empties, and dedups while preserving order.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		sk = strings.TrimSpace(sk)
		if sk == "" || seen[sk] {
			continue
		}
		seen[sk] = true
		out = append(out, sk)
	}
	return out
}

func (s *Server) publishRefresh(userID string) {
	data, err := json.Marshal(matching.RefreshRequest{UserID: userID})
	if err != nil {
		return
	}
	if err := s.nats.PublishMatchRefresh(data); err != nil {
		log.Printf("[api] publish refresh user=%s: %v", userID, err)
	}
}
