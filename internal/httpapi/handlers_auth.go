package httpapi

import (
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/skillswap/backend/internal/profile"
	"github.com/skillswap/backend/internal/ratelimit"
)

const minPasswordLen = 8

// validateCredentials checks signup input before any store work happens.
func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email address")
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	allowed, _ := s.limiter.Allow(r.Context(), clientIP(r), ratelimit.RuleAuth)
	if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many attempts")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if err := validateCredentials(req.Email, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	existing, err := s.profiles.GetByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[api] signup lookup: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[api] signup hash: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	p := &profile.Profile{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}
	if err := s.profiles.Create(r.Context(), p); err != nil {
		log.Printf("[api] signup create: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := s.sessions.Create(r.Context(), p.ID.String())
	if err != nil {
		log.Printf("[api] signup session: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Printf("[api] signup user=%s", p.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"token":   token,
		"user_id": p.ID.String(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	allowed, _ := s.limiter.Allow(r.Context(), clientIP(r), ratelimit.RuleAuth)
	if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many attempts")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	p, err := s.profiles.GetByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("[api] login lookup: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.sessions.Create(r.Context(), p.ID.String())
	if err != nil {
		log.Printf("[api] login session: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Printf("[api] login user=%s", p.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"user_id": p.ID.String(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.sessions.Delete(r.Context(), sess.Token); err != nil {
		log.Printf("[api] logout user=%s: %v", sess.UserID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
