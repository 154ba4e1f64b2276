// Package httpapi implements the REST API for accounts, profiles, matches,
// and message history. Real-time chat and result pushes go over the
// WebSocket server; everything request/response shaped lives here.
package httpapi

import (
	"net/http"

	"github.com/skillswap/backend/internal/match"
	"github.com/skillswap/backend/internal/matching"
	"github.com/skillswap/backend/internal/message"
	"github.com/skillswap/backend/internal/messaging"
	"github.com/skillswap/backend/internal/metrics"
	"github.com/skillswap/backend/internal/moderation"
	"github.com/skillswap/backend/internal/profile"
	"github.com/skillswap/backend/internal/ratelimit"
	"github.com/skillswap/backend/internal/report"
	"github.com/skillswap/backend/internal/session"
	"github.com/skillswap/backend/internal/suspension"
)

// Server routes REST requests to the underlying stores and services.
type Server struct {
	profiles *profile.Store
	matches  *match.Store
	messages *message.Store
	reports  *report.Store
	sessions *session.Store
	bans     *suspension.Store
	matcher  *matching.Service
	nats     *messaging.NATSClient
	limiter  *ratelimit.Limiter
	filter   *moderation.Filter
}

// New creates a Server wired to the given stores and services. The matcher
// is used for synchronous result reads; asynchronous recomputes go through
// NATS so the matcher service picks them up.
func New(
	profiles *profile.Store,
	matches *match.Store,
	messages *message.Store,
	reports *report.Store,
	sessions *session.Store,
	bans *suspension.Store,
	matcher *matching.Service,
	nats *messaging.NATSClient,
	limiter *ratelimit.Limiter,
) *Server {
	return &Server{
		profiles: profiles,
		matches:  matches,
		messages: messages,
		reports:  reports,
		sessions: sessions,
		bans:     bans,
		matcher:  matcher,
		nats:     nats,
		limiter:  limiter,
		filter:   moderation.NewFilter(),
	}
}

// Handler returns the root http.Handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/auth/signup", s.instrument("auth_signup", s.handleSignup))
	mux.HandleFunc("POST /api/auth/login", s.instrument("auth_login", s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.authed("auth_logout", s.handleLogout))

	mux.HandleFunc("GET /api/profile", s.authed("profile_get", s.handleGetProfile))
	mux.HandleFunc("PUT /api/profile", s.authed("profile_put", s.handleUpdateProfile))

	mux.HandleFunc("GET /api/matches", s.authed("matches_list", s.handleListMatches))
	mux.HandleFunc("POST /api/matches/refresh", s.authed("matches_refresh", s.handleRefreshMatches))

	mux.HandleFunc("GET /api/matches/records", s.authed("records_list", s.handleListRecords))
	mux.HandleFunc("POST /api/matches/records", s.authed("records_create", s.handleCreateRecord))
	mux.HandleFunc("POST /api/matches/records/{id}/accept", s.authed("records_accept", s.handleAcceptRecord))
	mux.HandleFunc("POST /api/matches/records/{id}/reject", s.authed("records_reject", s.handleRejectRecord))
	mux.HandleFunc("POST /api/matches/records/{id}/complete", s.authed("records_complete", s.handleCompleteRecord))
	mux.HandleFunc("POST /api/matches/records/{id}/report", s.authed("records_report", s.handleReportRecord))

	mux.HandleFunc("GET /api/matches/records/{id}/messages", s.authed("messages_list", s.handleListMessages))
	mux.HandleFunc("POST /api/matches/records/{id}/messages", s.authed("messages_send", s.handleSendMessage))
	mux.HandleFunc("POST /api/matches/records/{id}/read", s.authed("messages_read", s.handleMarkRead))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
