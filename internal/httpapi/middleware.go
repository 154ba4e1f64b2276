package httpapi

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skillswap/backend/internal/metrics"
	"github.com/skillswap/backend/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// statusRecorder captures the status code written by a handler so the
// metrics middleware can label by it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// instrument wraps a handler with request latency metrics for the given
// route label.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		metrics.HTTPRequestDuration.
			WithLabelValues(route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	}
}

// authed wraps a handler with bearer token authentication plus metrics.
// The resolved session is stored in the request context; handlers retrieve
// it with sessionFrom.
func (s *Server) authed(route string, next http.HandlerFunc) http.HandlerFunc {
	return s.instrument(route, func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		sess, err := s.sessions.Get(r.Context(), token)
		if err != nil {
			log.Printf("[api] session lookup: %v", err)
			writeError(w, http.StatusInternalServerError, "session lookup failed")
			return
		}
		if sess == nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		// Suspension check is fail-open: a Redis error should not lock
		// everyone out of the API.
		suspended, remaining, reason, err := s.bans.IsSuspended(r.Context(), sess.UserID)
		if err != nil {
			log.Printf("[api] suspension check for user %s: %v", sess.UserID, err)
		} else if suspended {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error":            "account suspended",
				"reason":           reason,
				"retry_after_secs": remaining,
			})
			return
		}

		if err := s.sessions.Touch(r.Context(), token); err != nil {
			log.Printf("[api] session touch for user %s: %v", sess.UserID, err)
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the authenticated session stored by the auth
// middleware. It panics if called from an unauthenticated route, which is a
// programming error.
func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionContextKey).(*session.Session)
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// clientIP returns the request's remote IP without the port.
func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host
}
