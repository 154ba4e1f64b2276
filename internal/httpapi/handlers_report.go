package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/skillswap/backend/internal/metrics"
	"github.com/skillswap/backend/internal/moderation"
	"github.com/skillswap/backend/internal/report"
)

const maxReportCommentLen = 1000

// handleReportRecord files an abuse report against the other participant of
// a match. The report is persisted and an event is published for the
// moderator service, which owns the suspension policy.
func (s *Server) handleReportRecord(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Reason  string `json:"reason"`
		Comment string `json:"comment"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if !report.ValidReason(req.Reason) {
		writeError(w, http.StatusBadRequest, "invalid reason")
		return
	}
	if len(req.Comment) > maxReportCommentLen {
		writeError(w, http.StatusBadRequest, "comment too long")
		return
	}

	already, err := s.reports.HasReported(r.Context(), m.ID, uid)
	if err != nil {
		log.Printf("[api] report lookup match=%s: %v", m.ID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if already {
		writeError(w, http.StatusConflict, "already reported")
		return
	}

	rep := &report.Report{
		MatchID:    m.ID,
		ReporterID: uid,
		ReportedID: m.Partner(uid),
		Reason:     req.Reason,
		Comment:    req.Comment,
	}
	if err := s.reports.Create(r.Context(), rep); err != nil {
		log.Printf("[api] report create match=%s: %v", m.ID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	metrics.ReportsTotal.WithLabelValues(rep.Reason).Inc()

	event := moderation.ReportEvent{
		MatchID:    m.ID.String(),
		ReporterID: rep.ReporterID.String(),
		ReportedID: rep.ReportedID.String(),
		Reason:     rep.Reason,
		Ts:         time.Now().Unix(),
	}
	data, _ := json.Marshal(event)
	if err := s.nats.PublishReport(data); err != nil {
		log.Printf("[api] report publish match=%s: %v", m.ID, err)
	}

	writeJSON(w, http.StatusCreated, rep)
}
