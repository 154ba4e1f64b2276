package moderation

// ReportEvent is published to moderation.report by the API server whenever
// a user files a report against a match partner. The moderator service
// consumes these to apply the auto-suspension policy.
type ReportEvent struct {
	MatchID    string `json:"match_id"`
	ReporterID string `json:"reporter_id"`
	ReportedID string `json:"reported_id"`
	Reason     string `json:"reason"`
	Ts         int64  `json:"ts"`
}
