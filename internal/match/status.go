// Package match persists match records and their lifecycle. A match record
// is created when two users agree to explore a scored match; it is a
// different thing from the engine's transient MatchResult, which exists
// only for the duration of one scoring call.
//
// Status graph:
//
//	pending ──► accepted ──► completed
//	    │
//	    └─────► rejected
//
// rejected and completed are terminal.
package match

import "fmt"

// Status is the lifecycle state of a persisted match.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// validTransitions lists every allowed (from -> to) pair.
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusCompleted},
	// rejected and completed are terminal
}

// ParseStatus converts a raw string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("match: unknown status %q", s)
}

// IsTransitionAllowed reports whether moving from -> to is permitted.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}
