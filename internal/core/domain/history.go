package domain

import "time"

// Event kinds recorded in the login history.
const (
	EventLogin   = "login"
	EventRefresh = "refresh"
	EventLogout  = "logout"
)

// HistoryEntry is an immutable audit record. Entries are append-only
// and never mutated or deleted.
type HistoryEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Fingerprint string    `json:"user_agent"`
	EventKind   string    `json:"event_kind"`
	Success     bool      `json:"success"`
	OccurredAt  time.Time `json:"occurred_at"`
}
