package models

import "time"

// CycleSnapshot is the archived record of one successful cycle.
// SessionHash identifies the session without exposing its cookie value.
type CycleSnapshot struct {
	CycleID     string              `json:"cycle_id"`
	SessionHash string              `json:"session_hash"`
	Feeds       []string            `json:"feeds"`
	Articles    []SummarizedArticle `json:"articles"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
}
