package models

import "time"

type ActivityStatus string

const (
	ActivityStatusOK     ActivityStatus = "ok"
	ActivityStatusFailed ActivityStatus = "failed"
)

// ImportActivity is an append-only audit row describing one import attempt
// for a single (agency, source) pair.
type ImportActivity struct {
	ID          int64          `json:"id" db:"id"`
	RunID       string         `json:"run_id" db:"run_id"`
	AgencyName  string         `json:"agency_name" db:"agency_name"`
	Source      Source         `json:"source" db:"source"`
	AddedCount  int            `json:"added_count" db:"added_count"`
	Status      ActivityStatus `json:"status" db:"status"`
	Message     string         `json:"message" db:"message"`
	StartedAt   time.Time      `json:"started_at" db:"started_at"`
	FinishedAt  time.Time      `json:"finished_at" db:"finished_at"`
	DurationSec float64        `json:"duration_sec" db:"duration_sec"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}
