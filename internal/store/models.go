package store

import "time"

// Run is one completed meeting preparation.
type Run struct {
	ID         int       `json:"id"`
	RunID      string    `json:"run_id"`
	Company    string    `json:"company"`
	Objective  string    `json:"objective"`
	Verdict    bool      `json:"sector_relevant"`
	StageCount int       `json:"stage_count"`
	Brief      string    `json:"brief"`
	CreatedAt  time.Time `json:"created_at"`
}
