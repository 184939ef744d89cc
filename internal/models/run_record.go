package models

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord is the persisted result of one processing run. RunID follows the
// reference derivation (video ID folded with the submission minute:second)
// and may collide across runs; RecordID is the actual primary key.
type RunRecord struct {
	RecordID      uuid.UUID `json:"record_id" db:"record_id"`
	RunID         int64     `json:"run_id" db:"run_id"`
	URL           string    `json:"url" db:"url"`
	VideoID       string    `json:"video_id" db:"video_id"`
	Transcript    string    `json:"transcript" db:"transcript"`
	Lang          string    `json:"lang" db:"lang"`
	CleanText     string    `json:"clean_text" db:"clean_text"`
	FullSummary   string    `json:"full_summary" db:"full_summary"`
	MiddleSummary string    `json:"middle_summary" db:"middle_summary"`
	ShortSummary  string    `json:"short_summary" db:"short_summary"`
	Resources     string    `json:"resources" db:"resources"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
