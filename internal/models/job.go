package models

import (
	"fmt"
	"time"
)

// Job is one submitted link awaiting or undergoing processing. The ID is
// derived from the submitter and a coarse timestamp; it only needs to be
// unique among the handful of jobs a bounded queue can hold at once.
type Job struct {
	ID          string    `json:"job_id"`
	URL         string    `json:"url"`
	Source      int64     `json:"source"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func NewJob(url string, source int64) *Job {
	now := time.Now()
	return &Job{
		ID:          fmt.Sprintf("%d_%d", source, now.Unix()),
		URL:         url,
		Source:      source,
		SubmittedAt: now,
	}
}

// JobSummary is the read-only view of a waiting job exposed by queue
// status snapshots.
type JobSummary struct {
	JobID       string `json:"job_id"`
	URL         string `json:"url"`
	Source      int64  `json:"source"`
	SubmittedAt string `json:"submitted_at"`
}
