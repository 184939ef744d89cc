package models

// Transcript is what the transcription provider resolves a video link to.
type Transcript struct {
	Content string `json:"content"`
	Lang    string `json:"lang"`
}

// PipelineResult accumulates the output of the five summarization stages for
// one job. If Error is non-nil every text field is empty and the slices are
// nil; partial success is never reported as success.
type PipelineResult struct {
	CleanText     string           `json:"clean_text"`
	Links         []string         `json:"links"`
	FullSummary   string           `json:"full_summary"`
	MiddleSummary string           `json:"middle_summary"`
	ShortSummary  string           `json:"short_summary"`
	Resources     []string         `json:"resources"`
	Error         *TypedError      `json:"error"`
	Performance   map[string]int64 `json:"performance"`
}

// FailedPipelineResult collapses the run to the error state, keeping only
// the stage latencies gathered so far.
func FailedPipelineResult(err *TypedError, perf map[string]int64) *PipelineResult {
	return &PipelineResult{Error: err, Performance: perf}
}

// Summaries is the formatted output relayed back to the submitter.
type Summaries struct {
	Short     string `json:"short"`
	Middle    string `json:"middle"`
	Full      string `json:"full"`
	Resources string `json:"resources"`
}

// JobOutcome is what the processing sequence hands back to the worker loop.
type JobOutcome struct {
	Success     bool             `json:"success"`
	Error       *TypedError      `json:"error,omitempty"`
	URL         string           `json:"url"`
	VideoID     string           `json:"video_id"`
	RunID       int64            `json:"run_id"`
	Summaries   *Summaries       `json:"summaries,omitempty"`
	Performance map[string]int64 `json:"performance"`
}
