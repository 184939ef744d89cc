package queue

import (
	"fmt"
	"sync"

	"github.com/Mihailchik/yt-summ/internal/models"
)

// Queue is a bounded thread-safe FIFO of submitted jobs with a single
// in-flight marker. Producers enqueue from the message-polling path while
// the consumer loop dequeues; one mutex serializes both, held only for the
// O(1) list operations and never across an external call.
type Queue struct {
	mu       sync.Mutex
	maxSize  int
	waiting  []*models.Job
	inFlight *models.Job
}

// EnqueueResult reports the admission decision for one submission.
type EnqueueResult struct {
	Accepted  bool   `json:"accepted"`
	Message   string `json:"message"`
	JobID     string `json:"job_id"`
	Position  int    `json:"position"`
	QueueSize int    `json:"queue_size"`
}

// Status is a query-time copy of the queue state, safe to hand out.
type Status struct {
	Size        int                 `json:"queue_size"`
	MaxSize     int                 `json:"max_size"`
	IsFull      bool                `json:"is_full"`
	IsEmpty     bool                `json:"is_empty"`
	InFlightID  string              `json:"in_flight_id,omitempty"`
	WaitingJobs []models.JobSummary `json:"waiting_jobs"`
}

func NewQueue(maxSize int) *Queue {
	if maxSize <= 0 {
		maxSize = 5
	}
	return &Queue{
		maxSize: maxSize,
		waiting: make([]*models.Job, 0, maxSize),
	}
}

// Enqueue admits a job unless the queue is at capacity. Rejection is a
// status, not a block: the caller gets immediate backpressure feedback and
// the queue state is untouched.
func (q *Queue) Enqueue(url string, source int64) EnqueueResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) >= q.maxSize {
		return EnqueueResult{
			Accepted:  false,
			Message:   fmt.Sprintf("queue is full (maximum %d links)", q.maxSize),
			Position:  -1,
			QueueSize: len(q.waiting),
		}
	}

	job := models.NewJob(url, source)
	q.waiting = append(q.waiting, job)

	return EnqueueResult{
		Accepted:  true,
		Message:   "url added to queue",
		JobID:     job.ID,
		Position:  len(q.waiting),
		QueueSize: len(q.waiting),
	}
}

// Dequeue removes the head job and records it as the sole in-flight job.
// Returns nil when the queue is empty or a job is already in flight.
func (q *Queue) Dequeue() *models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) == 0 || q.inFlight != nil {
		return nil
	}

	job := q.waiting[0]
	q.waiting = q.waiting[1:]
	q.inFlight = job
	return job
}

// MarkCompleted clears the in-flight marker iff jobID matches it. A stale or
// repeated completion returns false and leaves the queue untouched.
func (q *Queue) MarkCompleted(jobID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.inFlight != nil && q.inFlight.ID == jobID {
		q.inFlight = nil
		return true
	}
	return false
}

// Status returns a snapshot copy of the queue state.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := Status{
		Size:        len(q.waiting),
		MaxSize:     q.maxSize,
		IsFull:      len(q.waiting) >= q.maxSize,
		IsEmpty:     len(q.waiting) == 0,
		WaitingJobs: make([]models.JobSummary, 0, len(q.waiting)),
	}
	if q.inFlight != nil {
		st.InFlightID = q.inFlight.ID
	}
	for _, job := range q.waiting {
		st.WaitingJobs = append(st.WaitingJobs, models.JobSummary{
			JobID:       job.ID,
			URL:         job.URL,
			Source:      job.Source,
			SubmittedAt: job.SubmittedAt.Format("15:04:05"),
		})
	}
	return st
}

// Clear empties the waiting sequence without touching an in-flight job.
// The backing array is replaced so cleared jobs become collectible.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	cleared := len(q.waiting)
	q.waiting = make([]*models.Job, 0, q.maxSize)
	return cleared
}

// Position returns the 1-based position of a waiting job, or 0 if absent.
func (q *Queue) Position(jobID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, job := range q.waiting {
		if job.ID == jobID {
			return i + 1
		}
	}
	return 0
}

// Remove deletes a waiting job by ID. In-flight jobs cannot be removed.
func (q *Queue) Remove(jobID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, job := range q.waiting {
		if job.ID == jobID {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return true
		}
	}
	return false
}
