package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mihailchik/yt-summ/internal/config"
	"github.com/Mihailchik/yt-summ/internal/models"
	"github.com/Mihailchik/yt-summ/internal/queue"
	"github.com/Mihailchik/yt-summ/internal/telegram"
)

type nopLogger struct{}

func (nopLogger) InitLogger()                                 {}
func (nopLogger) Debug(args ...interface{})                   {}
func (nopLogger) Debugf(template string, args ...interface{}) {}
func (nopLogger) Info(args ...interface{})                    {}
func (nopLogger) Infof(template string, args ...interface{})  {}
func (nopLogger) Warn(args ...interface{})                    {}
func (nopLogger) Warnf(template string, args ...interface{})  {}
func (nopLogger) Error(args ...interface{})                   {}
func (nopLogger) Errorf(template string, args ...interface{}) {}
func (nopLogger) Fatal(args ...interface{})                   {}
func (nopLogger) Fatalf(template string, args ...interface{}) {}

// fakeTransport serves one batch of updates per GetUpdates call and records
// every outbound message in order.
type fakeTransport struct {
	batches [][]telegram.Update
	err     error
	sent    []string
	chats   []int64
}

func (f *fakeTransport) GetUpdates(_ context.Context, _ int64) ([]telegram.Update, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, text)
	f.chats = append(f.chats, chatID)
	return nil
}

func (f *fakeTransport) SendLongMessage(_ context.Context, chatID int64, title, content string) error {
	f.sent = append(f.sent, title+": "+content)
	f.chats = append(f.chats, chatID)
	return nil
}

type fakeUseCase struct {
	fn    func(job *models.Job) *models.JobOutcome
	calls int
}

func (f *fakeUseCase) Process(_ context.Context, job *models.Job) *models.JobOutcome {
	f.calls++
	return f.fn(job)
}

func testConfig() *config.Config {
	return &config.Config{
		Queue: config.QueueConfig{
			MaxSize:        5,
			PollIntervalMs: 1,
			ErrorPauseMs:   1,
			ReplyDelayMs:   0,
		},
		Worker: config.WorkerConfig{MaxCPUUsage: 80},
	}
}

func textUpdate(updateID, chatID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: updateID,
		Message: &telegram.Message{
			Text: text,
			Chat: telegram.Chat{ID: chatID},
		},
	}
}

func newTestOrchestrator(tr *fakeTransport, uc *fakeUseCase) (*Orchestrator, *queue.Queue) {
	q := queue.NewQueue(5)
	o := NewOrchestrator(testConfig(), tr, q, uc, nopLogger{})
	o.cpuCheck = func(float64) (bool, float64) { return true, 10 }
	return o, q
}

func successOutcome(job *models.Job) *models.JobOutcome {
	return &models.JobOutcome{
		Success: true,
		URL:     job.URL,
		VideoID: "dQw4w9WgXcQ",
		RunID:   42,
		Summaries: &models.Summaries{
			Short:     "short text",
			Middle:    "middle text",
			Full:      "full text",
			Resources: "1. https://a.io",
		},
		Performance: map[string]int64{"total_ms": 1},
	}
}

func TestOrchestrator_HappyPath(t *testing.T) {
	tr := &fakeTransport{batches: [][]telegram.Update{
		{textUpdate(1, 100, "https://youtu.be/dQw4w9WgXcQ")},
	}}
	uc := &fakeUseCase{fn: successOutcome}
	o, q := newTestOrchestrator(tr, uc)

	require.NoError(t, o.runIteration(context.Background()))

	assert.Equal(t, 1, uc.calls)
	// Acceptance reply, four summaries in fixed order, final notice.
	require.Len(t, tr.sent, 6)
	assert.Contains(t, tr.sent[0], "Link accepted")
	assert.Contains(t, tr.sent[0], "dQw4w9WgXcQ")
	assert.Contains(t, tr.sent[1], "Short summary: short text")
	assert.Contains(t, tr.sent[2], "Middle summary: middle text")
	assert.Contains(t, tr.sent[3], "Full summary: full text")
	assert.Contains(t, tr.sent[4], "Resources: 1. https://a.io")
	assert.Contains(t, tr.sent[5], "Done")
	assert.Contains(t, tr.sent[5], "42")

	st := q.Status()
	assert.True(t, st.IsEmpty)
	assert.Empty(t, st.InFlightID)
}

func TestOrchestrator_MalformedURLRejected(t *testing.T) {
	tr := &fakeTransport{batches: [][]telegram.Update{
		{textUpdate(1, 100, "hello there")},
	}}
	uc := &fakeUseCase{fn: successOutcome}
	o, q := newTestOrchestrator(tr, uc)

	require.NoError(t, o.runIteration(context.Background()))

	assert.Equal(t, 0, uc.calls)
	assert.True(t, q.Status().IsEmpty)
	require.Len(t, tr.sent, 1)
	assert.Contains(t, tr.sent[0], "valid YouTube link")
}

func TestOrchestrator_QueueFullBackpressure(t *testing.T) {
	var updates []telegram.Update
	for i := int64(1); i <= 6; i++ {
		updates = append(updates, textUpdate(i, 100, "https://youtu.be/dQw4w9WgXcQ"))
	}
	tr := &fakeTransport{batches: [][]telegram.Update{updates}}
	uc := &fakeUseCase{fn: successOutcome}
	o, _ := newTestOrchestrator(tr, uc)
	// Keep all six submissions in the admission phase.
	o.cpuCheck = func(float64) (bool, float64) { return false, 99 }

	require.NoError(t, o.runIteration(context.Background()))

	var accepted, rejected int
	for _, msg := range tr.sent {
		switch {
		case strings.Contains(msg, "Link accepted"):
			accepted++
		case strings.Contains(msg, "queue is full"):
			rejected++
		}
	}
	assert.Equal(t, 5, accepted)
	assert.Equal(t, 1, rejected)
}

func TestOrchestrator_FailureNotice(t *testing.T) {
	tr := &fakeTransport{batches: [][]telegram.Update{
		{textUpdate(1, 100, "https://youtu.be/dQw4w9WgXcQ")},
	}}
	uc := &fakeUseCase{fn: func(job *models.Job) *models.JobOutcome {
		return &models.JobOutcome{
			URL:   job.URL,
			Error: models.NewTypedError(models.ErrCodeTranscription, "no transcript available"),
		}
	}}
	o, q := newTestOrchestrator(tr, uc)

	require.NoError(t, o.runIteration(context.Background()))

	require.Len(t, tr.sent, 2)
	assert.Contains(t, tr.sent[1], "Processing failed")
	assert.Contains(t, tr.sent[1], "no transcript available")
	assert.Empty(t, q.Status().InFlightID)
}

func TestOrchestrator_PanicStillCompletesJob(t *testing.T) {
	tr := &fakeTransport{batches: [][]telegram.Update{
		{textUpdate(1, 100, "https://youtu.be/dQw4w9WgXcQ")},
	}}
	uc := &fakeUseCase{fn: func(*models.Job) *models.JobOutcome {
		panic("boom")
	}}
	o, q := newTestOrchestrator(tr, uc)

	require.NoError(t, o.runIteration(context.Background()))

	// The in-flight marker is cleared so the next job can run.
	st := q.Status()
	assert.Empty(t, st.InFlightID)
	require.Len(t, tr.sent, 2)
	assert.Contains(t, tr.sent[1], "Processing failed")
}

func TestOrchestrator_DuplicateUpdatesSkipped(t *testing.T) {
	tr := &fakeTransport{batches: [][]telegram.Update{
		{textUpdate(1, 100, "https://youtu.be/dQw4w9WgXcQ")},
		{textUpdate(1, 100, "https://youtu.be/dQw4w9WgXcQ")},
	}}
	uc := &fakeUseCase{fn: successOutcome}
	o, _ := newTestOrchestrator(tr, uc)

	require.NoError(t, o.runIteration(context.Background()))
	require.NoError(t, o.runIteration(context.Background()))

	// The replayed update never reaches admission a second time.
	assert.Equal(t, 1, uc.calls)
}

func TestOrchestrator_CPUGateDefersProcessing(t *testing.T) {
	tr := &fakeTransport{batches: [][]telegram.Update{
		{textUpdate(1, 100, "https://youtu.be/dQw4w9WgXcQ")},
	}}
	uc := &fakeUseCase{fn: successOutcome}
	o, q := newTestOrchestrator(tr, uc)
	o.cpuCheck = func(float64) (bool, float64) { return false, 95 }

	require.NoError(t, o.runIteration(context.Background()))

	assert.Equal(t, 0, uc.calls)
	assert.Equal(t, 1, q.Status().Size)

	// Once the gate opens the deferred job runs.
	o.cpuCheck = func(float64) (bool, float64) { return true, 10 }
	require.NoError(t, o.runIteration(context.Background()))
	assert.Equal(t, 1, uc.calls)
	assert.True(t, q.Status().IsEmpty)
}

func TestOrchestrator_PollErrorPropagates(t *testing.T) {
	tr := &fakeTransport{err: errors.New("network down")}
	uc := &fakeUseCase{fn: successOutcome}
	o, _ := newTestOrchestrator(tr, uc)

	err := o.runIteration(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, uc.calls)
}

func TestOrchestrator_NonTextUpdatesIgnored(t *testing.T) {
	tr := &fakeTransport{batches: [][]telegram.Update{
		{
			{UpdateID: 1, Message: nil},
			{UpdateID: 2, Message: &telegram.Message{Chat: telegram.Chat{ID: 100}}},
		},
	}}
	uc := &fakeUseCase{fn: successOutcome}
	o, q := newTestOrchestrator(tr, uc)

	require.NoError(t, o.runIteration(context.Background()))

	assert.Empty(t, tr.sent)
	assert.True(t, q.Status().IsEmpty)
	assert.Equal(t, int64(2), o.lastUpdateID)
}
