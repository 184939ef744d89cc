package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mihailchik/yt-summ/internal/config"
	"github.com/Mihailchik/yt-summ/internal/models"
	"github.com/Mihailchik/yt-summ/internal/queue"
	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/Mihailchik/yt-summ/internal/telegram"
	"github.com/Mihailchik/yt-summ/pkg/logger"
	"github.com/Mihailchik/yt-summ/pkg/utils"
)

// Orchestrator owns the single worker loop: it polls the chat transport for
// new submissions, admits them into the bounded queue, and processes at most
// one job per iteration so message polling stays responsive. The loop never
// terminates on a per-iteration failure; only context cancellation stops it.
type Orchestrator struct {
	cfg       *config.Config
	transport ChatTransport
	queue     *queue.Queue
	uc        summaries.UseCase
	logger    logger.Logger

	// lastUpdateID is the inclusive high-water mark of processed updates.
	// Only the loop goroutine touches it.
	lastUpdateID int64

	// cpuCheck is swappable for tests.
	cpuCheck func(max float64) (bool, float64)
}

func NewOrchestrator(
	cfg *config.Config,
	transport ChatTransport,
	q *queue.Queue,
	uc summaries.UseCase,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		transport: transport,
		queue:     q,
		uc:        uc,
		logger:    log,
		cpuCheck:  utils.CheckCPUUsage,
	}
}

// Run drives the loop until ctx is cancelled. Iteration failures are logged
// and followed by the longer error pause instead of the regular poll
// interval.
func (o *Orchestrator) Run(ctx context.Context) {
	o.logger.Infof("worker loop started, queue max=%d poll=%dms",
		o.cfg.Queue.MaxSize, o.cfg.Queue.PollIntervalMs)

	for {
		if ctx.Err() != nil {
			o.logger.Info("worker loop stopping")
			return
		}

		pause := time.Duration(o.cfg.Queue.PollIntervalMs) * time.Millisecond
		if err := o.runIteration(ctx); err != nil {
			if ctx.Err() != nil {
				o.logger.Info("worker loop stopping")
				return
			}
			o.logger.Errorf("iteration failed: %v", err)
			pause = time.Duration(o.cfg.Queue.ErrorPauseMs) * time.Millisecond
		}

		select {
		case <-ctx.Done():
			o.logger.Info("worker loop stopping")
			return
		case <-time.After(pause):
		}
	}
}

// runIteration drains newly arrived messages, then processes at most one
// queued job.
func (o *Orchestrator) runIteration(ctx context.Context) error {
	updates, err := o.transport.GetUpdates(ctx, o.lastUpdateID+1)
	if err != nil {
		return err
	}

	for _, update := range updates {
		if update.UpdateID <= o.lastUpdateID {
			continue
		}
		o.lastUpdateID = update.UpdateID
		o.handleUpdate(ctx, update.Message)
	}

	if o.queue.Status().Size > 0 {
		if ok, usage := o.cpuCheck(o.cfg.Worker.MaxCPUUsage); !ok {
			o.logger.Warnf("cpu usage %.2f%% too high, deferring job", usage)
		} else {
			o.processNext(ctx)
		}
	}
	return nil
}

func (o *Orchestrator) handleUpdate(ctx context.Context, msg *telegram.Message) {
	if msg == nil || msg.Text == "" {
		return
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	username := "unknown"
	if msg.From != nil && msg.From.Username != "" {
		username = msg.From.Username
	}
	o.logger.Infof("message from %s (chat %d): %q", username, chatID, text)

	if !utils.ValidateYouTubeURL(text) {
		o.reply(ctx, chatID, "❌ Please send a valid YouTube link\n\nExample: https://www.youtube.com/watch?v=...")
		return
	}

	res := o.queue.Enqueue(text, chatID)
	if !res.Accepted {
		o.reply(ctx, chatID, fmt.Sprintf("🚫 %s\n⏳ Try again later", res.Message))
		return
	}

	videoID := utils.ExtractVideoID(text)
	o.logger.Infof("job %s enqueued at position %d", res.JobID, res.Position)
	o.reply(ctx, chatID, fmt.Sprintf(
		"📥 Link accepted: %s\n🆔 Video: %s\n📍 Queue position: %d\n\n⏳ Processing will start shortly...",
		text, videoID, res.Position))
}

// processNext takes one job off the queue and runs the processing sequence.
// The job is marked completed no matter how the sequence ends; a panic is
// confined to this job and reported as a generic failure.
func (o *Orchestrator) processNext(ctx context.Context) {
	job := o.queue.Dequeue()
	if job == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Errorf("panic while processing job %s: %v", job.ID, r)
			o.reply(ctx, job.Source, "❌ Processing failed: unexpected internal error")
		}
		o.queue.MarkCompleted(job.ID)
	}()

	o.logger.Infof("processing job %s url=%s", job.ID, job.URL)
	outcome := o.uc.Process(ctx, job)

	if !outcome.Success {
		detail := "unknown error"
		if outcome.Error != nil {
			detail = outcome.Error.Detail
			if detail == "" {
				detail = outcome.Error.Code
			}
		}
		o.reply(ctx, job.Source, "❌ Processing failed: "+detail)
		o.logger.Errorf("job %s failed: %v", job.ID, outcome.Error)
		return
	}

	o.sendSummaries(ctx, job.Source, outcome)
	o.logger.Infof("job %s completed run_id=%d total_ms=%d",
		job.ID, outcome.RunID, outcome.Performance["total_ms"])
}

// sendSummaries relays results in the fixed order short → middle → full →
// resources, then the final notice. Individual send failures are logged and
// the remaining messages still go out.
func (o *Orchestrator) sendSummaries(ctx context.Context, chatID int64, outcome *models.JobOutcome) {
	s := outcome.Summaries
	delay := time.Duration(o.cfg.Queue.ReplyDelayMs) * time.Millisecond

	sections := []struct {
		title   string
		content string
	}{
		{"Short summary", s.Short},
		{"Middle summary", s.Middle},
		{"Full summary", s.Full},
		{"Resources", s.Resources},
	}
	for _, section := range sections {
		if section.content == "" {
			continue
		}
		if err := o.transport.SendLongMessage(ctx, chatID, section.title, section.content); err != nil {
			o.logger.Errorf("could not send %q to chat %d: %v", section.title, chatID, err)
		}
		time.Sleep(delay)
	}

	o.reply(ctx, chatID, fmt.Sprintf("✅ Done! Summaries saved (run #%d)", outcome.RunID))
}

func (o *Orchestrator) reply(ctx context.Context, chatID int64, text string) {
	if err := o.transport.SendMessage(ctx, chatID, text); err != nil {
		o.logger.Errorf("could not reply to chat %d: %v", chatID, err)
	}
}
