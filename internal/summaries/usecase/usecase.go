package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/Mihailchik/yt-summ/internal/config"
	"github.com/Mihailchik/yt-summ/internal/models"
	"github.com/Mihailchik/yt-summ/internal/pipeline"
	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/Mihailchik/yt-summ/pkg/logger"
	"github.com/Mihailchik/yt-summ/pkg/utils"
	"github.com/google/uuid"
)

// summarizeUC runs the processing sequence for one job. Persistence sinks
// are best-effort: any of runRepo, redisRepo, awsRepo or pageSink may be nil
// (backend not configured) or fail without failing the job. Only the
// transcript fetch and the pipeline decide success.
type summarizeUC struct {
	cfg        *config.Config
	transcript summaries.TranscriptSource
	pipe       *pipeline.Pipeline
	runRepo    summaries.Repository
	redisRepo  summaries.RedisRepository
	awsRepo    summaries.AWSRepository
	pageSink   summaries.PageSink
	logger     logger.Logger
}

func NewSummarizeUseCase(
	cfg *config.Config,
	transcript summaries.TranscriptSource,
	pipe *pipeline.Pipeline,
	runRepo summaries.Repository,
	redisRepo summaries.RedisRepository,
	awsRepo summaries.AWSRepository,
	pageSink summaries.PageSink,
	log logger.Logger,
) summaries.UseCase {
	return &summarizeUC{
		cfg:        cfg,
		transcript: transcript,
		pipe:       pipe,
		runRepo:    runRepo,
		redisRepo:  redisRepo,
		awsRepo:    awsRepo,
		pageSink:   pageSink,
		logger:     log,
	}
}

func (u *summarizeUC) Process(ctx context.Context, job *models.Job) *models.JobOutcome {
	start := time.Now()
	outcome := &models.JobOutcome{URL: job.URL, Performance: make(map[string]int64)}

	// Defense in depth: the orchestrator validated at admission, but the
	// queue accepts any string.
	if !utils.ValidateYouTubeURL(job.URL) {
		outcome.Error = models.NewTypedError(models.ErrCodeValidation, "not a valid YouTube url")
		return outcome
	}
	videoID := utils.ExtractVideoID(job.URL)
	if videoID == "" {
		outcome.Error = models.NewTypedError(models.ErrCodeValidation, "could not extract video id from url")
		return outcome
	}
	outcome.VideoID = videoID
	outcome.RunID = utils.GenerateRunID(videoID)

	u.logger.Infof("processing job %s video=%s run_id=%d", job.ID, videoID, outcome.RunID)

	record := &models.RunRecord{
		RecordID:  uuid.New(),
		RunID:     outcome.RunID,
		URL:       job.URL,
		VideoID:   videoID,
		CreatedAt: time.Now(),
	}
	if u.runRepo != nil {
		if err := u.runRepo.CreateRun(ctx, record); err != nil {
			u.logger.Errorf("could not create run record: %v", err)
		}
	}

	transcriptStart := time.Now()
	transcript, err := u.fetchTranscript(ctx, videoID, job.URL)
	outcome.Performance["transcript_ms"] = time.Since(transcriptStart).Milliseconds()
	if err != nil {
		te := models.AsTypedError(err)
		u.logger.Errorf("transcript fetch failed for %s: %v", videoID, te)
		outcome.Error = models.NewTypedError(models.ErrCodeTranscription, te.Error())
		return outcome
	}

	record.Transcript = transcript.Content
	record.Lang = transcript.Lang
	if u.runRepo != nil {
		if err := u.runRepo.UpdateTranscript(ctx, record); err != nil {
			u.logger.Errorf("could not persist transcript: %v", err)
		}
	}
	if u.awsRepo != nil {
		if err := u.awsRepo.ArchiveTranscript(ctx, videoID, outcome.RunID, transcript.Content); err != nil {
			u.logger.Errorf("could not archive transcript: %v", err)
		}
	}

	result := u.pipe.Run(ctx, transcript.Content)
	for stage, ms := range result.Performance {
		outcome.Performance[stage] = ms
	}
	if result.Error != nil {
		outcome.Error = result.Error
		return outcome
	}

	outcome.Success = true
	outcome.Summaries = &models.Summaries{
		Short:     result.ShortSummary,
		Middle:    result.MiddleSummary,
		Full:      result.FullSummary,
		Resources: strings.Join(result.Resources, "\n"),
	}

	record.CleanText = result.CleanText
	record.FullSummary = result.FullSummary
	record.MiddleSummary = result.MiddleSummary
	record.ShortSummary = result.ShortSummary
	record.Resources = outcome.Summaries.Resources
	u.persistResults(ctx, record)

	outcome.Performance["total_ms"] = time.Since(start).Milliseconds()
	return outcome
}

// fetchTranscript checks the cache first; a hit skips the transcription
// provider entirely. Cache failures never fail the fetch.
func (u *summarizeUC) fetchTranscript(ctx context.Context, videoID, url string) (*models.Transcript, error) {
	if u.redisRepo != nil {
		cached, err := u.redisRepo.GetTranscript(ctx, videoID)
		if err != nil {
			u.logger.Warnf("transcript cache read failed: %v", err)
		} else if cached != nil {
			u.logger.Infof("transcript cache hit for %s", videoID)
			return cached, nil
		}
	}

	transcript, err := u.transcript.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if u.redisRepo != nil {
		if err := u.redisRepo.SetTranscript(ctx, videoID, transcript); err != nil {
			u.logger.Warnf("transcript cache write failed: %v", err)
		}
	}
	return transcript, nil
}

func (u *summarizeUC) persistResults(ctx context.Context, record *models.RunRecord) {
	if u.runRepo != nil {
		if err := u.runRepo.UpdateSummaries(ctx, record); err != nil {
			u.logger.Errorf("could not persist summaries: %v", err)
		}
	}
	if u.pageSink == nil {
		return
	}

	pageID, err := u.pageSink.UpsertPage(ctx, record.RunID, record.URL, record.CreatedAt)
	if err != nil {
		u.logger.Errorf("could not upsert result page: %v", err)
		return
	}
	properties := map[string]string{
		"Short summary":  record.ShortSummary,
		"Middle summary": record.MiddleSummary,
		"Full summary":   record.FullSummary,
		"Resources":      record.Resources,
	}
	for property, text := range properties {
		if text == "" {
			continue
		}
		if err := u.pageSink.SetRichText(ctx, pageID, property, text); err != nil {
			u.logger.Errorf("could not set page property %q: %v", property, err)
		}
	}
}
