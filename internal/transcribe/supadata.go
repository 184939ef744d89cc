package transcribe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/Mihailchik/yt-summ/internal/config"
	"github.com/Mihailchik/yt-summ/internal/models"
	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/Mihailchik/yt-summ/pkg/logger"
)

const pollInterval = 2 * time.Second

// supadataClient resolves a video URL to transcript text through the
// Supadata HTTP API. The service answers either synchronously (200 with the
// transcript) or asynchronously (202 with a job ID to poll); both modes end
// in text+language or a typed failure.
type supadataClient struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     logger.Logger
}

func NewSupadataClient(cfg *config.Config, logger logger.Logger) summaries.TranscriptSource {
	return &supadataClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Supadata.TimeoutSec) * time.Second},
		logger:     logger,
	}
}

type transcriptResponse struct {
	Content string `json:"content"`
	Lang    string `json:"lang"`
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
}

// Fetch tries each configured API key in order, moving to the next one only
// on auth or rate-limit failures.
func (s *supadataClient) Fetch(ctx context.Context, videoURL string) (*models.Transcript, error) {
	apiKeys := s.cfg.Supadata.APIKeys
	if len(apiKeys) == 0 {
		return nil, models.NewTypedError(models.ErrCodeNoAPIKeys, "no supadata api keys configured")
	}

	var lastErr error
	for i, apiKey := range apiKeys {
		transcript, err := s.fetchWithKey(ctx, videoURL, apiKey)
		if err == nil {
			return transcript, nil
		}
		lastErr = err

		te := models.AsTypedError(err)
		if (te.Code == models.ErrCodeUnauthorized || te.Code == models.ErrCodeRateLimited) && i < len(apiKeys)-1 {
			s.logger.Warnf("supadata key %d/%d failed with %s, trying next", i+1, len(apiKeys), te.Code)
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (s *supadataClient) fetchWithKey(ctx context.Context, videoURL, apiKey string) (*models.Transcript, error) {
	params := url.Values{}
	params.Set("url", videoURL)
	params.Set("text", "true")
	params.Set("mode", s.cfg.Supadata.Mode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Supadata.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, models.NewTypedError(models.ErrCodeServerError, err.Error())
	}
	req.Header.Set("x-api-key", apiKey)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, models.NewTypedError(models.ErrCodeTimeout, ctx.Err().Error())
		}
		return nil, models.NewTypedError(models.ErrCodeTimeout, err.Error())
	}
	defer resp.Body.Close()
	s.logger.Infof("supadata responded with %d in %s", resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		var data transcriptResponse
		if err = json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return nil, models.NewTypedError(models.ErrCodeServerError, "malformed transcript response: "+err.Error())
		}
		if data.Content == "" {
			return nil, models.NewTypedError(models.ErrCodeServerError, "transcript response missing content")
		}
		return &models.Transcript{Content: data.Content, Lang: data.Lang}, nil

	case resp.StatusCode == http.StatusAccepted:
		var data transcriptResponse
		if err = json.NewDecoder(resp.Body).Decode(&data); err != nil || data.JobID == "" {
			return nil, models.NewTypedError(models.ErrCodeServerError, "async response missing jobId")
		}
		s.logger.Infof("supadata returned async job %s, polling", data.JobID)
		return s.pollJob(ctx, data.JobID, apiKey)

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, models.NewTypedError(models.ErrCodeUnauthorized, "supadata rejected the api key")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, models.NewTypedError(models.ErrCodeRateLimited, "supadata rate limit exceeded")
	case resp.StatusCode == http.StatusBadRequest:
		return nil, models.NewTypedError(models.ErrCodeBadURL, "supadata cannot process this url")
	case resp.StatusCode >= 500:
		return nil, models.NewTypedError(models.ErrCodeServerError, resp.Status)
	default:
		return nil, models.NewTypedError(models.ErrCodeServerError, "unexpected status "+resp.Status)
	}
}

// pollJob checks the async job status every two seconds until the provider's
// own timeout budget is spent.
func (s *supadataClient) pollJob(ctx context.Context, jobID, apiKey string) (*models.Transcript, error) {
	deadline := time.Now().Add(time.Duration(s.cfg.Supadata.TimeoutSec) * time.Second)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil, models.NewTypedError(models.ErrCodeTimeout, ctx.Err().Error())
		case <-time.After(pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Supadata.BaseURL+"/status/"+jobID, nil)
		if err != nil {
			return nil, models.NewTypedError(models.ErrCodeServerError, err.Error())
		}
		req.Header.Set("x-api-key", apiKey)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			continue
		}

		var data transcriptResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&data)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || decodeErr != nil {
			continue
		}

		switch data.Status {
		case "completed":
			if data.Content == "" {
				return nil, models.NewTypedError(models.ErrCodeServerError, "completed job missing content")
			}
			return &models.Transcript{Content: data.Content, Lang: data.Lang}, nil
		case "failed":
			return nil, models.NewTypedError(models.ErrCodeServerError, "transcription job failed")
		default:
			// pending/processing, keep polling
		}
	}
	return nil, models.NewTypedError(models.ErrCodeJobTimeout, "timed out waiting for transcription job "+jobID)
}
