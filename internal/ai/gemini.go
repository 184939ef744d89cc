package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Mihailchik/yt-summ/internal/config"
	"github.com/Mihailchik/yt-summ/internal/models"
	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/Mihailchik/yt-summ/pkg/logger"
	"github.com/Mihailchik/yt-summ/pkg/utils"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// geminiClient calls the Gemini generateContent API with model and key
// rotation: transient failures (429/5xx/timeout) are retried on the backoff
// schedule, auth failures move straight to the next key, other 4xx are
// fatal. The rotation order is primary model first across all keys, then
// each backup model.
type geminiClient struct {
	cfg        *config.Config
	prompts    *PromptStore
	httpClient *http.Client
	baseURL    string
	logger     logger.Logger
}

func NewGeminiClient(cfg *config.Config, prompts *PromptStore, logger logger.Logger) summaries.SummarizationModel {
	return &geminiClient{
		cfg:        cfg,
		prompts:    prompts,
		httpClient: &http.Client{Timeout: time.Duration(cfg.AI.TimeoutSec) * time.Second},
		baseURL:    geminiBaseURL,
		logger:     logger,
	}
}

type generateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		FinishReason string `json:"finishReason"`
		Content      struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *geminiClient) Call(ctx context.Context, promptID string, inputText string) (string, error) {
	template, ok := g.prompts.Get(promptID)
	if !ok {
		return "", models.NewTypedError(models.ErrCodeBadRequest, "unknown prompt id "+promptID)
	}
	fullPrompt := Fill(template, inputText)

	apiKeys := g.cfg.AI.APIKeys
	if len(apiKeys) == 0 {
		return "", models.NewTypedError(models.ErrCodeNoAPIKeys, "no ai api keys configured")
	}

	modelsToTry := append([]string{g.cfg.AI.ModelPrimary}, g.cfg.AI.ModelBackup...)

	var lastErr error
	for _, model := range modelsToTry {
		for keyIndex, apiKey := range apiKeys {
			start := time.Now()

			var text string
			err := utils.RetryTransient(ctx, func() error {
				var attemptErr error
				text, attemptErr = g.generate(ctx, model, apiKey, fullPrompt)
				return attemptErr
			}, g.backoffSchedule(), models.IsTransient)

			latency := time.Since(start)
			if err == nil {
				if strings.TrimSpace(text) == "" {
					g.logger.Warnf("gemini returned empty response (model=%s key=%d), trying next key", model, keyIndex)
					lastErr = models.NewTypedError(models.ErrCodeServerError, "empty model response")
					continue
				}
				g.logger.Infof("ai call ok prompt=%s model=%s key=%d latency=%s len=%d",
					promptID, model, keyIndex, latency, len(text))
				return text, nil
			}

			te := models.AsTypedError(err)
			switch te.Code {
			case models.ErrCodeUnauthorized:
				g.logger.Warnf("gemini auth failed (model=%s key=%d), trying next key", model, keyIndex)
				lastErr = err
				continue
			case models.ErrCodeBadRequest:
				return "", err
			default:
				g.logger.Warnf("gemini call failed (model=%s key=%d): %v", model, keyIndex, err)
				lastErr = err
			}
		}
	}

	if lastErr == nil {
		lastErr = models.NewTypedError(models.ErrCodeAllFailed, "all api keys and models exhausted")
	} else {
		te := models.AsTypedError(lastErr)
		lastErr = models.NewTypedError(models.ErrCodeAllFailed,
			fmt.Sprintf("all api keys and models exhausted, last error %s", te.Error()))
	}
	return "", lastErr
}

func (g *geminiClient) backoffSchedule() []int {
	schedule := g.cfg.AI.BackoffMs
	if g.cfg.AI.MaxRetries < len(schedule) {
		schedule = schedule[:g.cfg.AI.MaxRetries]
	}
	return schedule
}

func (g *geminiClient) generate(ctx context.Context, model, apiKey, prompt string) (string, error) {
	reqBody := generateRequest{}
	reqBody.Contents = make([]struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	}, 1)
	reqBody.Contents[0].Parts = []struct {
		Text string `json:"text"`
	}{{Text: prompt}}
	reqBody.GenerationConfig.Temperature = 0.1
	reqBody.GenerationConfig.MaxOutputTokens = 4096

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", models.NewTypedError(models.ErrCodeBadRequest, err.Error())
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, model, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", models.NewTypedError(models.ErrCodeBadRequest, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", models.NewTypedError(models.ErrCodeTimeout, ctx.Err().Error())
		}
		return "", models.NewTypedError(models.ErrCodeTimeout, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var data generateResponse
		if err = json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return "", models.NewTypedError(models.ErrCodeServerError, "malformed model response: "+err.Error())
		}
		if len(data.Candidates) == 0 {
			return "", models.NewTypedError(models.ErrCodeServerError, "model response has no candidates")
		}
		candidate := data.Candidates[0]
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			g.logger.Warnf("gemini finish_reason=%s, content may be blocked", candidate.FinishReason)
		}
		if len(candidate.Content.Parts) == 0 {
			return "", nil
		}
		return candidate.Content.Parts[0].Text, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return "", models.NewTypedError(models.ErrCodeRateLimited, "model rate limit exceeded")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", models.NewTypedError(models.ErrCodeUnauthorized, "model rejected the api key")
	case resp.StatusCode == http.StatusServiceUnavailable:
		return "", models.NewTypedError(models.ErrCodeOverloaded, "model service overloaded")
	case resp.StatusCode >= 500:
		return "", models.NewTypedError(models.ErrCodeServerError, resp.Status)
	default:
		return "", models.NewTypedError(models.ErrCodeBadRequest, "unexpected status "+resp.Status)
	}
}
