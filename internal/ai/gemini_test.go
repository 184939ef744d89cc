package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mihailchik/yt-summ/internal/config"
	"github.com/Mihailchik/yt-summ/internal/models"
	"github.com/Mihailchik/yt-summ/internal/summaries"
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

func okBody(text string) string {
	return fmt.Sprintf(`{"candidates":[{"finishReason":"STOP","content":{"parts":[{"text":%q}]}}]}`, text)
}

func newTestGemini(baseURL string, keys []string, primary string, backup ...string) *geminiClient {
	cfg := &config.Config{}
	cfg.AI.APIKeys = keys
	cfg.AI.ModelPrimary = primary
	cfg.AI.ModelBackup = backup
	cfg.AI.TimeoutSec = 5
	cfg.AI.MaxRetries = 1
	cfg.AI.BackoffMs = []int{1}
	return &geminiClient{
		cfg:        cfg,
		prompts:    EmptyPromptStore(),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     nopLogger{},
	}
}

func TestGeminiCall_Success(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Contents[0].Parts[0].Text
		w.Write([]byte(okBody("model answer")))
	}))
	defer srv.Close()

	g := newTestGemini(srv.URL, []string{"k1"}, "model-a")
	text, err := g.Call(context.Background(), summaries.PromptFull, "input text")

	require.NoError(t, err)
	assert.Equal(t, "model answer", text)
	assert.Contains(t, gotPrompt, "input text")
}

func TestGeminiCall_UnknownPromptID(t *testing.T) {
	g := newTestGemini("http://unused", []string{"k1"}, "model-a")
	_, err := g.Call(context.Background(), "NOPE", "input")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeBadRequest, models.AsTypedError(err).Code)
}

func TestGeminiCall_NoKeys(t *testing.T) {
	g := newTestGemini("http://unused", nil, "model-a")
	_, err := g.Call(context.Background(), summaries.PromptFull, "input")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeNoAPIKeys, models.AsTypedError(err).Code)
}

func TestGeminiCall_RotatesKeyOnAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "bad" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(okBody("second key worked")))
	}))
	defer srv.Close()

	g := newTestGemini(srv.URL, []string{"bad", "good"}, "model-a")
	text, err := g.Call(context.Background(), summaries.PromptFull, "input")

	require.NoError(t, err)
	assert.Equal(t, "second key worked", text)
}

func TestGeminiCall_FallsBackToBackupModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "model-a") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(okBody("backup answer")))
	}))
	defer srv.Close()

	g := newTestGemini(srv.URL, []string{"k1"}, "model-a", "model-b")
	text, err := g.Call(context.Background(), summaries.PromptFull, "input")

	require.NoError(t, err)
	assert.Equal(t, "backup answer", text)
}

func TestGeminiCall_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(okBody("after retry")))
	}))
	defer srv.Close()

	g := newTestGemini(srv.URL, []string{"k1"}, "model-a")
	text, err := g.Call(context.Background(), summaries.PromptFull, "input")

	require.NoError(t, err)
	assert.Equal(t, "after retry", text)
	assert.Equal(t, 2, calls)
}

func TestGeminiCall_BadRequestIsFatal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := newTestGemini(srv.URL, []string{"k1", "k2"}, "model-a", "model-b")
	_, err := g.Call(context.Background(), summaries.PromptFull, "input")

	require.Error(t, err)
	assert.Equal(t, models.ErrCodeBadRequest, models.AsTypedError(err).Code)
	// Fatal 4xx stops the rotation immediately.
	assert.Equal(t, 1, calls)
}

func TestGeminiCall_EmptyResponseMovesToNextKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "k1" {
			w.Write([]byte(okBody("")))
			return
		}
		w.Write([]byte(okBody("real answer")))
	}))
	defer srv.Close()

	g := newTestGemini(srv.URL, []string{"k1", "k2"}, "model-a")
	text, err := g.Call(context.Background(), summaries.PromptFull, "input")

	require.NoError(t, err)
	assert.Equal(t, "real answer", text)
}

func TestGeminiCall_AllExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := newTestGemini(srv.URL, []string{"k1", "k2"}, "model-a", "model-b")
	_, err := g.Call(context.Background(), summaries.PromptFull, "input")

	require.Error(t, err)
	te := models.AsTypedError(err)
	assert.Equal(t, models.ErrCodeAllFailed, te.Code)
	assert.Contains(t, te.Detail, "overloaded")
}
