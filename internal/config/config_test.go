package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
server:
  AppVersion: 1.0.0
  Port: :5000
  Mode: Development

telegram:
  BotToken: token

supadata:
  BaseURL: https://api.supadata.ai/v1
  APIKeys:
    - sk-1

ai:
  APIKeys:
    - gk-1
  ModelPrimary: gemini-2.0-flash
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseConfig_AppliesDefaults(t *testing.T) {
	v, err := LoadConfig(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.Telegram.BotToken)
	assert.Equal(t, 5, cfg.Queue.MaxSize)
	assert.Equal(t, 500, cfg.Queue.PollIntervalMs)
	assert.Equal(t, 1000, cfg.Queue.ErrorPauseMs)
	assert.Equal(t, 100, cfg.Queue.ReplyDelayMs)
	assert.Equal(t, 30, cfg.Telegram.PollTimeoutSec)
	assert.Equal(t, 4000, cfg.Telegram.MessageLimit)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIBaseURL)
	assert.Equal(t, 30, cfg.Supadata.TimeoutSec)
	assert.Equal(t, "auto", cfg.Supadata.Mode)
	assert.Equal(t, 20, cfg.AI.TimeoutSec)
	assert.Equal(t, 3, cfg.AI.MaxRetries)
	assert.Equal(t, []int{1000, 2000, 4000}, cfg.AI.BackoffMs)
	assert.Equal(t, "prompts/yt_prompts.txt", cfg.AI.PromptFile)
	assert.Equal(t, 1950, cfg.Notion.PropMaxLen)
	assert.Equal(t, 80.0, cfg.Worker.MaxCPUUsage)
	assert.Equal(t, 86400, cfg.Redis.TranscriptTTLSec)
}

func TestParseConfig_ExplicitValuesKept(t *testing.T) {
	content := minimalConfig + `
queue:
  MaxSize: 3
  PollIntervalMs: 250
`
	v, err := LoadConfig(writeConfig(t, content))
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Queue.MaxSize)
	assert.Equal(t, 250, cfg.Queue.PollIntervalMs)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
