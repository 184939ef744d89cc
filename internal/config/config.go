package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Telegram TelegramConfig
	Supadata SupadataConfig
	AI       AIConfig
	Queue    QueueConfig
	Worker   WorkerConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	Notion   NotionConfig
	Logger   Logger
}

type ServerConfig struct {
	AppVersion string
	Port       string
	Mode       string
}

type TelegramConfig struct {
	BotToken       string `validate:"required"`
	BotUsername    string
	APIBaseURL     string
	PollTimeoutSec int
	MessageLimit   int
}

type SupadataConfig struct {
	BaseURL    string   `validate:"required"`
	APIKeys    []string `validate:"required,min=1"`
	TimeoutSec int
	Mode       string
}

type AIConfig struct {
	APIKeys      []string `validate:"required,min=1"`
	ModelPrimary string   `validate:"required"`
	ModelBackup  []string
	PromptFile   string
	TimeoutSec   int
	MaxRetries   int
	BackoffMs    []int
}

type QueueConfig struct {
	MaxSize        int
	PollIntervalMs int
	ErrorPauseMs   int
	ReplyDelayMs   int
}

type WorkerConfig struct {
	MaxCPUUsage float64
}

type DBConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
}

type RedisConfig struct {
	Enabled          bool
	RedisAddr        string
	RedisPassword    string
	DB               int
	MinIdleConns     int
	PoolSize         int
	PoolTimeout      int
	TranscriptTTLSec int
}

type S3Config struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

type NotionConfig struct {
	Enabled    bool
	Token      string
	DatabaseID string
	PropMaxLen int
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	applyDefaults(&c)
	return &c, nil
}

// applyDefaults fills the reference values for anything the config file
// leaves unset, so a minimal file with just credentials still runs.
func applyDefaults(c *Config) {
	if c.Queue.MaxSize <= 0 {
		c.Queue.MaxSize = 5
	}
	if c.Queue.PollIntervalMs <= 0 {
		c.Queue.PollIntervalMs = 500
	}
	if c.Queue.ErrorPauseMs <= 0 {
		c.Queue.ErrorPauseMs = 1000
	}
	if c.Queue.ReplyDelayMs <= 0 {
		c.Queue.ReplyDelayMs = 100
	}
	if c.Telegram.PollTimeoutSec <= 0 {
		c.Telegram.PollTimeoutSec = 30
	}
	if c.Telegram.MessageLimit <= 0 {
		c.Telegram.MessageLimit = 4000
	}
	if c.Telegram.APIBaseURL == "" {
		c.Telegram.APIBaseURL = "https://api.telegram.org"
	}
	if c.Supadata.TimeoutSec <= 0 {
		c.Supadata.TimeoutSec = 30
	}
	if c.Supadata.Mode == "" {
		c.Supadata.Mode = "auto"
	}
	if c.AI.TimeoutSec <= 0 {
		c.AI.TimeoutSec = 20
	}
	if c.AI.MaxRetries <= 0 {
		c.AI.MaxRetries = 3
	}
	if len(c.AI.BackoffMs) == 0 {
		c.AI.BackoffMs = []int{1000, 2000, 4000}
	}
	if c.AI.PromptFile == "" {
		c.AI.PromptFile = "prompts/yt_prompts.txt"
	}
	if c.Notion.PropMaxLen <= 0 {
		c.Notion.PropMaxLen = 1950
	}
	if c.Worker.MaxCPUUsage <= 0 {
		c.Worker.MaxCPUUsage = 80.0
	}
	if c.Redis.TranscriptTTLSec <= 0 {
		c.Redis.TranscriptTTLSec = 86400
	}
}
