package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mihailchik/yt-summ/internal/ai"
	"github.com/Mihailchik/yt-summ/internal/config"
	"github.com/Mihailchik/yt-summ/internal/orchestrator"
	"github.com/Mihailchik/yt-summ/internal/pipeline"
	"github.com/Mihailchik/yt-summ/internal/queue"
	"github.com/Mihailchik/yt-summ/internal/server"
	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/Mihailchik/yt-summ/internal/summaries/repository"
	"github.com/Mihailchik/yt-summ/internal/summaries/usecase"
	"github.com/Mihailchik/yt-summ/internal/telegram"
	"github.com/Mihailchik/yt-summ/internal/transcribe"
	"github.com/Mihailchik/yt-summ/pkg/db/aws"
	"github.com/Mihailchik/yt-summ/pkg/db/postgres"
	clientRedis "github.com/Mihailchik/yt-summ/pkg/db/redis"
	"github.com/Mihailchik/yt-summ/pkg/logger"
	"github.com/Mihailchik/yt-summ/pkg/utils"
)

func main() {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yml"
	}

	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	if err = utils.ValidateStruct(context.Background(), cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	// Every storage backend is optional: a missing one is logged and the bot
	// runs without it.
	var runRepo summaries.Repository
	if cfg.Postgres.Enabled {
		psqlDB, err := postgres.NewPsqlDB(cfg)
		if err != nil {
			appLogger.Warnf("could not connect to db, run records disabled: %s", err)
		} else {
			appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
			defer psqlDB.Close()
			runRepo = repository.NewRunRepo(psqlDB)
		}
	}

	var redisRepo summaries.RedisRepository
	if cfg.Redis.Enabled {
		redisClient, err := clientRedis.NewRedisClient(cfg)
		if err != nil {
			appLogger.Warnf("could not connect to redis, transcript cache disabled: %s", err)
		} else {
			appLogger.Info("redis connected")
			defer redisClient.Close()
			redisRepo = repository.NewTranscriptRedisRepo(redisClient,
				time.Duration(cfg.Redis.TranscriptTTLSec)*time.Second)
		}
	}

	var awsRepo summaries.AWSRepository
	if cfg.S3.Enabled {
		s3Client, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			appLogger.Warnf("could not connect to s3, transcript archive disabled: %s", err)
		} else {
			appLogger.Info("s3 connected")
			awsRepo = repository.NewTranscriptAwsRepo(s3Client, cfg.S3.Bucket)
		}
	}

	var pageSink summaries.PageSink
	if cfg.Notion.Enabled {
		pageSink = repository.NewNotionPageSink(cfg.Notion.Token, cfg.Notion.DatabaseID, cfg.Notion.PropMaxLen)
	}

	prompts, err := ai.LoadPrompts(cfg.AI.PromptFile)
	if err != nil {
		appLogger.Warnf("could not load prompt file %s, using built-in prompts: %s", cfg.AI.PromptFile, err)
		prompts = ai.EmptyPromptStore()
	}

	tgClient := telegram.NewClient(cfg)
	transcriptSource := transcribe.NewSupadataClient(cfg, appLogger)
	model := ai.NewGeminiClient(cfg, prompts, appLogger)
	pipe := pipeline.NewPipeline(model, appLogger)

	summarizeUC := usecase.NewSummarizeUseCase(cfg, transcriptSource, pipe,
		runRepo, redisRepo, awsRepo, pageSink, appLogger)

	jobQueue := queue.NewQueue(cfg.Queue.MaxSize)
	orch := orchestrator.NewOrchestrator(cfg, tgClient, jobQueue, summarizeUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statusAPI := server.NewServer(cfg, jobQueue, runRepo, appLogger)
	go func() {
		if err := statusAPI.Run(); err != nil {
			appLogger.Errorf("status api stopped: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutdown signal received")
		cancel()
	}()

	orch.Run(ctx)

	shutdownCtx, shutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdown()
	if err := statusAPI.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf("status api shutdown: %v", err)
	}
}
