package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Mihailchik/yt-summ/internal/config"
	"github.com/Mihailchik/yt-summ/internal/queue"
	"github.com/Mihailchik/yt-summ/internal/summaries"
	"github.com/Mihailchik/yt-summ/pkg/logger"
)

const (
	maxHeaderBytes = 1 << 20
	readTimeout    = 10 * time.Second
	writeTimeout   = 10 * time.Second
)

// Server exposes the read-only status API next to the worker loop: health,
// queue snapshot and stored run lookups. It never mutates worker state except
// for the explicit queue clear.
type Server struct {
	echo    *echo.Echo
	cfg     *config.Config
	queue   *queue.Queue
	runRepo summaries.Repository
	logger  logger.Logger
}

func NewServer(cfg *config.Config, q *queue.Queue, runRepo summaries.Repository, logger logger.Logger) *Server {
	return &Server{
		echo:    echo.New(),
		cfg:     cfg,
		queue:   q,
		runRepo: runRepo,
		logger:  logger,
	}
}

// Run starts the HTTP listener and blocks until it fails or Shutdown is
// called.
func (s *Server) Run() error {
	s.MapHandlers(s.echo)

	s.echo.HideBanner = true
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.Recover())

	server := &http.Server{
		Addr:           s.cfg.Server.Port,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		MaxHeaderBytes: maxHeaderBytes,
	}

	s.logger.Infof("status api listening on %s", s.cfg.Server.Port)
	if err := s.echo.StartServer(server); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
