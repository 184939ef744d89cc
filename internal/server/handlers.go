package server

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Mihailchik/yt-summ/pkg/utils"
)

func (s *Server) MapHandlers(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	v1.GET("/health", func(c echo.Context) error {
		s.logger.Infof("health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "OK",
			"version": s.cfg.Server.AppVersion,
		})
	})

	v1.GET("/queue", s.queueStatus)
	v1.DELETE("/queue", s.queueClear)
	v1.GET("/runs/:run_id", s.getRun)
}

func (s *Server) queueStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.queue.Status())
}

func (s *Server) queueClear(c echo.Context) error {
	cleared := s.queue.Clear()
	s.logger.Infof("queue cleared via api, dropped %d jobs, ip %s", cleared, utils.GetIPAddress(c))
	return c.JSON(http.StatusOK, map[string]int{"cleared": cleared})
}

func (s *Server) getRun(c echo.Context) error {
	if s.runRepo == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "run storage is not configured"})
	}

	runID, err := strconv.ParseInt(c.Param("run_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "run_id must be an integer"})
	}

	record, err := s.runRepo.GetRunByID(c.Request().Context(), runID)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "run not found"})
		}
		s.logger.Errorf("run lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "run lookup failed"})
	}
	return c.JSON(http.StatusOK, record)
}
