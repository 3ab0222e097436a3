package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/card"
	"github.com/spigell/jobapply-dashboard/internal/logger"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, newSnapshotResponse(s.ctrl.Snapshot(), nil))
}

func (s *Server) fetch(c *gin.Context) {
	err := s.ctrl.Fetch(c.Request.Context())
	c.JSON(http.StatusOK, newSnapshotResponse(s.ctrl.Snapshot(), err))
}

func (s *Server) match(c *gin.Context) {
	err := s.ctrl.Match(c.Request.Context())
	c.JSON(http.StatusOK, newSnapshotResponse(s.ctrl.Snapshot(), err))
}

func (s *Server) filter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	err := s.ctrl.SetFilterInput(c.Request.Context(), inputString(req.Source), inputString(req.MinScore))
	c.JSON(http.StatusOK, newSnapshotResponse(s.ctrl.Snapshot(), err))
}

// apply starts the request in the background and answers right away; the
// outcome shows up in the card state and the dashboard message.
func (s *Server) apply(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id: " + c.Param("id")})
		return
	}

	view, ok := s.ctrl.Snapshot().FindCard(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job is not visible", "job_id": jobID})
		return
	}

	if view.State.Status.IsActive() {
		c.JSON(http.StatusConflict, gin.H{"error": "application is already in progress", "job_id": jobID})
		return
	}

	log := logger.WithJob(s.logger, view.Job.ID, view.Job.Source, view.Job.Title)

	go func() {
		if _, err := s.ctrl.Apply(s.ctx, jobID); err != nil && !errors.Is(err, card.ErrInFlight) {
			log.Info("background apply failed", zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": card.StatusInFlight,
	})
}
