package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"task-engine/internal/recurrence"
)

func (s *Server) handleTaskCompleted(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || taskID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "task id must be a positive integer",
		})
		return
	}

	result, err := s.orchestrator.OnTaskCompleted(c.Request.Context(), taskID)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "task not found",
		})
		return
	case errors.Is(err, recurrence.ErrInvalidPattern):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	resp := gin.H{
		"success": true,
		"outcome": result.Outcome,
	}
	if result.Successor != nil {
		resp["successor_id"] = result.Successor.ID
		resp["next_due"] = result.Successor.DueDate.Format("2006-01-02")
		resp["occurrence"] = result.Successor.RecurrenceCount
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSweep(c *gin.Context) {
	force := c.Query("force") == "true"

	report, err := s.evaluator.CheckUpcoming(c.Request.Context(), force)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"outcome": report.Outcome(),
		"report":  report,
	})
}

func (s *Server) handleMissed(c *gin.Context) {
	report, err := s.evaluator.CheckMissed(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"outcome": report.Outcome(),
		"report":  report,
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	st := s.evaluator.Status()
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"last_run":          st.LastRun,
		"cooldown_seconds":  int(st.Cooldown.Seconds()),
		"remaining_seconds": int(st.Remaining.Seconds()),
		"in_cooldown":       st.Remaining > 0,
	})
}
