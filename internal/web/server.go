package web

import (
	"context"

	"github.com/gin-gonic/gin"

	"task-engine/internal/deadline"
	"task-engine/internal/recurrence"
)

// Orchestrator is the completion trigger the server forwards to.
type Orchestrator interface {
	OnTaskCompleted(ctx context.Context, taskID int64) (*recurrence.Result, error)
}

// Evaluator is the deadline-check trigger the server forwards to.
type Evaluator interface {
	CheckUpcoming(ctx context.Context, force bool) (*deadline.Report, error)
	CheckMissed(ctx context.Context) (*deadline.Report, error)
	Status() deadline.ThrottleStatus
}

// Server exposes the engine's trigger points over HTTP. It is the manual
// counterpart to the cron trigger wired in cmd.
type Server struct {
	orchestrator Orchestrator
	evaluator    Evaluator
	router       *gin.Engine
}

func NewServer(orchestrator Orchestrator, evaluator Evaluator) *Server {
	router := gin.Default()

	s := &Server{
		orchestrator: orchestrator,
		evaluator:    evaluator,
		router:       router,
	}

	api := router.Group("/api")
	{
		api.POST("/tasks/:id/complete", s.handleTaskCompleted)
		api.POST("/deadlines/sweep", s.handleSweep)
		api.POST("/deadlines/missed", s.handleMissed)
		api.GET("/deadlines/status", s.handleStatus)
	}

	return s
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
