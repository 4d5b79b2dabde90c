package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-engine/internal/calendar"
	"task-engine/internal/config"
	"task-engine/internal/deadline"
	"task-engine/internal/recurrence"
	"task-engine/internal/repository"
	"task-engine/internal/schedule"
	"task-engine/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)

	clock := calendar.NewClock()
	throttle := deadline.NewThrottle(clock, cfg.Cooldown)
	evaluator := deadline.NewEvaluator(taskRepo, notificationRepo, employeeRepo, clock, throttle)
	orchestrator := recurrence.NewOrchestrator(taskRepo, subtaskRepo)

	scheduler := schedule.New(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.SweepInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if report, err := evaluator.CheckUpcoming(jobCtx, false); err != nil {
			log.Printf("upcoming sweep: %v", err)
		} else if !report.Skipped {
			log.Printf("upcoming sweep: %s (created %d, duplicates %d)", report.Outcome(), report.Created, report.Duplicates)
		}
		if report, err := evaluator.CheckMissed(jobCtx); err != nil {
			log.Printf("missed sweep: %v", err)
		} else {
			log.Printf("missed sweep: %s (created %d, duplicates %d)", report.Outcome(), report.Created, report.Duplicates)
		}
	}); err != nil {
		log.Fatalf("schedule sweeps: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := web.NewServer(orchestrator, evaluator)
	go func() {
		if err := server.Run(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	log.Printf("Task engine started on %s.", cfg.HTTPAddr)
	<-ctx.Done()
	log.Println("Shutdown complete.")
}
