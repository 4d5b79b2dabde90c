package repository

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-engine/internal/model"
)

// NewDB opens a SQLite database, runs migrations and installs the uniqueness
// guards the engine's idempotency depends on.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "task_engine.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(&model.Employee{}, &model.Task{}, &model.Subtask{}, &model.Notification{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	// At most one unread notification per (task, recipient, type, day offset).
	// The evaluator's read-then-write dedup is not atomic; this index is what
	// makes it race-free under concurrent invocation.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_unread_dedup
		ON notifications (task_id, emp_id, type, day_offset) WHERE read = 0`).Error; err != nil {
		return nil, fmt.Errorf("create dedup index: %w", err)
	}

	return db, nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
