package model

import "time"

// Subtask statuses.
const (
	SubtaskNotStarted = "not_started"
	SubtaskOngoing    = "ongoing"
	SubtaskDone       = "done"
)

// Subtask is a checklist item attached to a task.
type Subtask struct {
	ID        int64 `gorm:"primaryKey"`
	TaskID    int64 `gorm:"index"`
	Title     string
	Status    string `gorm:"default:not_started"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
