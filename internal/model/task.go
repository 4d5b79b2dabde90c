package model

import (
	"time"

	"gorm.io/datatypes"
)

// Task statuses.
const (
	StatusUnassigned  = "unassigned"
	StatusOngoing     = "ongoing"
	StatusUnderReview = "under_review"
	StatusCompleted   = "completed"
)

// Task represents a single unit of work.
type Task struct {
	ID            int64 `gorm:"primaryKey"`
	ProjectID     int64 `gorm:"index"`
	Title         string
	Description   string
	Priority      int
	Status        string `gorm:"index;default:unassigned"`
	DueDate       time.Time
	OwnerID       int64          `gorm:"index"`
	Collaborators datatypes.JSON // recipient ids, normalized at the evaluator boundary
	AttachmentRef string

	IsRecurring        bool `gorm:"default:false"`
	RecurrencePattern  string
	RecurrenceInterval int
	RecurrenceWeekday  *int // 0-6, Sunday=0; weekly/biweekly only
	RecurrenceEndDate  *time.Time
	RecurrenceCount    int // 1-based occurrence number within the series
	RecurrenceMaxCount int // 0 means uncapped
	RecurrenceSeriesID string `gorm:"index"`

	// PredecessorID links a spawned occurrence to the completed task that
	// produced it. The unique index is the one-successor-per-predecessor guard.
	PredecessorID *int64 `gorm:"uniqueIndex"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
