package model

import "time"

// Notification types emitted by the deadline evaluator.
const (
	TypeUpcomingDeadline = "Upcoming Deadline"
	TypeDeadlineMissed   = "Deadline Missed"
)

// Notification is a recipient-facing event record. At most one unread row may
// exist per (task, employee, type, day offset); the partial unique index
// created in repository.NewDB enforces this at the storage layer.
type Notification struct {
	ID          int64  `gorm:"primaryKey"`
	EmpID       int64  `gorm:"index:idx_notification_recipient"`
	TaskID      int64  `gorm:"index:idx_notification_recipient"`
	Type        string `gorm:"index:idx_notification_recipient"`
	Title       string
	Description string
	DayOffset   int  // days before due date; 0 for missed-deadline rows
	Read        bool `gorm:"default:false"`
	CreatedAt   time.Time
	SentAt      time.Time
}
