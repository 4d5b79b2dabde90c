package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"task-engine/internal/model"
)

// NotificationRepository handles persistence for notifications.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// FindUnread returns the unread notification matching the dedup key, or nil.
// The partial unique index guarantees at most one such row.
func (r *NotificationRepository) FindUnread(ctx context.Context, taskID, empID int64, typ string, dayOffset int) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND emp_id = ? AND type = ? AND day_offset = ? AND read = ?",
			taskID, empID, typ, dayOffset, false).
		First(&n).Error
	switch {
	case err == nil:
		return &n, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find unread notification: %w", err)
	}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// RefreshSentAt bumps the delivery timestamp on an existing row instead of
// creating a duplicate.
func (r *NotificationRepository) RefreshSentAt(ctx context.Context, id int64, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("sent_at", at).Error; err != nil {
		return fmt.Errorf("refresh notification %d: %w", id, err)
	}
	return nil
}

// MarkRead flags a notification as consumed, which releases its dedup slot.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error; err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return nil
}

// ListByEmployee returns a recipient's notifications, newest first.
func (r *NotificationRepository) ListByEmployee(ctx context.Context, empID int64) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := r.db.WithContext(ctx).
		Where("emp_id = ?", empID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("list notifications for emp %d: %w", empID, err)
	}
	return notifications, nil
}
