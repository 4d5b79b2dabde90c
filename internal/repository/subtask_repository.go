package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-engine/internal/model"
)

// SubtaskRepository handles persistence for subtasks.
type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID int64) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("id ASC").Find(&subtasks).Error; err != nil {
		return nil, fmt.Errorf("list subtasks of task %d: %w", taskID, err)
	}
	return subtasks, nil
}

func (r *SubtaskRepository) InsertMany(ctx context.Context, subtasks []model.Subtask) error {
	if len(subtasks) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&subtasks).Error; err != nil {
		return fmt.Errorf("create subtasks: %w", err)
	}
	return nil
}
