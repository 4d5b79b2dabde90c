package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"task-engine/internal/model"
)

// TaskRepository handles persistence for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
	return &task, nil
}

func (r *TaskRepository) Insert(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return nil
}

// FindSuccessor returns the occurrence spawned from the given predecessor, or
// nil when none exists yet.
func (r *TaskRepository) FindSuccessor(ctx context.Context, predecessorID int64) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("predecessor_id = ?", predecessorID).First(&task).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find successor of task %d: %w", predecessorID, err)
	}
}

// ListDueOn returns incomplete tasks due exactly on the given calendar date.
func (r *TaskRepository) ListDueOn(ctx context.Context, date time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("due_date = ? AND status <> ?", date, model.StatusCompleted).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks due on %s: %w", date.Format("2006-01-02"), err)
	}
	return tasks, nil
}

// ListOverdue returns incomplete tasks whose due date is strictly before the
// given date, however far past.
func (r *TaskRepository) ListOverdue(ctx context.Context, before time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("due_date < ? AND status <> ?", before, model.StatusCompleted).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	return tasks, nil
}

// ListSeries returns every occurrence of a recurring series ordered by due date.
func (r *TaskRepository) ListSeries(ctx context.Context, seriesID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("recurrence_series_id = ?", seriesID).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list series %s: %w", seriesID, err)
	}
	return tasks, nil
}
