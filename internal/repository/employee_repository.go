package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-engine/internal/model"
)

// EmployeeRepository is the employee directory.
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Exists(ctx context.Context, empID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Employee{}).Where("id = ?", empID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count employee %d: %w", empID, err)
	}
	return count > 0, nil
}

func (r *EmployeeRepository) Get(ctx context.Context, empID int64) (*model.Employee, error) {
	var emp model.Employee
	if err := r.db.WithContext(ctx).First(&emp, empID).Error; err != nil {
		return nil, fmt.Errorf("find employee %d: %w", empID, err)
	}
	return &emp, nil
}
