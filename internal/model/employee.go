package model

import "time"

// Employee is a directory entry; tasks reference employees by id for
// ownership and collaboration.
type Employee struct {
	ID        int64  `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex"`
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
