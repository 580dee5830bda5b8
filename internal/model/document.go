package model

import "time"

// TaskDocument is one stored PDF attached to a task. Position keeps the
// upload order within the task.
type TaskDocument struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TaskID    uint      `json:"task_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Position  int       `json:"position" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
