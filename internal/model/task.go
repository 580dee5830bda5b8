package model

import (
	"time"
)

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority ranks a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a unit of work bound to at most one assignee.
type Task struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Title        string       `json:"title" gorm:"size:120;not null"`
	Description  string       `json:"description" gorm:"size:1000"`
	Status       TaskStatus   `json:"status" gorm:"size:20;not null;default:'TODO';index"`
	Priority     TaskPriority `json:"priority" gorm:"size:20;not null;default:'MEDIUM';index"`
	DueDate      *time.Time   `json:"due_date" gorm:"type:date"`
	AssignedToID *uint        `json:"assigned_to_id" gorm:"index"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	AssignedTo *User          `json:"-" gorm:"foreignKey:AssignedToID"`
	Documents  []TaskDocument `json:"-" gorm:"foreignKey:TaskID"`
}

// IsAssignedTo reports whether the task belongs to the given user.
func (t *Task) IsAssignedTo(userID uint) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// DocumentNames returns the stored file names in upload order.
func (t *Task) DocumentNames() []string {
	names := make([]string, 0, len(t.Documents))
	for _, d := range t.Documents {
		names = append(names, d.Name)
	}
	return names
}
