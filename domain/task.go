package domain

import "time"

// Task represents a single board item. ColumnID always references a column
// belonging to BoardID.
type Task struct {
	ID          string    `json:"id"`
	BoardID     string    `json:"boardId"`
	ColumnID    string    `json:"columnId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	// EnteredAt is when the task entered its current column. It is derived
	// from UpdatedAt at read and write time and never persisted.
	EnteredAt time.Time `json:"enteredAt"`
}

// TaskDraft carries the caller-supplied fields for a new task.
type TaskDraft struct {
	Title       string
	Description string
	BoardID     string
	ColumnID    string
}
