package domain

import "time"

// Default values applied when a task is created without them.
const (
	DefaultTaskStatus   = "pending"
	DefaultTaskPriority = "medium"
)

// Task belongs to exactly one project and references exactly one workflow
// state from the global state set. AssignedTo is empty for unassigned tasks.
// CreatedBy is immutable. Status and Priority are free text.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ProjectID   string     `json:"project_id"`
	StateID     string     `json:"state_id"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	CreatedBy   string     `json:"created_by"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
