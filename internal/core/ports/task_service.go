package ports

import (
	"context"
	"time"

	"github.com/taskboard/taskboard/internal/core/domain"
	"github.com/taskboard/taskboard/internal/core/policy"
)

// CreateTaskInput carries the data for a new task. Status and Priority fall
// back to the domain defaults when empty.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	ProjectID   string
	StateID     string
	AssignedTo  string
	DueDate     *time.Time
}

// TaskView is the read-side shape for task queries: the task joined with the
// names of its state, project, assignee and creator.
type TaskView struct {
	domain.Task
	StateName    string `json:"state_name"`
	ProjectName  string `json:"project_name"`
	AssigneeName string `json:"assigned_to_name,omitempty"`
	CreatorName  string `json:"created_by_name"`
}

// TaskService exposes task CRUD under the layered permission model. All
// id-scoped mutations check existence, then authorization, then field
// validity, in that order.
type TaskService interface {
	Create(ctx context.Context, actor policy.Actor, input CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, actor policy.Actor, id string) (*TaskView, error)
	List(ctx context.Context, actor policy.Actor) ([]*TaskView, error)
	ListByProject(ctx context.Context, actor policy.Actor, projectID string) ([]*TaskView, error)
	Update(ctx context.Context, actor policy.Actor, id string, upd TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
}
