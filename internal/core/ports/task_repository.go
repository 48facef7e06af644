package ports

import (
	"context"
	"time"

	"github.com/taskboard/taskboard/internal/core/domain"
)

// TaskUpdate is the explicit optional-delta structure for task updates. A nil
// field is left unchanged; the set of non-nil fields is validated against the
// field-level policy before any write. An AssignedTo pointing at the empty
// string clears the assignee.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	StateID     *string
	AssignedTo  *string
	DueDate     *time.Time
}

// Empty reports whether the update carries no recognized fields.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.StateID == nil && u.AssignedTo == nil && u.DueDate == nil
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]*domain.Task, error)
	// ListByProjects returns tasks whose project id is in projectIDs.
	ListByProjects(ctx context.Context, projectIDs []string) ([]*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	Update(ctx context.Context, id string, upd TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
	// DistinctAssignees returns the ids of users assigned to at least one
	// task of the project.
	DistinctAssignees(ctx context.Context, projectID string) ([]string, error)
}
