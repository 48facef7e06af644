package ports

import (
	"context"

	"github.com/taskboard/taskboard/internal/core/domain"
	"github.com/taskboard/taskboard/internal/core/policy"
)

// UserRef is a lightweight user projection used in list views.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectView is the read-side shape returned by project queries: the project
// joined with its owner's name and the derived assigned-users projection.
// AssignedUsers is a convenience aggregation, never an authorization input.
type ProjectView struct {
	domain.Project
	OwnerName     string    `json:"owner_name,omitempty"`
	AssignedUsers []UserRef `json:"assigned_users"`
}

// CreateProjectInput carries the data for a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	OwnerID     string
}

// ProjectService exposes project CRUD, membership management and the global
// workflow state list.
type ProjectService interface {
	Create(ctx context.Context, actor policy.Actor, input CreateProjectInput) (*domain.Project, error)
	Get(ctx context.Context, actor policy.Actor, id string) (*ProjectView, error)
	// List returns every project for admins; for anyone else the result is
	// filtered server-side to projects where the actor is owner or member.
	List(ctx context.Context, actor policy.Actor) ([]*ProjectView, error)
	Update(ctx context.Context, actor policy.Actor, id string, upd ProjectUpdate) (*domain.Project, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
	AddMember(ctx context.Context, actor policy.Actor, projectID, userID string) error
	RemoveMember(ctx context.Context, actor policy.Actor, projectID, userID string) error
	ListStates(ctx context.Context) ([]*domain.State, error)
}
