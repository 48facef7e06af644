package ports

import (
	"context"

	"github.com/taskboard/taskboard/internal/core/domain"
)

// ProjectUpdate carries the optional deltas for a project update. OwnerID is
// deliberately absent: ownership is immutable after creation.
type ProjectUpdate struct {
	Name        *string
	Description *string
}

// Empty reports whether the update carries no recognized fields.
func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil
}

// ProjectRepository defines persistence for projects and their memberships.
// Membership rows belong to the project aggregate, so they live behind the
// same interface.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	// ListAccessible returns projects where userID is the owner or a member.
	ListAccessible(ctx context.Context, userID string) ([]*domain.Project, error)
	Update(ctx context.Context, id string, upd ProjectUpdate) (*domain.Project, error)
	Delete(ctx context.Context, id string) error

	// AddMember is idempotent: adding an existing member is a no-op.
	AddMember(ctx context.Context, projectID, userID string) error
	// RemoveMember returns domain.ErrMemberNotFound when the pair is absent.
	RemoveMember(ctx context.Context, projectID, userID string) error
	ListMemberIDs(ctx context.Context, projectID string) ([]string, error)
	// ListMemberProjectIDs returns the ids of projects userID is a member of.
	ListMemberProjectIDs(ctx context.Context, userID string) ([]string, error)
	DeleteMembersByProject(ctx context.Context, projectID string) error
}
