package ports

import (
	"context"

	"github.com/taskboard/taskboard/internal/core/domain"
)

// UserUpdate is an explicit set of optional deltas: a nil field means
// "leave unchanged". Repositories apply only the non-nil fields atomically.
type UserUpdate struct {
	Email *string
	Name  *string
	Role  *string
}

// Empty reports whether the update carries no recognized fields.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Name == nil && u.Role == nil
}

// UserRepository defines persistence operations for user records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
