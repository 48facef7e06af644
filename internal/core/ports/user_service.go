package ports

import (
	"context"

	"github.com/taskboard/taskboard/internal/core/domain"
	"github.com/taskboard/taskboard/internal/core/policy"
)

// UserService exposes user CRUD subject to the self-or-admin policy.
type UserService interface {
	Get(ctx context.Context, actor policy.Actor, id string) (*domain.User, error)
	List(ctx context.Context, actor policy.Actor) ([]*domain.User, error)
	Update(ctx context.Context, actor policy.Actor, id string, upd UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
}
