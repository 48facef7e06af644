package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskboard/taskboard/internal/core/domain"
	"github.com/taskboard/taskboard/internal/core/policy"
	"github.com/taskboard/taskboard/internal/core/ports"
)

// UserService implements user CRUD under the self-or-admin policy.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) Get(ctx context.Context, actor policy.Actor, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAccessUser(actor, id); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, actor policy.Actor) ([]*domain.User, error) {
	if err := policy.CanListUsers(actor); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Update applies the non-nil deltas to the user record. Existence is checked
// before authorization; a role change additionally requires admin.
func (s *UserService) Update(ctx context.Context, actor policy.Actor, id string, upd ports.UserUpdate) (*domain.User, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := policy.CanAccessUser(actor, id); err != nil {
		return nil, err
	}
	if upd.Role != nil {
		if err := policy.CanChangeRole(actor); err != nil {
			return nil, err
		}
		if !domain.ValidRole(*upd.Role) {
			return nil, domain.ErrValidation
		}
	}
	if upd.Empty() {
		return nil, domain.ErrValidation
	}

	user, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Str("actor_id", actor.ID).Msg("user updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := policy.CanAccessUser(actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Str("actor_id", actor.ID).Msg("user deleted")
	return nil
}
