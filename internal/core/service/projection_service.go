package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskboard/taskboard/internal/core/ports"
)

// ProjectionService recomputes the per-project assigned-users projection and
// rewrites the cache. It runs on the background refresh workers, off the
// request path.
type ProjectionService struct {
	tasks  ports.TaskRepository
	users  ports.UserRepository
	cache  ports.ProjectionCache
	logger zerolog.Logger
}

func NewProjectionService(tasks ports.TaskRepository, users ports.UserRepository, cache ports.ProjectionCache, logger zerolog.Logger) *ProjectionService {
	return &ProjectionService{tasks: tasks, users: users, cache: cache, logger: logger}
}

func (s *ProjectionService) Refresh(ctx context.Context, projectID string) error {
	refs, err := ComputeAssignedUsers(ctx, s.tasks, s.users, projectID)
	if err != nil {
		return err
	}
	if err := s.cache.SetAssignedUsers(ctx, projectID, refs); err != nil {
		return err
	}
	s.logger.Debug().Str("project_id", projectID).Int("assigned", len(refs)).Msg("projection refreshed")
	return nil
}
