package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/taskboard/internal/api/metrics"
	"github.com/taskboard/taskboard/internal/core/domain"
	"github.com/taskboard/taskboard/internal/core/policy"
	"github.com/taskboard/taskboard/internal/core/ports"
)

// ProjectService implements project CRUD, membership management and the
// global workflow state list.
type ProjectService struct {
	projects ports.ProjectRepository
	tasks    ports.TaskRepository
	users    ports.UserRepository
	states   ports.StateRepository
	cache    ports.ProjectionCache
	logger   zerolog.Logger
}

func NewProjectService(
	projects ports.ProjectRepository,
	tasks ports.TaskRepository,
	users ports.UserRepository,
	states ports.StateRepository,
	cache ports.ProjectionCache,
	logger zerolog.Logger,
) *ProjectService {
	return &ProjectService{
		projects: projects,
		tasks:    tasks,
		users:    users,
		states:   states,
		cache:    cache,
		logger:   logger,
	}
}

// Create stores a new project. Admin only; the owner must be an existing
// user. No per-project workflow states are provisioned: states are a single
// global list.
func (s *ProjectService) Create(ctx context.Context, actor policy.Actor, input ports.CreateProjectInput) (*domain.Project, error) {
	if err := policy.CanCreateProject(actor); err != nil {
		return nil, err
	}
	if input.Name == "" || input.OwnerID == "" {
		return nil, domain.ErrValidation
	}
	if _, err := s.users.FindByID(ctx, input.OwnerID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrValidation
		}
		return nil, err
	}

	now := time.Now().UTC()
	project, err := s.projects.Create(ctx, &domain.Project{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     input.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("project_id", project.ID).Str("owner_id", project.OwnerID).Msg("project created")
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, actor policy.Actor, id string) (*ports.ProjectView, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.projectSnapshot(ctx, project)
	if err != nil {
		return nil, err
	}
	if err := policy.CanViewProject(actor, snap); err != nil {
		return nil, err
	}
	return s.buildView(ctx, project)
}

// List returns every project for admins. For anyone else the result is
// filtered server-side to projects where the actor is owner or member.
func (s *ProjectService) List(ctx context.Context, actor policy.Actor) ([]*ports.ProjectView, error) {
	var (
		projects []*domain.Project
		err      error
	)
	if actor.IsAdmin() {
		projects, err = s.projects.List(ctx)
	} else {
		projects, err = s.projects.ListAccessible(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	views := make([]*ports.ProjectView, 0, len(projects))
	for _, p := range projects {
		view, err := s.buildView(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ProjectService) Update(ctx context.Context, actor policy.Actor, id string, upd ports.ProjectUpdate) (*domain.Project, error) {
	if _, err := s.projects.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if err := policy.CanMutateProject(actor); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, domain.ErrValidation
	}
	return s.projects.Update(ctx, id, upd)
}

// Delete removes the project together with its tasks and memberships. The
// cascade is three single-statement writes, not a transaction.
func (s *ProjectService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if _, err := s.projects.FindByID(ctx, id); err != nil {
		return err
	}
	if err := policy.CanMutateProject(actor); err != nil {
		return err
	}

	if err := s.tasks.DeleteByProject(ctx, id); err != nil {
		return err
	}
	if err := s.projects.DeleteMembersByProject(ctx, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("project_id", id).Msg("projection invalidate failed")
	}

	s.logger.Info().Str("project_id", id).Str("actor_id", actor.ID).Msg("project deleted")
	return nil
}

// AddMember grants membership. Adding an existing member is a no-op, not a
// conflict.
func (s *ProjectService) AddMember(ctx context.Context, actor policy.Actor, projectID, userID string) error {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return err
	}
	if err := policy.CanMutateProject(actor); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	return s.projects.AddMember(ctx, projectID, userID)
}

func (s *ProjectService) RemoveMember(ctx context.Context, actor policy.Actor, projectID, userID string) error {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return err
	}
	if err := policy.CanMutateProject(actor); err != nil {
		return err
	}
	return s.projects.RemoveMember(ctx, projectID, userID)
}

// ListStates returns the global workflow stages ordered by their order index.
func (s *ProjectService) ListStates(ctx context.Context) ([]*domain.State, error) {
	return s.states.List(ctx)
}

// projectSnapshot loads the membership list the policy evaluator needs.
func (s *ProjectService) projectSnapshot(ctx context.Context, p *domain.Project) (policy.ProjectSnapshot, error) {
	members, err := s.projects.ListMemberIDs(ctx, p.ID)
	if err != nil {
		return policy.ProjectSnapshot{}, err
	}
	return policy.ProjectSnapshot{ID: p.ID, OwnerID: p.OwnerID, Members: members}, nil
}

// buildView joins the project with its owner name and the assigned-users
// projection, reading through the cache.
func (s *ProjectService) buildView(ctx context.Context, p *domain.Project) (*ports.ProjectView, error) {
	view := &ports.ProjectView{Project: *p, AssignedUsers: []ports.UserRef{}}

	if owner, err := s.users.FindByID(ctx, p.OwnerID); err == nil {
		view.OwnerName = owner.Name
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	assigned, err := s.assignedUsers(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	view.AssignedUsers = assigned
	return view, nil
}

func (s *ProjectService) assignedUsers(ctx context.Context, projectID string) ([]ports.UserRef, error) {
	if cached, ok, err := s.cache.GetAssignedUsers(ctx, projectID); err == nil && ok {
		metrics.ProjectionCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("project_id", projectID).Msg("projection cache read failed")
	}
	metrics.ProjectionCacheTotal.WithLabelValues("miss").Inc()

	refs, err := ComputeAssignedUsers(ctx, s.tasks, s.users, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetAssignedUsers(ctx, projectID, refs); err != nil {
		s.logger.Warn().Err(err).Str("project_id", projectID).Msg("projection cache write failed")
	}
	return refs, nil
}

// ComputeAssignedUsers derives the assigned-users projection for a project
// from its tasks. Shared between the read path and the background refresher.
func ComputeAssignedUsers(ctx context.Context, tasks ports.TaskRepository, users ports.UserRepository, projectID string) ([]ports.UserRef, error) {
	ids, err := tasks.DistinctAssignees(ctx, projectID)
	if err != nil {
		return nil, err
	}
	refs := make([]ports.UserRef, 0, len(ids))
	for _, id := range ids {
		user, err := users.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		refs = append(refs, ports.UserRef{ID: user.ID, Name: user.Name})
	}
	return refs, nil
}
