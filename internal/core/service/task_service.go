package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/taskboard/internal/core/domain"
	"github.com/taskboard/taskboard/internal/core/policy"
	"github.com/taskboard/taskboard/internal/core/ports"
)

// TaskService implements task CRUD under the layered permission model. For
// every id-scoped mutation the checks run in a fixed order: existence first,
// then authorization, then field validation, then the write. Existence before
// authorization keeps a Forbidden answer from masking a missing resource and
// vice versa.
type TaskService struct {
	tasks    ports.TaskRepository
	projects ports.ProjectRepository
	users    ports.UserRepository
	states   ports.StateRepository
	enqueue  ports.ProjectionEnqueuer
	logger   zerolog.Logger
}

func NewTaskService(
	tasks ports.TaskRepository,
	projects ports.ProjectRepository,
	users ports.UserRepository,
	states ports.StateRepository,
	enqueue ports.ProjectionEnqueuer,
	logger zerolog.Logger,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		users:    users,
		states:   states,
		enqueue:  enqueue,
		logger:   logger,
	}
}

// Create stores a new task in the given project. Allowed for admins and the
// project's owner. The project must exist; the state must belong to the
// global state set; an assignee, when given, must be an existing user.
func (s *TaskService) Create(ctx context.Context, actor policy.Actor, input ports.CreateTaskInput) (*domain.Task, error) {
	if input.Title == "" || input.ProjectID == "" || input.StateID == "" {
		return nil, domain.ErrValidation
	}

	project, err := s.projects.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanCreateTask(actor, policy.ProjectSnapshot{ID: project.ID, OwnerID: project.OwnerID}); err != nil {
		return nil, err
	}

	if _, err := s.states.FindByID(ctx, input.StateID); err != nil {
		if errors.Is(err, domain.ErrStateNotFound) {
			return nil, domain.ErrValidation
		}
		return nil, err
	}
	if input.AssignedTo != "" {
		if _, err := s.users.FindByID(ctx, input.AssignedTo); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrValidation
			}
			return nil, err
		}
	}

	status := input.Status
	if status == "" {
		status = domain.DefaultTaskStatus
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.DefaultTaskPriority
	}

	now := time.Now().UTC()
	task, err := s.tasks.Create(ctx, &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		ProjectID:   input.ProjectID,
		StateID:     input.StateID,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   actor.ID,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	if task.AssignedTo != "" {
		s.enqueue.Enqueue(task.ProjectID)
	}
	s.logger.Info().Str("task_id", task.ID).Str("project_id", task.ProjectID).Str("actor_id", actor.ID).Msg("task created")
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, actor policy.Actor, id string) (*ports.TaskView, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.taskSnapshot(ctx, task)
	if err != nil {
		return nil, err
	}
	if err := policy.CanViewTask(actor, snap); err != nil {
		return nil, err
	}

	views, err := s.buildViews(ctx, []*domain.Task{task})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// List returns all tasks for admins; for anyone else only tasks of projects
// where the actor is owner or member.
func (s *TaskService) List(ctx context.Context, actor policy.Actor) ([]*ports.TaskView, error) {
	var (
		tasks []*domain.Task
		err   error
	)
	if actor.IsAdmin() {
		tasks, err = s.tasks.List(ctx)
	} else {
		accessible, aerr := s.projects.ListAccessible(ctx, actor.ID)
		if aerr != nil {
			return nil, aerr
		}
		ids := make([]string, 0, len(accessible))
		for _, p := range accessible {
			ids = append(ids, p.ID)
		}
		tasks, err = s.tasks.ListByProjects(ctx, ids)
	}
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, tasks)
}

// ListByProject returns the project's tasks for actors with access to the
// project, ordered by state order and newest first within a state.
func (s *TaskService) ListByProject(ctx context.Context, actor policy.Actor, projectID string) ([]*ports.TaskView, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	members, err := s.projects.ListMemberIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanViewProject(actor, policy.ProjectSnapshot{ID: project.ID, OwnerID: project.OwnerID, Members: members}); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, tasks)
}

// Update applies the non-nil deltas to the task. Admin and owner may change
// any field; the assignee only description and status, and a request that
// also touches title, priority, state or assignee is denied as a whole. A
// request that leaves no applicable field after the policy gate is a
// validation failure, not a silent no-op.
func (s *TaskService) Update(ctx context.Context, actor policy.Actor, id string, upd ports.TaskUpdate) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.taskSnapshot(ctx, task)
	if err != nil {
		return nil, err
	}

	fields := policy.TaskFields{
		Title:       upd.Title != nil,
		Description: upd.Description != nil,
		Status:      upd.Status != nil,
		Priority:    upd.Priority != nil,
		State:       upd.StateID != nil,
		Assignee:    upd.AssignedTo != nil,
		DueDate:     upd.DueDate != nil,
	}
	if err := policy.CanUpdateTask(actor, snap, fields); err != nil {
		return nil, err
	}

	// A bare assignee's write is narrowed to its granted subset; the policy
	// gate above has already rejected requests touching forbidden fields, so
	// only due date can be dropped here.
	if !actor.IsAdmin() && actor.ID != snap.Project.OwnerID {
		upd = ports.TaskUpdate{Description: upd.Description, Status: upd.Status}
	}
	if upd.Empty() {
		return nil, domain.ErrValidation
	}

	if upd.StateID != nil {
		if _, err := s.states.FindByID(ctx, *upd.StateID); err != nil {
			if errors.Is(err, domain.ErrStateNotFound) {
				return nil, domain.ErrValidation
			}
			return nil, err
		}
	}
	if upd.AssignedTo != nil && *upd.AssignedTo != "" {
		if _, err := s.users.FindByID(ctx, *upd.AssignedTo); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrValidation
			}
			return nil, err
		}
	}

	updated, err := s.tasks.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	if upd.AssignedTo != nil {
		s.enqueue.Enqueue(updated.ProjectID)
	}
	s.logger.Info().Str("task_id", id).Str("actor_id", actor.ID).Msg("task updated")
	return updated, nil
}

// Delete removes the task. Admin or project owner only; the assignee may not
// delete.
func (s *TaskService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	snap, err := s.taskSnapshot(ctx, task)
	if err != nil {
		return err
	}
	if err := policy.CanDeleteTask(actor, snap); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	if task.AssignedTo != "" {
		s.enqueue.Enqueue(task.ProjectID)
	}
	s.logger.Info().Str("task_id", id).Str("actor_id", actor.ID).Msg("task deleted")
	return nil
}

// taskSnapshot loads the project ownership and membership data the policy
// evaluator needs. Access to a task is always derived from its project.
func (s *TaskService) taskSnapshot(ctx context.Context, task *domain.Task) (policy.TaskSnapshot, error) {
	project, err := s.projects.FindByID(ctx, task.ProjectID)
	if err != nil {
		return policy.TaskSnapshot{}, err
	}
	members, err := s.projects.ListMemberIDs(ctx, task.ProjectID)
	if err != nil {
		return policy.TaskSnapshot{}, err
	}
	return policy.TaskSnapshot{
		ID:         task.ID,
		AssigneeID: task.AssignedTo,
		Project:    policy.ProjectSnapshot{ID: project.ID, OwnerID: project.OwnerID, Members: members},
	}, nil
}

// buildViews joins tasks with state, project and user names and sorts the
// result by state order, newest first within a state. A dangling project or
// user reference resolves to an empty name, never an error.
func (s *TaskService) buildViews(ctx context.Context, tasks []*domain.Task) ([]*ports.TaskView, error) {
	stateNames := make(map[string]string)
	stateOrder := make(map[string]int)
	states, err := s.states.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range states {
		stateNames[st.ID] = st.Name
		stateOrder[st.ID] = st.Order
	}

	projectNames := make(map[string]string)
	userNames := make(map[string]string)
	for _, t := range tasks {
		if _, ok := projectNames[t.ProjectID]; !ok {
			switch project, err := s.projects.FindByID(ctx, t.ProjectID); {
			case err == nil:
				projectNames[t.ProjectID] = project.Name
			case errors.Is(err, domain.ErrProjectNotFound):
				projectNames[t.ProjectID] = ""
			default:
				return nil, err
			}
		}
		for _, id := range []string{t.AssignedTo, t.CreatedBy} {
			if id == "" {
				continue
			}
			if _, ok := userNames[id]; ok {
				continue
			}
			user, err := s.users.FindByID(ctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					userNames[id] = ""
					continue
				}
				return nil, err
			}
			userNames[id] = user.Name
		}
	}

	views := make([]*ports.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, &ports.TaskView{
			Task:         *t,
			StateName:    stateNames[t.StateID],
			ProjectName:  projectNames[t.ProjectID],
			AssigneeName: userNames[t.AssignedTo],
			CreatorName:  userNames[t.CreatedBy],
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		if stateOrder[views[i].StateID] != stateOrder[views[j].StateID] {
			return stateOrder[views[i].StateID] < stateOrder[views[j].StateID]
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}
