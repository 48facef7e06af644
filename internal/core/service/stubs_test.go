package service

import (
	"context"
	"fmt"
	"time"

	"github.com/taskboard/taskboard/internal/core/domain"
	"github.com/taskboard/taskboard/internal/core/ports"
)

// In-memory stand-ins for the persistence and cache ports, used by all
// service tests in this package.

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("u%d", r.seq)
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type memberKey struct{ projectID, userID string }

type stubProjectRepo struct {
	projects map[string]*domain.Project
	members  map[memberKey]bool
	seq      int
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{
		projects: make(map[string]*domain.Project),
		members:  make(map[memberKey]bool),
	}
}

func cloneProject(p *domain.Project) *domain.Project {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Create stores the project as given. Timestamps are the caller's concern,
// mirroring the mongo repository, which persists them verbatim.
func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	r.seq++
	clone := cloneProject(p)
	clone.ID = fmt.Sprintf("p%d", r.seq)
	r.projects[clone.ID] = clone
	return cloneProject(clone), nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return cloneProject(p), nil
}

func (r *stubProjectRepo) List(_ context.Context) ([]*domain.Project, error) {
	out := make([]*domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, cloneProject(p))
	}
	return out, nil
}

func (r *stubProjectRepo) ListAccessible(_ context.Context, userID string) ([]*domain.Project, error) {
	out := make([]*domain.Project, 0)
	for _, p := range r.projects {
		if p.OwnerID == userID || r.members[memberKey{p.ID, userID}] {
			out = append(out, cloneProject(p))
		}
	}
	return out, nil
}

func (r *stubProjectRepo) Update(_ context.Context, id string, upd ports.ProjectUpdate) (*domain.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	p.UpdatedAt = time.Now().UTC()
	return cloneProject(p), nil
}

func (r *stubProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *stubProjectRepo) AddMember(_ context.Context, projectID, userID string) error {
	r.members[memberKey{projectID, userID}] = true
	return nil
}

func (r *stubProjectRepo) RemoveMember(_ context.Context, projectID, userID string) error {
	key := memberKey{projectID, userID}
	if !r.members[key] {
		return domain.ErrMemberNotFound
	}
	delete(r.members, key)
	return nil
}

func (r *stubProjectRepo) ListMemberIDs(_ context.Context, projectID string) ([]string, error) {
	out := make([]string, 0)
	for key := range r.members {
		if key.projectID == projectID {
			out = append(out, key.userID)
		}
	}
	return out, nil
}

func (r *stubProjectRepo) ListMemberProjectIDs(_ context.Context, userID string) ([]string, error) {
	out := make([]string, 0)
	for key := range r.members {
		if key.userID == userID {
			out = append(out, key.projectID)
		}
	}
	return out, nil
}

func (r *stubProjectRepo) DeleteMembersByProject(_ context.Context, projectID string) error {
	for key := range r.members {
		if key.projectID == projectID {
			delete(r.members, key)
		}
	}
	return nil
}

type stubTaskRepo struct {
	tasks map[string]*domain.Task
	seq   int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

// Create stores the task as given, timestamps included, like the mongo
// repository does.
func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.seq++
	clone := cloneTask(t)
	clone.ID = fmt.Sprintf("t%d", r.seq)
	r.tasks[clone.ID] = clone
	return cloneTask(clone), nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) List(_ context.Context) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, cloneTask(t))
	}
	return out, nil
}

func (r *stubTaskRepo) ListByProjects(_ context.Context, projectIDs []string) ([]*domain.Task, error) {
	allowed := make(map[string]bool, len(projectIDs))
	for _, id := range projectIDs {
		allowed[id] = true
	}
	out := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if allowed[t.ProjectID] {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

func (r *stubTaskRepo) ListByProject(_ context.Context, projectID string) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if t.ProjectID == projectID {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

func (r *stubTaskRepo) Update(_ context.Context, id string, upd ports.TaskUpdate) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.StateID != nil {
		t.StateID = *upd.StateID
	}
	if upd.AssignedTo != nil {
		t.AssignedTo = *upd.AssignedTo
	}
	if upd.DueDate != nil {
		t.DueDate = upd.DueDate
	}
	t.UpdatedAt = time.Now().UTC()
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) DeleteByProject(_ context.Context, projectID string) error {
	for id, t := range r.tasks {
		if t.ProjectID == projectID {
			delete(r.tasks, id)
		}
	}
	return nil
}

func (r *stubTaskRepo) DistinctAssignees(_ context.Context, projectID string) ([]string, error) {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, t := range r.tasks {
		if t.ProjectID == projectID && t.AssignedTo != "" && !seen[t.AssignedTo] {
			seen[t.AssignedTo] = true
			out = append(out, t.AssignedTo)
		}
	}
	return out, nil
}

type stubStateRepo struct {
	states []*domain.State
}

func newStubStateRepo() *stubStateRepo {
	r := &stubStateRepo{}
	for i, st := range domain.DefaultStates() {
		r.states = append(r.states, &domain.State{ID: fmt.Sprintf("s%d", i+1), Name: st.Name, Order: st.Order})
	}
	return r
}

func (r *stubStateRepo) List(_ context.Context) ([]*domain.State, error) {
	out := make([]*domain.State, len(r.states))
	copy(out, r.states)
	return out, nil
}

func (r *stubStateRepo) FindByID(_ context.Context, id string) (*domain.State, error) {
	for _, st := range r.states {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, domain.ErrStateNotFound
}

func (r *stubStateRepo) Seed(_ context.Context, _ []domain.State) error {
	return nil
}

type stubCache struct {
	data map[string][]ports.UserRef
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]ports.UserRef)}
}

func (c *stubCache) GetAssignedUsers(_ context.Context, projectID string) ([]ports.UserRef, bool, error) {
	refs, ok := c.data[projectID]
	return refs, ok, nil
}

func (c *stubCache) SetAssignedUsers(_ context.Context, projectID string, users []ports.UserRef) error {
	c.data[projectID] = users
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, projectID string) error {
	delete(c.data, projectID)
	return nil
}

type stubEnqueuer struct {
	projectIDs []string
}

func (e *stubEnqueuer) Enqueue(projectID string) {
	e.projectIDs = append(e.projectIDs, projectID)
}
