package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskboard/taskboard/internal/core/domain"
	"github.com/taskboard/taskboard/internal/core/ports"
)

type taskFixture struct {
	users    *stubUserRepo
	projects *stubProjectRepo
	tasks    *stubTaskRepo
	states   *stubStateRepo
	enqueued *stubEnqueuer
	svc      *TaskService

	admin    *domain.User
	owner    *domain.User
	member   *domain.User
	assignee *domain.User
	outsider *domain.User

	project *domain.Project
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	f := &taskFixture{
		users:    newStubUserRepo(),
		projects: newStubProjectRepo(),
		tasks:    newStubTaskRepo(),
		states:   newStubStateRepo(),
		enqueued: &stubEnqueuer{},
	}
	f.svc = NewTaskService(f.tasks, f.projects, f.users, f.states, f.enqueued, zerolog.Nop())

	f.admin = seedUser(t, f.users, "admin@example.com", "Admin", domain.RoleAdmin)
	f.owner = seedUser(t, f.users, "owner@example.com", "Owner", domain.RoleDeveloper)
	f.member = seedUser(t, f.users, "member@example.com", "Member", domain.RoleDeveloper)
	f.assignee = seedUser(t, f.users, "assignee@example.com", "Assignee", domain.RoleDeveloper)
	f.outsider = seedUser(t, f.users, "outsider@example.com", "Outsider", domain.RoleDeveloper)

	project, err := f.projects.Create(context.Background(), &domain.Project{Name: "Launch", OwnerID: f.owner.ID})
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	f.project = project
	if err := f.projects.AddMember(context.Background(), project.ID, f.member.ID); err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	return f
}

func (f *taskFixture) createTask(t *testing.T, assignedTo string) *domain.Task {
	t.Helper()
	task, err := f.svc.Create(context.Background(), asActor(f.owner), ports.CreateTaskInput{
		Title:      "Ship it",
		ProjectID:  f.project.ID,
		StateID:    "s1",
		AssignedTo: assignedTo,
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestTaskService_Create_OwnerAndAdmin(t *testing.T) {
	f := newTaskFixture(t)

	task := f.createTask(t, "")
	if task.Status != domain.DefaultTaskStatus || task.Priority != domain.DefaultTaskPriority {
		t.Fatalf("expected defaults, got status=%s priority=%s", task.Status, task.Priority)
	}
	if task.CreatedBy != f.owner.ID {
		t.Fatalf("unexpected creator: %s", task.CreatedBy)
	}

	if _, err := f.svc.Create(context.Background(), asActor(f.admin), ports.CreateTaskInput{Title: "x", ProjectID: f.project.ID, StateID: "s1"}); err != nil {
		t.Fatalf("admin create failed: %v", err)
	}
	if _, err := f.svc.Create(context.Background(), asActor(f.member), ports.CreateTaskInput{Title: "x", ProjectID: f.project.ID, StateID: "s1"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member create, got %v", err)
	}
}

// The service stamps creation times before the write; the repository stores
// them verbatim.
func TestTaskService_Create_SetsTimestamps(t *testing.T) {
	f := newTaskFixture(t)

	task := f.createTask(t, "")
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps set on create, got created_at=%v updated_at=%v", task.CreatedAt, task.UpdatedAt)
	}

	stored, err := f.tasks.FindByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("find task: %v", err)
	}
	if stored.CreatedAt.IsZero() {
		t.Fatalf("zero created_at persisted")
	}
}

func TestTaskService_Create_ProjectMustExist(t *testing.T) {
	f := newTaskFixture(t)

	if _, err := f.svc.Create(context.Background(), asActor(f.admin), ports.CreateTaskInput{Title: "x", ProjectID: "missing", StateID: "s1"}); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestTaskService_Create_InvalidReferences(t *testing.T) {
	f := newTaskFixture(t)

	if _, err := f.svc.Create(context.Background(), asActor(f.owner), ports.CreateTaskInput{Title: "x", ProjectID: f.project.ID, StateID: "nope"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown state, got %v", err)
	}
	if _, err := f.svc.Create(context.Background(), asActor(f.owner), ports.CreateTaskInput{Title: "x", ProjectID: f.project.ID, StateID: "s1", AssignedTo: "ghost"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown assignee, got %v", err)
	}
}

// Read access is computed from the task's project: members and the owner may
// read, an outsider may not until granted membership.
func TestTaskService_Get_MembershipGate(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, "")

	if _, err := f.svc.Get(context.Background(), asActor(f.outsider), task.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden before membership, got %v", err)
	}

	if err := f.projects.AddMember(context.Background(), f.project.ID, f.outsider.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	view, err := f.svc.Get(context.Background(), asActor(f.outsider), task.ID)
	if err != nil {
		t.Fatalf("expected read after membership, got %v", err)
	}
	if view.StateName != "pending" || view.ProjectName != "Launch" {
		t.Fatalf("unexpected view joins: %+v", view)
	}
}

// A member without assignment has no write grant at all.
func TestTaskService_Update_MemberDenied(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, "")

	if _, err := f.svc.Update(context.Background(), asActor(f.member), task.ID, ports.TaskUpdate{Priority: strptr("high")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestTaskService_Update_OwnerAnyField(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, "")

	updated, err := f.svc.Update(context.Background(), asActor(f.owner), task.ID, ports.TaskUpdate{
		Title:      strptr("Renamed"),
		Priority:   strptr("high"),
		StateID:    strptr("s2"),
		AssignedTo: strptr(f.assignee.ID),
	})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != "Renamed" || updated.Priority != "high" || updated.StateID != "s2" || updated.AssignedTo != f.assignee.ID {
		t.Fatalf("fields not applied: %+v", updated)
	}
}

func TestTaskService_Update_AssigneeSubset(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, f.assignee.ID)

	updated, err := f.svc.Update(context.Background(), asActor(f.assignee), task.ID, ports.TaskUpdate{Status: strptr("done")})
	if err != nil {
		t.Fatalf("assignee status update failed: %v", err)
	}
	if updated.Status != "done" {
		t.Fatalf("status not applied: %s", updated.Status)
	}
}

// An over-broad update from the assignee is denied as a whole: the allowed
// field in the same payload is not persisted either.
func TestTaskService_Update_AssigneeAllOrNothing(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, f.assignee.ID)

	_, err := f.svc.Update(context.Background(), asActor(f.assignee), task.ID, ports.TaskUpdate{
		Status:   strptr("done"),
		Priority: strptr("high"),
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	current, _ := f.tasks.FindByID(context.Background(), task.ID)
	if current.Status != domain.DefaultTaskStatus || current.Priority != domain.DefaultTaskPriority {
		t.Fatalf("fields persisted despite deny: %+v", current)
	}
}

func TestTaskService_Update_NoApplicableFields(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, f.assignee.ID)

	if _, err := f.svc.Update(context.Background(), asActor(f.owner), task.ID, ports.TaskUpdate{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty update, got %v", err)
	}
}

// NotFound must not be masked by Forbidden: an outsider mutating a missing id
// gets 404 semantics, not 403.
func TestTaskService_ExistenceBeforeAuthorization(t *testing.T) {
	f := newTaskFixture(t)

	if _, err := f.svc.Update(context.Background(), asActor(f.outsider), "missing", ports.TaskUpdate{Status: strptr("done")}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), asActor(f.outsider), "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_Delete_OwnerOnly(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, f.assignee.ID)

	if err := f.svc.Delete(context.Background(), asActor(f.assignee), task.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for assignee delete, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), asActor(f.owner), task.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
}

// Non-admin listing only surfaces tasks of accessible projects.
func TestTaskService_List_Filtered(t *testing.T) {
	f := newTaskFixture(t)
	_ = f.createTask(t, "")

	foreign, _ := f.projects.Create(context.Background(), &domain.Project{Name: "Other", OwnerID: f.admin.ID})
	_, _ = f.tasks.Create(context.Background(), &domain.Task{Title: "hidden", ProjectID: foreign.ID, StateID: "s1", CreatedBy: f.admin.ID})

	all, err := f.svc.List(context.Background(), asActor(f.admin))
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks for admin, got %d", len(all))
	}

	visible, err := f.svc.List(context.Background(), asActor(f.member))
	if err != nil {
		t.Fatalf("member list: %v", err)
	}
	if len(visible) != 1 || visible[0].ProjectID != f.project.ID {
		t.Fatalf("expected only accessible project's tasks, got %+v", visible)
	}
}

func TestTaskService_ListByProject(t *testing.T) {
	f := newTaskFixture(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	_, _ = f.tasks.Create(context.Background(), &domain.Task{Title: "later", ProjectID: f.project.ID, StateID: "s3", CreatedBy: f.owner.ID, CreatedAt: base})
	_, _ = f.tasks.Create(context.Background(), &domain.Task{Title: "older", ProjectID: f.project.ID, StateID: "s1", CreatedBy: f.owner.ID, CreatedAt: base})
	_, _ = f.tasks.Create(context.Background(), &domain.Task{Title: "newest", ProjectID: f.project.ID, StateID: "s1", CreatedBy: f.owner.ID, CreatedAt: base.Add(time.Hour)})

	if _, err := f.svc.ListByProject(context.Background(), asActor(f.outsider), f.project.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.ListByProject(context.Background(), asActor(f.member), "missing"); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}

	views, err := f.svc.ListByProject(context.Background(), asActor(f.member), f.project.ID)
	if err != nil {
		t.Fatalf("list by project: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(views))
	}
	// Ordered by the global state order, newest first within a state.
	if views[0].Title != "newest" || views[1].Title != "older" || views[2].Title != "later" {
		t.Fatalf("unexpected task order: %s, %s, %s", views[0].Title, views[1].Title, views[2].Title)
	}
}

// A task whose project has been deleted still resolves its assignee and
// creator names in list views.
func TestTaskService_List_OrphanProjectKeepsUserNames(t *testing.T) {
	f := newTaskFixture(t)
	_, _ = f.tasks.Create(context.Background(), &domain.Task{
		Title:      "stranded",
		ProjectID:  "ghost",
		StateID:    "s1",
		AssignedTo: f.assignee.ID,
		CreatedBy:  f.owner.ID,
	})

	views, err := f.svc.List(context.Background(), asActor(f.admin))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 task, got %d", len(views))
	}
	if views[0].ProjectName != "" {
		t.Fatalf("expected empty project name, got %q", views[0].ProjectName)
	}
	if views[0].AssigneeName != "Assignee" || views[0].CreatorName != "Owner" {
		t.Fatalf("user names not resolved: assignee=%q creator=%q", views[0].AssigneeName, views[0].CreatorName)
	}
}

// Assignment changes schedule a projection refresh for the task's project.
func TestTaskService_ProjectionRefreshEnqueued(t *testing.T) {
	f := newTaskFixture(t)
	task := f.createTask(t, f.assignee.ID)

	if len(f.enqueued.projectIDs) != 1 || f.enqueued.projectIDs[0] != f.project.ID {
		t.Fatalf("expected refresh enqueued on create, got %+v", f.enqueued.projectIDs)
	}

	_, err := f.svc.Update(context.Background(), asActor(f.owner), task.ID, ports.TaskUpdate{AssignedTo: strptr(f.member.ID)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(f.enqueued.projectIDs) != 2 {
		t.Fatalf("expected refresh enqueued on reassignment, got %+v", f.enqueued.projectIDs)
	}
}
