package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taskboard/taskboard/internal/core/domain"
)

func TestProjectionService_Refresh(t *testing.T) {
	users := newStubUserRepo()
	tasks := newStubTaskRepo()
	cache := newStubCache()
	svc := NewProjectionService(tasks, users, cache, zerolog.Nop())

	dev := seedUser(t, users, "dev@example.com", "Dev", domain.RoleDeveloper)
	_, _ = tasks.Create(context.Background(), &domain.Task{Title: "a", ProjectID: "p1", StateID: "s1", AssignedTo: dev.ID})
	_, _ = tasks.Create(context.Background(), &domain.Task{Title: "b", ProjectID: "p1", StateID: "s1", AssignedTo: "ghost"})

	if err := svc.Refresh(context.Background(), "p1"); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	refs, ok, err := cache.GetAssignedUsers(context.Background(), "p1")
	if err != nil || !ok {
		t.Fatalf("expected cached projection, ok=%v err=%v", ok, err)
	}
	// Ghost assignees with no matching user are skipped.
	if len(refs) != 1 || refs[0].ID != dev.ID || refs[0].Name != "Dev" {
		t.Fatalf("unexpected projection: %+v", refs)
	}
}
