// Package policy is the pure access-decision layer. It maps an authenticated
// actor, an operation and a snapshot of the target resource to allow/deny,
// with no I/O: callers load the snapshots, policy only decides.
//
// The permission hierarchy is layered: admin > project owner > project member
// > task assignee. Admin is allowed everything; the lower layers get
// progressively narrower grants.
package policy

import "github.com/taskboard/taskboard/internal/core/domain"

// Actor is the identity reconstructed from a request's session token.
type Actor struct {
	ID    string
	Email string
	Role  string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// ProjectSnapshot is the slice of project state the evaluator needs.
type ProjectSnapshot struct {
	ID      string
	OwnerID string
	Members []string
}

// HasMember reports whether userID holds a membership grant on the project.
func (p ProjectSnapshot) HasMember(userID string) bool {
	for _, id := range p.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// TaskSnapshot carries the task together with its project's ownership and
// membership data. Membership and ownership are always computed from the
// task's project, never from the task itself.
type TaskSnapshot struct {
	ID         string
	AssigneeID string
	Project    ProjectSnapshot
}

// TaskFields records which fields an update request is trying to change.
// It is derived from the optional-delta update struct before any write.
type TaskFields struct {
	Title       bool
	Description bool
	Status      bool
	Priority    bool
	State       bool
	Assignee    bool
	DueDate     bool
}

// restricted reports whether the request touches any field outside the
// description/status subset granted to a bare assignee.
func (f TaskFields) restricted() bool {
	return f.Title || f.Priority || f.State || f.Assignee
}

// CanCreateProject: admin only.
func CanCreateProject(a Actor) error {
	if a.IsAdmin() {
		return nil
	}
	return domain.ErrForbidden
}

// CanMutateProject covers project update, delete and membership management:
// admin only, regardless of ownership.
func CanMutateProject(a Actor) error {
	if a.IsAdmin() {
		return nil
	}
	return domain.ErrForbidden
}

// CanViewProject: admin, the project's owner, or a member.
func CanViewProject(a Actor, p ProjectSnapshot) error {
	if a.IsAdmin() || a.ID == p.OwnerID || p.HasMember(a.ID) {
		return nil
	}
	return domain.ErrForbidden
}

// CanCreateTask: admin or the owner of the task's target project.
func CanCreateTask(a Actor, p ProjectSnapshot) error {
	if a.IsAdmin() || a.ID == p.OwnerID {
		return nil
	}
	return domain.ErrForbidden
}

// CanViewTask: admin, owner or member of the task's project.
func CanViewTask(a Actor, t TaskSnapshot) error {
	return CanViewProject(a, t.Project)
}

// CanUpdateTask: admin and owner may change any field. The assignee may change
// only description and status; a request that also touches title, priority,
// state or assignee is denied as a whole, not filtered down to the allowed
// subset. Everyone else is denied outright, members included.
func CanUpdateTask(a Actor, t TaskSnapshot, f TaskFields) error {
	if a.IsAdmin() || a.ID == t.Project.OwnerID {
		return nil
	}
	if a.ID != "" && a.ID == t.AssigneeID {
		if f.restricted() {
			return domain.ErrForbidden
		}
		return nil
	}
	return domain.ErrForbidden
}

// CanDeleteTask: admin or owner only; the assignee may not delete.
func CanDeleteTask(a Actor, t TaskSnapshot) error {
	if a.IsAdmin() || a.ID == t.Project.OwnerID {
		return nil
	}
	return domain.ErrForbidden
}

// CanListUsers: admin only.
func CanListUsers(a Actor) error {
	if a.IsAdmin() {
		return nil
	}
	return domain.ErrForbidden
}

// CanAccessUser covers read, update and delete of a user record: the user
// themself or an admin.
func CanAccessUser(a Actor, userID string) error {
	if a.IsAdmin() || a.ID == userID {
		return nil
	}
	return domain.ErrForbidden
}

// CanChangeRole: only an admin may change a user's role.
func CanChangeRole(a Actor) error {
	if a.IsAdmin() {
		return nil
	}
	return domain.ErrForbidden
}
