package ports

import "context"

// ProjectionCache stores the per-project assigned-users aggregation so list
// endpoints do not recompute it on every request. Entries expire on their own;
// writes after task mutations keep them fresh.
type ProjectionCache interface {
	// GetAssignedUsers returns the cached projection and whether it was found.
	GetAssignedUsers(ctx context.Context, projectID string) ([]UserRef, bool, error)
	SetAssignedUsers(ctx context.Context, projectID string, users []UserRef) error
	Invalidate(ctx context.Context, projectID string) error
}

// ProjectionRefresher recomputes the assigned-users projection for a project
// and rewrites the cache.
type ProjectionRefresher interface {
	Refresh(ctx context.Context, projectID string) error
}

// ProjectionEnqueuer hands a project id to the background refresh queue.
// Implementations must not block the request path.
type ProjectionEnqueuer interface {
	Enqueue(projectID string)
}
