package domain

import "time"

// Project is a container for tasks. OwnerID references exactly one user and
// is immutable after creation; there is no ownership-transfer operation.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Membership grants a non-owner user read and limited task-write access to a
// project. The (ProjectID, UserID) pair is unique.
type Membership struct {
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
