package domain

import "time"

const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
)

// ValidRole reports whether s is one of the known role labels.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleDeveloper
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
