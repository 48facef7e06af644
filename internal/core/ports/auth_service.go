package ports

import (
	"context"

	"github.com/taskboard/taskboard/internal/core/domain"
)

// RegisterInput carries the data for a new user account. Role defaults to
// developer when empty; an explicit admin role is accepted as-is.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// AuthService issues identities: registration, credential verification and
// signed session tokens. Logout has no server-side counterpart; tokens stay
// valid until their natural expiry.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login returns a signed token embedding {id, email, role} and the
	// sanitized user. Unknown email and wrong password are indistinguishable.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
