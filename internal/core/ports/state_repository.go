package ports

import (
	"context"

	"github.com/taskboard/taskboard/internal/core/domain"
)

// StateRepository defines persistence for the global ordered workflow states.
type StateRepository interface {
	// List returns all states ordered by their order index.
	List(ctx context.Context) ([]*domain.State, error)
	FindByID(ctx context.Context, id string) (*domain.State, error)
	// Seed inserts the given states only when the collection is empty.
	Seed(ctx context.Context, states []domain.State) error
}
