package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskboard/taskboard/internal/core/ports"
)

const projectionTTL = 10 * time.Minute

// ProjectionCache stores the per-project assigned-users aggregation in Redis.
// Key format: projection:assigned:<project_id>
// Entries expire after projectionTTL; refreshes after task mutations rewrite
// them before that in the common case.
type ProjectionCache struct {
	client *redis.Client
}

func NewProjectionCache(client *redis.Client) *ProjectionCache {
	return &ProjectionCache{client: client}
}

// GetAssignedUsers returns the cached projection and whether it was found.
func (p *ProjectionCache) GetAssignedUsers(ctx context.Context, projectID string) ([]ports.UserRef, bool, error) {
	raw, err := p.client.Get(ctx, p.key(projectID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("projection get: %w", err)
	}

	var users []ports.UserRef
	if err := json.Unmarshal(raw, &users); err != nil {
		// A corrupt entry is treated as a miss; the caller recomputes.
		return nil, false, nil
	}
	return users, true, nil
}

func (p *ProjectionCache) SetAssignedUsers(ctx context.Context, projectID string, users []ports.UserRef) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("projection marshal: %w", err)
	}
	if err := p.client.Set(ctx, p.key(projectID), raw, projectionTTL).Err(); err != nil {
		return fmt.Errorf("projection set: %w", err)
	}
	return nil
}

func (p *ProjectionCache) Invalidate(ctx context.Context, projectID string) error {
	if err := p.client.Del(ctx, p.key(projectID)).Err(); err != nil {
		return fmt.Errorf("projection invalidate: %w", err)
	}
	return nil
}

func (p *ProjectionCache) key(projectID string) string {
	return fmt.Sprintf("projection:assigned:%s", projectID)
}
