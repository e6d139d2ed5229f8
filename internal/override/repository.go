package override

import (
	"context"
	"time"
)

// Repository persists overrides with upsert-on-conflict semantics keyed by
// (user, task). The two Upsert methods are field-targeted: each updates
// only its own column on conflict, so concurrent writes to the other
// field are never clobbered.
type Repository interface {
	Get(ctx context.Context, userID, taskID string) (*Override, error)
	ListByUser(ctx context.Context, userID string) ([]*Override, error)
	UpsertSortOrder(ctx context.Context, userID, taskID string, sortOrder float64, now time.Time) error
	UpsertPersonalDone(ctx context.Context, userID, taskID string, done bool, now time.Time) error
}
