package audit

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	ListByEntity(ctx context.Context, entityKind, entityID string) ([]*Entry, error)
	ListByDay(ctx context.Context, day time.Time) ([]*Entry, error)
}
