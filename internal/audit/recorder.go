package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/opsboard/opsboard/internal/identity"
	"github.com/opsboard/opsboard/pkg/clock"
)

// Recorder appends transition entries. Recording is best effort: a failed
// write is logged and swallowed so it can never fail or roll back the
// transition it describes.
type Recorder struct {
	repo  Repository
	clock clock.Clock
}

func NewRecorder(repo Repository, clk clock.Clock) *Recorder {
	return &Recorder{repo: repo, clock: clk}
}

func (r *Recorder) Record(ctx context.Context, actor identity.Actor, entityKind, entityID, field, oldValue, newValue string) {
	entry := &Entry{
		ID:         ulid.Make().String(),
		ActorID:    actor.ID,
		ActorKind:  string(actor.Kind),
		EntityKind: entityKind,
		EntityID:   entityID,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		CreatedAt:  r.clock.Now(),
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		slog.Error("audit: failed to record transition",
			"entity_kind", entityKind,
			"entity_id", entityID,
			"field", field,
			"error", err,
		)
	}
}

// Day truncates t to its calendar day, the granularity archive batches use.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
