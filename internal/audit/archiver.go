package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opsboard/opsboard/pkg/blobstore"
)

// Archiver exports day batches of audit entries to a blob store for
// retention. Export is idempotent per day and never touches the entries
// themselves; the trail in the relational store stays append-only.
type Archiver struct {
	repo  Repository
	store blobstore.Store
}

func NewArchiver(repo Repository, store blobstore.Store) *Archiver {
	return &Archiver{repo: repo, store: store}
}

func archiveKey(day time.Time) string {
	return fmt.Sprintf("audit/%s.yaml", day.Format("2006-01-02"))
}

// ArchiveDay writes the batch for the given day. An existing batch is
// left untouched so re-runs are no-ops.
func (a *Archiver) ArchiveDay(ctx context.Context, day time.Time) error {
	day = Day(day)
	key := archiveKey(day)

	exists, err := a.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check archive %s: %w", key, err)
	}
	if exists {
		return nil
	}

	entries, err := a.repo.ListByDay(ctx, day)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal audit batch: %w", err)
	}
	if err := a.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write archive %s: %w", key, err)
	}
	slog.Info("audit: archived day batch", "day", day.Format("2006-01-02"), "entries", len(entries))
	return nil
}
