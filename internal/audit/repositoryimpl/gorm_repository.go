package repositoryimpl

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/opsboard/opsboard/internal/audit"
	"github.com/opsboard/opsboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, e *audit.Entry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return cerr.WrapStoreWriteError("audit entry", err)
	}
	return nil
}

func (r *GormRepository) ListByEntity(ctx context.Context, entityKind, entityID string) ([]*audit.Entry, error) {
	var entries []*audit.Entry
	err := r.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", entityKind, entityID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, cerr.WrapStoreReadError("audit entries", err)
	}
	return entries, nil
}

func (r *GormRepository) ListByDay(ctx context.Context, day time.Time) ([]*audit.Entry, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	var entries []*audit.Entry
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, cerr.WrapStoreReadError("audit entries", err)
	}
	return entries, nil
}
