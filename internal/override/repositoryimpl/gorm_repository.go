package repositoryimpl

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opsboard/opsboard/internal/override"
	"github.com/opsboard/opsboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var conflictTarget = []clause.Column{{Name: "user_id"}, {Name: "task_id"}}

func (r *GormRepository) Get(ctx context.Context, userID, taskID string) (*override.Override, error) {
	var o override.Override
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, cerr.WrapStoreReadError("personal override", err)
	}
	return &o, nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]*override.Override, error) {
	var overrides []*override.Override
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&overrides).Error
	if err != nil {
		return nil, cerr.WrapStoreReadError("personal overrides", err)
	}
	return overrides, nil
}

func (r *GormRepository) UpsertSortOrder(ctx context.Context, userID, taskID string, sortOrder float64, now time.Time) error {
	row := &override.Override{
		UserID:    userID,
		TaskID:    taskID,
		SortOrder: &sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   conflictTarget,
		DoUpdates: clause.AssignmentColumns([]string{"sort_order", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return cerr.WrapStoreWriteError("personal override", err)
	}
	return nil
}

func (r *GormRepository) UpsertPersonalDone(ctx context.Context, userID, taskID string, done bool, now time.Time) error {
	row := &override.Override{
		UserID:       userID,
		TaskID:       taskID,
		PersonalDone: done,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   conflictTarget,
		DoUpdates: clause.AssignmentColumns([]string{"personal_done", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return cerr.WrapStoreWriteError("personal override", err)
	}
	return nil
}
