package repositoryimpl

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opsboard/opsboard/internal/pushsubscription"
	"github.com/opsboard/opsboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, s *pushsubscription.Subscription) error {
	// Re-registering an endpoint moves it to the current user.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh_key", "auth_key"}),
	}).Create(s).Error
	if err != nil {
		return cerr.WrapStoreWriteError("push subscription", err)
	}
	return nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]*pushsubscription.Subscription, error) {
	var subs []*pushsubscription.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&subs).Error
	if err != nil {
		return nil, cerr.WrapStoreReadError("push subscriptions", err)
	}
	return subs, nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&pushsubscription.Subscription{}, "id = ?", id).Error; err != nil {
		return cerr.WrapStoreDeleteError("push subscription", err)
	}
	return nil
}

func (r *GormRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	if err := r.db.WithContext(ctx).Delete(&pushsubscription.Subscription{}, "endpoint = ?", endpoint).Error; err != nil {
		return cerr.WrapStoreDeleteError("push subscription", err)
	}
	return nil
}
