package repositoryimpl

import (
	"context"

	"gorm.io/gorm"

	"github.com/opsboard/opsboard/internal/task"
	"github.com/opsboard/opsboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, t *task.Task) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return cerr.WrapStoreWriteError("task", err)
	}
	return nil
}

func (r *GormRepository) CreateBatch(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(tasks).Error; err != nil {
		return cerr.WrapStoreWriteError("tasks", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	var t task.Task
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapStoreReadError("task", err)
	}
	return &t, nil
}

func (r *GormRepository) List(ctx context.Context, projectID string) ([]*task.Task, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	var tasks []*task.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, cerr.WrapStoreReadError("tasks", err)
	}
	return tasks, nil
}

func (r *GormRepository) Update(ctx context.Context, t *task.Task) error {
	res := r.db.WithContext(ctx).Model(&task.Task{}).
		Where("id = ?", t.ID).
		Select("*").Omit("id", "created_at").
		Updates(t)
	if res.Error != nil {
		return cerr.WrapStoreWriteError("task", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&task.Task{}, "id = ?", id)
	if res.Error != nil {
		return cerr.WrapStoreDeleteError("task", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "task not found", nil)
	}
	return nil
}
