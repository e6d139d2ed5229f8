package task

import "context"

type Repository interface {
	Create(ctx context.Context, t *Task) error
	CreateBatch(ctx context.Context, tasks []*Task) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, projectID string) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}
