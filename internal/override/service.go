package override

import (
	"context"

	"github.com/opsboard/opsboard/internal/broadcast"
	"github.com/opsboard/opsboard/internal/identity"
	"github.com/opsboard/opsboard/internal/task"
	"github.com/opsboard/opsboard/pkg/clock"
)

// Notifier delivers the completion notice raised by the first "done for
// me" on a task someone else owns. Delivery is best effort.
type Notifier interface {
	CompletionNotice(ctx context.Context, notice broadcast.CompletionNotice)
}

type Service struct {
	repo     Repository
	tasks    *task.Service
	hub      *broadcast.Hub
	notifier Notifier
	clock    clock.Clock
}

func NewService(repo Repository, tasks *task.Service, hub *broadcast.Hub, notifier Notifier, clk clock.Clock) *Service {
	return &Service{
		repo:     repo,
		tasks:    tasks,
		hub:      hub,
		notifier: notifier,
		clock:    clk,
	}
}

func (s *Service) Get(ctx context.Context, userID, taskID string) (*Override, error) {
	return s.repo.Get(ctx, userID, taskID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Override, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SetSortOrder records the actor's private sort position for a task.
// Writes only the sort_order field: a concurrent personal-done write to
// the same row is never clobbered.
func (s *Service) SetSortOrder(ctx context.Context, actor identity.Actor, taskID string, sortOrder float64) error {
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		return err
	}
	return s.repo.UpsertSortOrder(ctx, actor.ID, taskID, sortOrder, s.clock.Now())
}

// SetPersonalDone flags the task as done for this actor only. The first
// such flag on a task that has not reached Review advances the shared
// status to Review and notifies the owner (when the actor is not the
// owner). Repeating the call is idempotent: no second promotion, no
// duplicate notice.
func (s *Service) SetPersonalDone(ctx context.Context, actor identity.Actor, taskID string) error {
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return err
	}
	prev, err := s.repo.Get(ctx, actor.ID, taskID)
	if err != nil {
		return err
	}
	alreadyDone := prev != nil && prev.PersonalDone

	if err := s.repo.UpsertPersonalDone(ctx, actor.ID, taskID, true, s.clock.Now()); err != nil {
		return err
	}
	if alreadyDone {
		return nil
	}

	t, changed, err := s.tasks.AdvanceToReview(ctx, actor, taskID)
	if err != nil {
		return err
	}
	if changed && actor.ID != t.CreatedBy {
		notice := broadcast.CompletionNotice{
			TaskID:    t.ID,
			TaskTitle: t.Title,
			ActorID:   actor.ID,
			OwnerID:   t.CreatedBy,
		}
		s.hub.Publish(broadcast.PrivateUserChannel(t.CreatedBy), notice)
		if s.notifier != nil {
			s.notifier.CompletionNotice(ctx, notice)
		}
	}
	return nil
}

// ClearPersonalDone is the undo: it resets only the flag. The row keeps
// its sort order and the shared status is never reverted.
func (s *Service) ClearPersonalDone(ctx context.Context, actor identity.Actor, taskID string) error {
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		return err
	}
	return s.repo.UpsertPersonalDone(ctx, actor.ID, taskID, false, s.clock.Now())
}

// Effective merges a task's shared state with one user's override for
// rendering: the status and sort position that place the card in that
// user's columns. Shared fields are read, never rewritten.
func Effective(t *task.Task, o *Override) (task.Status, *float64) {
	status := t.Status
	sortOrder := t.SortOrder
	if o != nil {
		if o.PersonalDone {
			status = task.StatusDone
		}
		if o.SortOrder != nil {
			sortOrder = o.SortOrder
		}
	}
	return status, sortOrder
}
