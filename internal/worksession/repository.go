package worksession

import (
	"context"
	"time"
)

// Repository persists work sessions. The Mark* methods are conditional
// single-row updates: they apply only when the row is still in the
// expected state and report whether the precondition held, so racing
// transitions lose cleanly instead of overwriting each other.
type Repository interface {
	Create(ctx context.Context, s *WorkSession) error
	Get(ctx context.Context, id string) (*WorkSession, error)
	FindRunningByAgent(ctx context.Context, agentID string) (*WorkSession, error)
	FindPausedByAgentTask(ctx context.Context, agentID, taskID string) (*WorkSession, error)
	ListByTask(ctx context.Context, taskID string) ([]*WorkSession, error)

	MarkPaused(ctx context.Context, id string, accruedSeconds int64, pausedAt time.Time) (bool, error)
	MarkResumed(ctx context.Context, id string, runStartedAt time.Time) (bool, error)
	MarkDone(ctx context.Context, id string, from State, accruedSeconds int64, endedAt time.Time) (bool, error)
	UpdateEditable(ctx context.Context, id string, notes *string, tokenCost *int64) error

	SumDoneByTask(ctx context.Context, taskID string) (int64, error)
	SumDoneByDay(ctx context.Context, agentID string, from, to time.Time) ([]PeriodSum, error)
	SumDoneByMonth(ctx context.Context, agentID string, from, to time.Time) ([]PeriodSum, error)
}

// PeriodSum is one bucket of an accrued-time aggregate.
type PeriodSum struct {
	Period  string
	Seconds int64
}
