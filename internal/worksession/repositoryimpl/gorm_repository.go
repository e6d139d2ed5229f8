package repositoryimpl

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/opsboard/opsboard/internal/worksession"
	"github.com/opsboard/opsboard/pkg/cerr"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, s *worksession.WorkSession) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return cerr.WrapStoreWriteError("work session", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*worksession.WorkSession, error) {
	var s worksession.WorkSession
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapStoreReadError("work session", err)
	}
	return &s, nil
}

func (r *GormRepository) FindRunningByAgent(ctx context.Context, agentID string) (*worksession.WorkSession, error) {
	var s worksession.WorkSession
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND state = ?", agentID, worksession.StateRunning).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, cerr.WrapStoreReadError("work session", err)
	}
	return &s, nil
}

func (r *GormRepository) FindPausedByAgentTask(ctx context.Context, agentID, taskID string) (*worksession.WorkSession, error) {
	var s worksession.WorkSession
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND task_id = ? AND state = ?", agentID, taskID, worksession.StatePaused).
		Order("created_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, cerr.WrapStoreReadError("work session", err)
	}
	return &s, nil
}

func (r *GormRepository) ListByTask(ctx context.Context, taskID string) ([]*worksession.WorkSession, error) {
	var sessions []*worksession.WorkSession
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, cerr.WrapStoreReadError("work sessions", err)
	}
	return sessions, nil
}

func (r *GormRepository) MarkPaused(ctx context.Context, id string, accruedSeconds int64, pausedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&worksession.WorkSession{}).
		Where("id = ? AND state = ?", id, worksession.StateRunning).
		Updates(map[string]any{
			"state":           worksession.StatePaused,
			"accrued_seconds": accruedSeconds,
			"paused_at":       pausedAt,
			"updated_at":      pausedAt,
		})
	if res.Error != nil {
		return false, cerr.WrapStoreWriteError("work session", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) MarkResumed(ctx context.Context, id string, runStartedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&worksession.WorkSession{}).
		Where("id = ? AND state = ?", id, worksession.StatePaused).
		Updates(map[string]any{
			"state":          worksession.StateRunning,
			"run_started_at": runStartedAt,
			"paused_at":      nil,
			"updated_at":     runStartedAt,
		})
	if res.Error != nil {
		return false, cerr.WrapStoreWriteError("work session", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) MarkDone(ctx context.Context, id string, from worksession.State, accruedSeconds int64, endedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&worksession.WorkSession{}).
		Where("id = ? AND state = ?", id, from).
		Updates(map[string]any{
			"state":           worksession.StateDone,
			"accrued_seconds": accruedSeconds,
			"ended_at":        endedAt,
			"updated_at":      endedAt,
		})
	if res.Error != nil {
		return false, cerr.WrapStoreWriteError("work session", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) UpdateEditable(ctx context.Context, id string, notes *string, tokenCost *int64) error {
	fields := make(map[string]any, 2)
	if notes != nil {
		fields["notes"] = *notes
	}
	if tokenCost != nil {
		fields["token_cost"] = *tokenCost
	}
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&worksession.WorkSession{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return cerr.WrapStoreWriteError("work session", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "work session not found", nil)
	}
	return nil
}

func (r *GormRepository) SumDoneByTask(ctx context.Context, taskID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&worksession.WorkSession{}).
		Where("task_id = ? AND state = ?", taskID, worksession.StateDone).
		Select("COALESCE(SUM(accrued_seconds), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, cerr.WrapStoreReadError("work session totals", err)
	}
	return total, nil
}

func (r *GormRepository) SumDoneByDay(ctx context.Context, agentID string, from, to time.Time) ([]worksession.PeriodSum, error) {
	return r.sumDoneByPeriod(ctx, "%Y-%m-%d", agentID, from, to)
}

func (r *GormRepository) SumDoneByMonth(ctx context.Context, agentID string, from, to time.Time) ([]worksession.PeriodSum, error) {
	return r.sumDoneByPeriod(ctx, "%Y-%m", agentID, from, to)
}

func (r *GormRepository) sumDoneByPeriod(ctx context.Context, format, agentID string, from, to time.Time) ([]worksession.PeriodSum, error) {
	var sums []worksession.PeriodSum
	q := r.db.WithContext(ctx).Model(&worksession.WorkSession{}).
		Where("state = ? AND ended_at >= ? AND ended_at < ?", worksession.StateDone, from, to)
	if agentID != "" {
		q = q.Where("agent_id = ?", agentID)
	}
	err := q.
		Select("strftime(?, ended_at) AS period, SUM(accrued_seconds) AS seconds", format).
		Group("period").
		Order("period ASC").
		Scan(&sums).Error
	if err != nil {
		return nil, cerr.WrapStoreReadError("work session totals", err)
	}
	return sums, nil
}
