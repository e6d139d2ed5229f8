package worksession

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/opsboard/opsboard/internal/audit"
	"github.com/opsboard/opsboard/internal/broadcast"
	"github.com/opsboard/opsboard/internal/identity"
	"github.com/opsboard/opsboard/internal/task"
	"github.com/opsboard/opsboard/pkg/cerr"
	"github.com/opsboard/opsboard/pkg/clock"
)

// Service is the session state machine. It enforces the single active
// session per agent by auto-pausing the previous running session inside
// Start, with conditional store updates instead of locks: a transition
// that loses a race is rejected, never blindly applied.
type Service struct {
	repo     Repository
	tasks    *task.Service
	recorder *audit.Recorder
	hub      *broadcast.Hub
	clock    clock.Clock
}

func NewService(repo Repository, tasks *task.Service, recorder *audit.Recorder, hub *broadcast.Hub, clk clock.Clock) *Service {
	return &Service{
		repo:     repo,
		tasks:    tasks,
		recorder: recorder,
		hub:      hub,
		clock:    clk,
	}
}

// Start begins or resumes work by agentID on taskID. Any other running
// session of the same agent is paused first, accruing against its own
// segment boundary. A paused session for exactly this (agent, task) pair
// is resumed instead of creating a new one.
func (s *Service) Start(ctx context.Context, actor identity.Actor, agentID, taskID string) (*WorkSession, error) {
	if agentID == "" || taskID == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "agent and task are required", nil)
	}
	t, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	prev, err := s.repo.FindRunningByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		// Auto-pause the previous running session. Accrual uses the
		// previous session's own RunStartedAt, so a racing transition on
		// it can at worst double-pause, never double-count.
		accrued := clock.AccrueSeconds(prev.AccruedSeconds, prev.RunStartedAt, now)
		applied, err := s.repo.MarkPaused(ctx, prev.ID, accrued, now)
		if err != nil {
			return nil, err
		}
		if applied {
			s.recordStateChange(ctx, actor, prev.ID, StateRunning, StatePaused)
			s.recordAccrual(ctx, actor, prev.ID, prev.AccruedSeconds, accrued)
			paused := *prev
			paused.State = StatePaused
			paused.AccruedSeconds = accrued
			paused.PausedAt = &now
			s.hub.Publish(broadcast.TaskChannel(paused.TaskID), broadcast.SessionPaused{Session: paused.ToPayload()})
		}
	}

	sess, err := s.repo.FindPausedByAgentTask(ctx, agentID, taskID)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		applied, err := s.repo.MarkResumed(ctx, sess.ID, now)
		if err != nil {
			return nil, err
		}
		if !applied {
			return nil, cerr.NewError(cerr.FailedPrecondition, "session state changed concurrently, re-fetch and retry", nil)
		}
		s.recordStateChange(ctx, actor, sess.ID, StatePaused, StateRunning)
		sess.State = StateRunning
		sess.RunStartedAt = now
		sess.PausedAt = nil
		sess.UpdatedAt = now
	} else {
		sess = &WorkSession{
			ID:           ulid.Make().String(),
			AgentID:      agentID,
			TaskID:       taskID,
			State:        StateRunning,
			RunStartedAt: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.Create(ctx, sess); err != nil {
			return nil, err
		}
		s.recordStateChange(ctx, actor, sess.ID, "", StateRunning)
	}

	// Starting work surfaces in the shared status immediately.
	if t.Status == task.StatusTodo || t.Status == task.StatusReview {
		if _, err := s.tasks.PromoteInProgress(ctx, actor, taskID); err != nil {
			slog.Error("session start: failed to promote task status", "task_id", taskID, "error", err)
		}
	}

	s.hub.Publish(broadcast.TaskChannel(taskID), broadcast.SessionStarted{Session: sess.ToPayload()})
	return sess, nil
}

// Pause closes the current running segment, folding it into
// AccruedSeconds exactly once. Pausing a session that is not running is
// rejected; the caller must re-fetch current state.
func (s *Service) Pause(ctx context.Context, actor identity.Actor, sessionID string) (*WorkSession, error) {
	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State != StateRunning {
		return nil, cerr.NewError(cerr.FailedPrecondition, "session is not running", nil)
	}

	now := s.clock.Now()
	accrued := clock.AccrueSeconds(sess.AccruedSeconds, sess.RunStartedAt, now)
	applied, err := s.repo.MarkPaused(ctx, sess.ID, accrued, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, cerr.NewError(cerr.FailedPrecondition, "session is not running", nil)
	}

	s.recordStateChange(ctx, actor, sess.ID, StateRunning, StatePaused)
	s.recordAccrual(ctx, actor, sess.ID, sess.AccruedSeconds, accrued)

	sess.State = StatePaused
	sess.AccruedSeconds = accrued
	sess.PausedAt = &now
	sess.UpdatedAt = now
	s.hub.Publish(broadcast.TaskChannel(sess.TaskID), broadcast.SessionPaused{Session: sess.ToPayload()})
	return sess, nil
}

// Stop seals the session. A running session accrues its open segment
// first; a paused one keeps its total. The owning task's shared status is
// forced to Done, a terminal one-way promotion.
func (s *Service) Stop(ctx context.Context, actor identity.Actor, sessionID string) (*WorkSession, error) {
	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State == StateDone {
		return nil, cerr.NewError(cerr.FailedPrecondition, "session is already done", nil)
	}

	now := s.clock.Now()
	accrued := sess.AccruedSeconds
	if sess.State == StateRunning {
		accrued = clock.AccrueSeconds(sess.AccruedSeconds, sess.RunStartedAt, now)
	}
	applied, err := s.repo.MarkDone(ctx, sess.ID, sess.State, accrued, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, cerr.NewError(cerr.FailedPrecondition, "session state changed concurrently, re-fetch and retry", nil)
	}

	s.recordStateChange(ctx, actor, sess.ID, sess.State, StateDone)
	if accrued != sess.AccruedSeconds {
		s.recordAccrual(ctx, actor, sess.ID, sess.AccruedSeconds, accrued)
	}

	// The session is sealed at this point; a failure promoting the task
	// must not unseal it, so it is logged rather than returned.
	if _, err := s.tasks.ForceDone(ctx, actor, sess.TaskID); err != nil {
		slog.Error("session stop: failed to promote task to done", "task_id", sess.TaskID, "error", err)
	}

	sess.State = StateDone
	sess.AccruedSeconds = accrued
	sess.EndedAt = &now
	sess.UpdatedAt = now
	s.hub.Publish(broadcast.TaskChannel(sess.TaskID), broadcast.SessionStopped{Session: sess.ToPayload()})
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (*WorkSession, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByTask(ctx context.Context, taskID string) ([]*WorkSession, error) {
	return s.repo.ListByTask(ctx, taskID)
}

// Edit updates the two scalar fields that stay editable on a sealed
// session. Nil leaves a field untouched.
func (s *Service) Edit(ctx context.Context, actor identity.Actor, sessionID string, notes *string, tokenCost *int64) (*WorkSession, error) {
	if notes == nil && tokenCost == nil {
		return nil, cerr.NewError(cerr.InvalidArgument, "nothing to edit", nil)
	}
	if _, err := s.repo.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateEditable(ctx, sessionID, notes, tokenCost); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, sessionID)
}

// InsertCompleted records a historical, already finished unit of work as a
// zero-duration Done session. Administrative path only: it bypasses the
// state machine and has no task status side effect.
func (s *Service) InsertCompleted(ctx context.Context, actor identity.Actor, agentID, taskID, notes string, tokenCost *int64) (*WorkSession, error) {
	if agentID == "" || taskID == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "agent and task are required", nil)
	}
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	sess := &WorkSession{
		ID:           ulid.Make().String(),
		AgentID:      agentID,
		TaskID:       taskID,
		State:        StateDone,
		RunStartedAt: now,
		EndedAt:      &now,
		Notes:        notes,
		TokenCost:    tokenCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.recordStateChange(ctx, actor, sess.ID, "", StateDone)
	return sess, nil
}

// TaskElapsed is the displayed elapsed time of a task: the accrued total
// of all Done sessions plus the live total of any session still open.
func (s *Service) TaskElapsed(ctx context.Context, taskID string) (int64, error) {
	total, err := s.repo.SumDoneByTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	sessions, err := s.repo.ListByTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	for _, sess := range sessions {
		switch sess.State {
		case StateRunning:
			total += clock.LiveSeconds(sess.AccruedSeconds, sess.RunStartedAt, now)
		case StatePaused:
			total += sess.AccruedSeconds
		}
	}
	return total, nil
}

func (s *Service) SumDoneByDay(ctx context.Context, agentID string, from, to time.Time) ([]PeriodSum, error) {
	return s.repo.SumDoneByDay(ctx, agentID, from, to)
}

func (s *Service) SumDoneByMonth(ctx context.Context, agentID string, from, to time.Time) ([]PeriodSum, error) {
	return s.repo.SumDoneByMonth(ctx, agentID, from, to)
}

func (s *Service) recordStateChange(ctx context.Context, actor identity.Actor, sessionID string, from, to State) {
	s.recorder.Record(ctx, actor, audit.EntityKindSession, sessionID, "state", string(from), string(to))
}

func (s *Service) recordAccrual(ctx context.Context, actor identity.Actor, sessionID string, from, to int64) {
	s.recorder.Record(ctx, actor, audit.EntityKindSession, sessionID, "accrued_seconds",
		strconv.FormatInt(from, 10), strconv.FormatInt(to, 10))
}
