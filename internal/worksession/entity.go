package worksession

import (
	"time"

	"github.com/opsboard/opsboard/internal/broadcast"
)

// State of a work session. Transitions only move forward through the
// machine: Running <-> Paused, and either into Done.
type State string

const (
	StateRunning State = "RUNNING"
	StatePaused  State = "PAUSED"
	StateDone    State = "DONE"
)

// WorkSession records one agent's time against one task, accruing duration
// across pause/resume cycles. AccruedSeconds is the durable sum of all
// completed running segments; the currently open segment is measured from
// RunStartedAt and folded in exactly once, on the transition out of
// Running.
type WorkSession struct {
	ID      string `gorm:"primaryKey"`
	AgentID string `gorm:"index:idx_work_sessions_agent_state"`
	TaskID  string `gorm:"index"`
	State   State  `gorm:"index:idx_work_sessions_agent_state"`
	// RunStartedAt marks the beginning of the current running segment.
	// Reset on every resume.
	RunStartedAt   time.Time
	PausedAt       *time.Time
	EndedAt        *time.Time
	AccruedSeconds int64
	Notes          string
	TokenCost      *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (WorkSession) TableName() string {
	return "work_sessions"
}

func (s *WorkSession) ToPayload() broadcast.SessionPayload {
	return broadcast.SessionPayload{
		ID:             s.ID,
		AgentID:        s.AgentID,
		TaskID:         s.TaskID,
		State:          string(s.State),
		AccruedSeconds: s.AccruedSeconds,
		RunStartedAt:   s.RunStartedAt,
		EndedAt:        s.EndedAt,
	}
}
