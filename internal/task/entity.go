package task

import (
	"time"

	"github.com/opsboard/opsboard/internal/broadcast"
)

// Status is the shared task lifecycle state. Every observer eventually
// sees the same value; per-user "done for me" lives in the override layer.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReview     Status = "REVIEW"
	StatusDone       Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          string `gorm:"primaryKey"`
	ProjectID   string `gorm:"index"`
	Title       string
	Description string
	Status      Status `gorm:"index"`
	// SortOrder is the sparse display key within the task's column. Null
	// until the task is first reordered; null keys sort after keyed ones
	// by creation time.
	SortOrder      *float64
	CustomColumnID *string `gorm:"index"`
	CreatedBy      string  `gorm:"index"`
	AssignedTo     string
	// AgentStatusLabel is a free-text label written by the automation
	// process, independent of the shared Status.
	AgentStatusLabel string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Task) TableName() string {
	return "tasks"
}

// Owner-or-assignee is the relationship required for status changes and
// system-column reordering.
func (t *Task) ActorIsOwnerOrAssignee(actorID string) bool {
	return actorID == t.CreatedBy || (t.AssignedTo != "" && actorID == t.AssignedTo)
}

func (t *Task) ToPayload() broadcast.TaskPayload {
	return broadcast.TaskPayload{
		ID:               t.ID,
		Status:           string(t.Status),
		SortOrder:        t.SortOrder,
		CustomColumnID:   t.CustomColumnID,
		CreatedBy:        t.CreatedBy,
		AssignedTo:       t.AssignedTo,
		AgentStatusLabel: t.AgentStatusLabel,
		Title:            t.Title,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}
