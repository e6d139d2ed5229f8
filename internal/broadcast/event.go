package broadcast

import "time"

const (
	EventTaskCreated      = "task.created"
	EventTaskUpdated      = "task.updated"
	EventTaskDeleted      = "task.deleted"
	EventSessionStarted   = "session.started"
	EventSessionPaused    = "session.paused"
	EventSessionStopped   = "session.stopped"
	EventCompletionNotice = "task.completion_notice"
)

// Payload is one variant of the event payload sum type. Every payload
// carries the full post-mutation state of the fields it describes, so
// consumers can apply events in any order.
type Payload interface {
	Kind() string
}

// Event is an ephemeral, non-persisted broadcast message. It has no
// identity of its own: consumers merge by the payload's primary key.
type Event struct {
	Channel    string
	Name       string
	Payload    Payload
	OccurredAt time.Time
}

// TaskPayload is the shared-field snapshot of a task embedded in task
// lifecycle events. Personal override projections are never part of it.
type TaskPayload struct {
	ID               string
	Status           string
	SortOrder        *float64
	CustomColumnID   *string
	CreatedBy        string
	AssignedTo       string
	AgentStatusLabel string
	Title            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type TaskCreated struct {
	Task TaskPayload
}

func (TaskCreated) Kind() string { return EventTaskCreated }

type TaskUpdated struct {
	Task TaskPayload
}

func (TaskUpdated) Kind() string { return EventTaskUpdated }

type TaskDeleted struct {
	ID string
}

func (TaskDeleted) Kind() string { return EventTaskDeleted }

// SessionPayload is the shared-field snapshot of a work session.
type SessionPayload struct {
	ID             string
	AgentID        string
	TaskID         string
	State          string
	AccruedSeconds int64
	RunStartedAt   time.Time
	EndedAt        *time.Time
}

type SessionStarted struct {
	Session SessionPayload
}

func (SessionStarted) Kind() string { return EventSessionStarted }

type SessionPaused struct {
	Session SessionPayload
}

func (SessionPaused) Kind() string { return EventSessionPaused }

type SessionStopped struct {
	Session SessionPayload
}

func (SessionStopped) Kind() string { return EventSessionStopped }

// CompletionNotice is delivered on the task owner's private channel when
// another actor marks their part of the task finished.
type CompletionNotice struct {
	TaskID    string
	TaskTitle string
	ActorID   string
	OwnerID   string
}

func (CompletionNotice) Kind() string { return EventCompletionNotice }
