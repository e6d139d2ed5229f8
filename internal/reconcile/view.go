// Package reconcile is the client-side merge layer of the broadcast
// protocol. A connected client holds one View, feeds every received event
// through Apply, and re-reads its columns from the result. Views are
// owned by a single event loop: reconciliation needs ordering
// independence, not locks.
package reconcile

import (
	"slices"

	"github.com/opsboard/opsboard/internal/broadcast"
	"github.com/opsboard/opsboard/internal/ordering"
	"github.com/opsboard/opsboard/internal/task"
)

// TaskView is one task as the local client renders it: the shared fields
// last seen on the wire plus this user's personal override projection.
// The projection is local-only state; no broadcast event carries it and
// no merge may touch it.
type TaskView struct {
	Task              broadcast.TaskPayload
	PersonalDone      bool
	PersonalSortOrder *float64
}

// EffectiveStatus is the status this user perceives for the task.
func (v *TaskView) EffectiveStatus() string {
	if v.PersonalDone {
		return string(task.StatusDone)
	}
	return v.Task.Status
}

// EffectiveSortOrder is the sort key used for this user's column
// placement.
func (v *TaskView) EffectiveSortOrder() *float64 {
	if v.PersonalSortOrder != nil {
		return v.PersonalSortOrder
	}
	return v.Task.SortOrder
}

// View is one client's local copy of tasks and sessions.
type View struct {
	tasks    map[string]*TaskView
	sessions map[string]broadcast.SessionPayload
}

func NewView() *View {
	return &View{
		tasks:    make(map[string]*TaskView),
		sessions: make(map[string]broadcast.SessionPayload),
	}
}

// Load replaces the whole view from a fresh fetch. This is the
// resynchronization path for clients that may have missed events while
// disconnected; there is no replay.
func (v *View) Load(tasks []broadcast.TaskPayload) {
	v.tasks = make(map[string]*TaskView, len(tasks))
	v.sessions = make(map[string]broadcast.SessionPayload)
	for _, t := range tasks {
		v.tasks[t.ID] = &TaskView{Task: t}
	}
}

// SetOverride installs this user's personal projection for a task.
func (v *View) SetOverride(taskID string, personalDone bool, sortOrder *float64) {
	tv, ok := v.tasks[taskID]
	if !ok {
		return
	}
	tv.PersonalDone = personalDone
	tv.PersonalSortOrder = sortOrder
}

func (v *View) Task(id string) (*TaskView, bool) {
	tv, ok := v.tasks[id]
	return tv, ok
}

func (v *View) Session(id string) (broadcast.SessionPayload, bool) {
	s, ok := v.sessions[id]
	return s, ok
}

func (v *View) TaskCount() int {
	return len(v.tasks)
}

// Apply merges one broadcast event into the view. Every payload carries
// the full post-mutation state of its entity, keyed by the entity's own
// identity, so applying events out of order or twice converges on the
// same result: upserts replace by identity, deletes of absent identities
// are no-ops, and the personal override projection survives untouched.
func (v *View) Apply(ev broadcast.Event) {
	switch p := ev.Payload.(type) {
	case broadcast.TaskCreated:
		v.mergeTask(p.Task)
	case broadcast.TaskUpdated:
		v.mergeTask(p.Task)
	case broadcast.TaskDeleted:
		delete(v.tasks, p.ID)
	case broadcast.SessionStarted:
		v.sessions[p.Session.ID] = p.Session
	case broadcast.SessionPaused:
		v.sessions[p.Session.ID] = p.Session
	case broadcast.SessionStopped:
		v.sessions[p.Session.ID] = p.Session
	}
}

// mergeTask updates shared fields only. An existing view-model keeps its
// override projection; a new one starts without any.
func (v *View) mergeTask(t broadcast.TaskPayload) {
	if tv, ok := v.tasks[t.ID]; ok {
		tv.Task = t
		return
	}
	v.tasks[t.ID] = &TaskView{Task: t}
}

// Column returns the tasks this user places in the given system column,
// in display order: keyed tasks by ascending effective key, unkeyed ones
// after them by creation time.
func (v *View) Column(status string) []*TaskView {
	var col []*TaskView
	for _, tv := range v.tasks {
		if tv.Task.CustomColumnID == nil && tv.EffectiveStatus() == status {
			col = append(col, tv)
		}
	}
	sortColumn(col)
	return col
}

// CustomColumn returns the tasks filed in a custom column, in display
// order.
func (v *View) CustomColumn(columnID string) []*TaskView {
	var col []*TaskView
	for _, tv := range v.tasks {
		if tv.Task.CustomColumnID != nil && *tv.Task.CustomColumnID == columnID {
			col = append(col, tv)
		}
	}
	sortColumn(col)
	return col
}

func sortColumn(col []*TaskView) {
	slices.SortStableFunc(col, func(a, b *TaskView) int {
		return ordering.Compare(a.EffectiveSortOrder(), a.Task.CreatedAt, b.EffectiveSortOrder(), b.Task.CreatedAt)
	})
}
