package reconcile

import "github.com/opsboard/opsboard/internal/broadcast"

// Snapshot captures the fields a drag mutates, taken before the local
// optimistic move. On any server rejection the issuer restores it
// verbatim: tentative apply, confirm or compensate. There is no partial
// correction path.
type Snapshot struct {
	taskID         string
	status         string
	sortOrder      *float64
	customColumnID *string
	taken          bool
}

// SnapshotTask records the pre-move position of a task. The second return
// is false when the task is not in the view.
func (v *View) SnapshotTask(taskID string) (Snapshot, bool) {
	tv, ok := v.tasks[taskID]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		taskID:         taskID,
		status:         tv.Task.Status,
		sortOrder:      copyFloat(tv.Task.SortOrder),
		customColumnID: copyString(tv.Task.CustomColumnID),
		taken:          true,
	}, true
}

// ApplyMove performs the optimistic local move the user just dragged.
func (v *View) ApplyMove(taskID, status string, customColumnID *string, sortOrder float64) {
	tv, ok := v.tasks[taskID]
	if !ok {
		return
	}
	if customColumnID != nil {
		tv.Task.CustomColumnID = copyString(customColumnID)
	} else {
		tv.Task.CustomColumnID = nil
		tv.Task.Status = status
	}
	tv.Task.SortOrder = &sortOrder
}

// Restore puts the dragged task back exactly where the snapshot saw it.
// A no-op for snapshots never taken or tasks that have since vanished.
func (v *View) Restore(snap Snapshot) {
	if !snap.taken {
		return
	}
	tv, ok := v.tasks[snap.taskID]
	if !ok {
		return
	}
	tv.Task.Status = snap.status
	tv.Task.SortOrder = copyFloat(snap.sortOrder)
	tv.Task.CustomColumnID = copyString(snap.customColumnID)
}

// Confirm folds the server's accepted result into the view, replacing the
// optimistic guess with the authoritative row.
func (v *View) Confirm(t broadcast.TaskPayload) {
	v.mergeTask(t)
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
