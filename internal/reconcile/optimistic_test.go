package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/broadcast"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	v := NewView()
	v.Apply(event(broadcast.TaskCreated{Task: payload("t1", "TODO", f(100), t0)}))

	snap, ok := v.SnapshotTask("t1")
	require.True(t, ok)

	v.ApplyMove("t1", "IN_PROGRESS", nil, 2000)
	tv, _ := v.Task("t1")
	assert.Equal(t, "IN_PROGRESS", tv.Task.Status)
	assert.Equal(t, 2000.0, *tv.Task.SortOrder)

	// The server rejected the move: the card goes back exactly where the
	// snapshot saw it.
	v.Restore(snap)
	tv, _ = v.Task("t1")
	assert.Equal(t, "TODO", tv.Task.Status)
	require.NotNil(t, tv.Task.SortOrder)
	assert.Equal(t, 100.0, *tv.Task.SortOrder)
	assert.Nil(t, tv.Task.CustomColumnID)
}

func TestSnapshotOfUnknownTask(t *testing.T) {
	v := NewView()
	_, ok := v.SnapshotTask("missing")
	assert.False(t, ok)
}

func TestRestoreOfZeroSnapshotIsNoOp(t *testing.T) {
	v := NewView()
	v.Apply(event(broadcast.TaskCreated{Task: payload("t1", "TODO", f(100), t0)}))

	v.Restore(Snapshot{})

	tv, _ := v.Task("t1")
	assert.Equal(t, "TODO", tv.Task.Status)
	assert.Equal(t, 100.0, *tv.Task.SortOrder)
}

func TestRestoreAfterTaskDeletedIsNoOp(t *testing.T) {
	v := NewView()
	v.Apply(event(broadcast.TaskCreated{Task: payload("t1", "TODO", f(100), t0)}))
	snap, ok := v.SnapshotTask("t1")
	require.True(t, ok)

	v.Apply(event(broadcast.TaskDeleted{ID: "t1"}))
	v.Restore(snap)

	_, found := v.Task("t1")
	assert.False(t, found)
}

func TestApplyMoveIntoCustomColumnKeepsStatus(t *testing.T) {
	colID := "col-1"
	v := NewView()
	v.Apply(event(broadcast.TaskCreated{Task: payload("t1", "IN_PROGRESS", nil, t0)}))

	v.ApplyMove("t1", "", &colID, 0)

	tv, _ := v.Task("t1")
	assert.Equal(t, "IN_PROGRESS", tv.Task.Status)
	require.NotNil(t, tv.Task.CustomColumnID)
	assert.Equal(t, colID, *tv.Task.CustomColumnID)
}

func TestConfirmReplacesOptimisticGuess(t *testing.T) {
	v := NewView()
	v.Apply(event(broadcast.TaskCreated{Task: payload("t1", "TODO", f(100), t0)}))
	v.SetOverride("t1", false, f(42))

	v.ApplyMove("t1", "IN_PROGRESS", nil, 2000)
	// The server accepted but computed a different key.
	v.Confirm(payload("t1", "IN_PROGRESS", f(1000), t0))

	tv, _ := v.Task("t1")
	assert.Equal(t, "IN_PROGRESS", tv.Task.Status)
	assert.Equal(t, 1000.0, *tv.Task.SortOrder)
	// Confirmation is just another merge: the override projection stays.
	require.NotNil(t, tv.PersonalSortOrder)
	assert.Equal(t, 42.0, *tv.PersonalSortOrder)
}

func TestSnapshotIsIsolatedFromLaterMutation(t *testing.T) {
	v := NewView()
	v.Apply(event(broadcast.TaskCreated{Task: payload("t1", "TODO", f(100), t0)}))
	snap, ok := v.SnapshotTask("t1")
	require.True(t, ok)

	// Mutating the live row must not bleed into the snapshot copy.
	tv, _ := v.Task("t1")
	*tv.Task.SortOrder = 999

	v.Restore(snap)
	tv, _ = v.Task("t1")
	assert.Equal(t, 100.0, *tv.Task.SortOrder)
}
