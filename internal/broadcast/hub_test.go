package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToBoundHandlers(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("tasks")
	defer sub.Close()

	var got []Event
	sub.Bind(EventTaskCreated, func(ev Event) {
		got = append(got, ev)
	})

	h.Publish("tasks", TaskCreated{Task: TaskPayload{ID: "t1"}})

	require.Len(t, got, 1)
	assert.Equal(t, "tasks", got[0].Channel)
	assert.Equal(t, EventTaskCreated, got[0].Name)
	assert.Equal(t, "t1", got[0].Payload.(TaskCreated).Task.ID)
}

func TestBindScopesByEventName(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("tasks")
	defer sub.Close()

	var created, updated int
	sub.Bind(EventTaskCreated, func(Event) { created++ })
	sub.Bind(EventTaskUpdated, func(Event) { updated++ })

	h.Publish("tasks", TaskUpdated{Task: TaskPayload{ID: "t1"}})

	assert.Equal(t, 0, created)
	assert.Equal(t, 1, updated)
}

func TestPublishScopesByChannel(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(TaskChannel("t1"))
	defer sub.Close()

	var calls int
	sub.Bind(EventSessionStarted, func(Event) { calls++ })

	h.Publish(TaskChannel("t2"), SessionStarted{Session: SessionPayload{ID: "s1"}})
	assert.Equal(t, 0, calls)

	h.Publish(TaskChannel("t1"), SessionStarted{Session: SessionPayload{ID: "s1"}})
	assert.Equal(t, 1, calls)
}

func TestUnbindRemovesExactlyOneRegistration(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("tasks")
	defer sub.Close()

	var first, second int
	unbind := sub.Bind(EventTaskCreated, func(Event) { first++ })
	sub.Bind(EventTaskCreated, func(Event) { second++ })

	unbind()
	h.Publish("tasks", TaskCreated{Task: TaskPayload{ID: "t1"}})

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)

	// Unbinding twice is harmless.
	unbind()
}

func TestIndependentSubscriptionsDoNotInterfere(t *testing.T) {
	h := NewHub()
	subA := h.Subscribe("tasks")
	subB := h.Subscribe("tasks")
	defer subB.Close()

	var a, b int
	subA.Bind(EventTaskCreated, func(Event) { a++ })
	subB.Bind(EventTaskCreated, func(Event) { b++ })

	subA.Close()
	h.Publish("tasks", TaskCreated{Task: TaskPayload{ID: "t1"}})

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
}

func TestCloseIsIdempotent(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("tasks")
	sub.Close()
	sub.Close()

	// Bind after close registers nothing.
	var calls int
	unbind := sub.Bind(EventTaskCreated, func(Event) { calls++ })
	unbind()

	h.Publish("tasks", TaskCreated{Task: TaskPayload{ID: "t1"}})
	assert.Equal(t, 0, calls)
}

func TestChannelDroppedAfterLastSubscriptionCloses(t *testing.T) {
	h := NewHub()
	subA := h.Subscribe("tasks")
	subB := h.Subscribe("tasks")

	subA.Close()
	h.mu.RLock()
	_, ok := h.channels["tasks"]
	h.mu.RUnlock()
	assert.True(t, ok)

	subB.Close()
	h.mu.RLock()
	_, ok = h.channels["tasks"]
	h.mu.RUnlock()
	assert.False(t, ok)
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("tasks")
	defer sub.Close()

	var survived int
	sub.Bind(EventTaskCreated, func(Event) { panic("handler bug") })
	sub.Bind(EventTaskCreated, func(Event) { survived++ })

	require.NotPanics(t, func() {
		h.Publish("tasks", TaskCreated{Task: TaskPayload{ID: "t1"}})
	})
	assert.Equal(t, 1, survived)
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	h := NewHub()
	require.NotPanics(t, func() {
		h.Publish("tasks", TaskDeleted{ID: "t1"})
	})
}
