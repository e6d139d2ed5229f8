package automation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/audit"
	auditrepo "github.com/opsboard/opsboard/internal/audit/repositoryimpl"
	"github.com/opsboard/opsboard/internal/automation"
	"github.com/opsboard/opsboard/internal/broadcast"
	"github.com/opsboard/opsboard/internal/identity"
	"github.com/opsboard/opsboard/internal/storage"
	"github.com/opsboard/opsboard/internal/task"
	taskrepo "github.com/opsboard/opsboard/internal/task/repositoryimpl"
	"github.com/opsboard/opsboard/internal/worksession"
	sessionrepo "github.com/opsboard/opsboard/internal/worksession/repositoryimpl"
	"github.com/opsboard/opsboard/pkg/cerr"
	"github.com/opsboard/opsboard/pkg/clock"
)

var (
	robot = identity.Actor{ID: "automation", Kind: identity.KindAutomation}
	human = identity.Actor{ID: "user-1", Kind: identity.KindUser}
)

func newGateway(t *testing.T) (*automation.Gateway, *task.Service) {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db, &task.Task{}, &worksession.WorkSession{}, &audit.Entry{}))

	clk := clock.NewFakeClock(time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC))
	hub := broadcast.NewHub()
	recorder := audit.NewRecorder(auditrepo.NewGormRepository(db), clk)
	tasks := task.NewService(taskrepo.NewGormRepository(db), recorder, hub, clk)
	sessions := worksession.NewService(sessionrepo.NewGormRepository(db), tasks, recorder, hub, clk)
	return automation.NewGateway(sessions, tasks), tasks
}

func TestGatewayRejectsNonAutomationActors(t *testing.T) {
	g, _ := newGateway(t)
	ctx := context.Background()

	_, err := g.StartSession(ctx, human, "agent-1", "task-1")
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
	_, err = g.PauseSession(ctx, human, "sess-1")
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
	_, err = g.StopSession(ctx, human, "sess-1")
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
	_, err = g.SetAgentStatusLabel(ctx, human, "task-1", "label")
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
	_, err = g.BulkCreateTasks(ctx, human, []byte("tasks:\n  - title: x\n"))
	assert.True(t, cerr.IsCode(err, cerr.PermissionDenied))
}

func TestGatewayDrivesSessionLifecycle(t *testing.T) {
	g, tasks := newGateway(t)
	ctx := context.Background()

	created, err := tasks.Create(ctx, human, task.CreateRequest{Title: "automated work"})
	require.NoError(t, err)

	sess, err := g.StartSession(ctx, robot, "agent-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, worksession.StateRunning, sess.State)

	sess, err = g.PauseSession(ctx, robot, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, worksession.StatePaused, sess.State)

	sess, err = g.StopSession(ctx, robot, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, worksession.StateDone, sess.State)
}

func TestGatewayBulkCreatesManifestTasks(t *testing.T) {
	g, tasks := newGateway(t)
	ctx := context.Background()

	created, err := g.BulkCreateTasks(ctx, robot, []byte(`
project_id: proj-1
tasks:
  - title: first
  - title: second
    assigned_to: agent-2
`))
	require.NoError(t, err)
	require.Len(t, created, 2)

	listed, err := tasks.List(ctx, "proj-1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	for _, tk := range listed {
		assert.Equal(t, task.StatusTodo, tk.Status)
		assert.Equal(t, robot.ID, tk.CreatedBy)
	}
}

func TestGatewaySetsAgentStatusLabel(t *testing.T) {
	g, tasks := newGateway(t)
	ctx := context.Background()

	created, err := tasks.Create(ctx, human, task.CreateRequest{Title: "labelled"})
	require.NoError(t, err)

	got, err := g.SetAgentStatusLabel(ctx, robot, created.ID, "running tests")
	require.NoError(t, err)
	assert.Equal(t, "running tests", got.AgentStatusLabel)
}
