package automation

import (
	"context"

	"github.com/opsboard/opsboard/internal/identity"
	"github.com/opsboard/opsboard/internal/task"
	"github.com/opsboard/opsboard/internal/worksession"
	"github.com/opsboard/opsboard/pkg/cerr"
)

// Gateway is the surface exposed to the external automation process. It
// acts as a privileged agent actor: the same session semantics as a human
// plus direct status-label writes and bulk task creation. It holds no
// special concurrency privileges; every call goes through the same state
// machines and invariants.
type Gateway struct {
	sessions *worksession.Service
	tasks    *task.Service
}

func NewGateway(sessions *worksession.Service, tasks *task.Service) *Gateway {
	return &Gateway{
		sessions: sessions,
		tasks:    tasks,
	}
}

func (g *Gateway) requireAutomation(actor identity.Actor) error {
	if actor.Kind != identity.KindAutomation {
		return cerr.NewError(cerr.PermissionDenied, "caller is not the automation process", nil)
	}
	return nil
}

func (g *Gateway) StartSession(ctx context.Context, actor identity.Actor, agentID, taskID string) (*worksession.WorkSession, error) {
	if err := g.requireAutomation(actor); err != nil {
		return nil, err
	}
	return g.sessions.Start(ctx, actor, agentID, taskID)
}

func (g *Gateway) PauseSession(ctx context.Context, actor identity.Actor, sessionID string) (*worksession.WorkSession, error) {
	if err := g.requireAutomation(actor); err != nil {
		return nil, err
	}
	return g.sessions.Pause(ctx, actor, sessionID)
}

func (g *Gateway) StopSession(ctx context.Context, actor identity.Actor, sessionID string) (*worksession.WorkSession, error) {
	if err := g.requireAutomation(actor); err != nil {
		return nil, err
	}
	return g.sessions.Stop(ctx, actor, sessionID)
}

// SetAgentStatusLabel writes the agent-visible label of a task,
// independent of its shared status.
func (g *Gateway) SetAgentStatusLabel(ctx context.Context, actor identity.Actor, taskID, label string) (*task.Task, error) {
	if err := g.requireAutomation(actor); err != nil {
		return nil, err
	}
	return g.tasks.SetAgentStatusLabel(ctx, actor, taskID, label)
}

// BulkCreateTasks creates every task in a YAML manifest in one batch.
func (g *Gateway) BulkCreateTasks(ctx context.Context, actor identity.Actor, manifest []byte) ([]*task.Task, error) {
	if err := g.requireAutomation(actor); err != nil {
		return nil, err
	}
	m, err := ParseManifest(manifest)
	if err != nil {
		return nil, err
	}
	return g.tasks.CreateBatch(ctx, actor, m.createRequests())
}
