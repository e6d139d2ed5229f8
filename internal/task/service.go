package task

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/opsboard/opsboard/internal/audit"
	"github.com/opsboard/opsboard/internal/broadcast"
	"github.com/opsboard/opsboard/internal/identity"
	"github.com/opsboard/opsboard/internal/ordering"
	"github.com/opsboard/opsboard/pkg/cerr"
	"github.com/opsboard/opsboard/pkg/clock"
)

// Service is the command surface over tasks used by the embedding layer,
// the session machine, and the automation gateway.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
	hub      *broadcast.Hub
	clock    clock.Clock
}

func NewService(repo Repository, recorder *audit.Recorder, hub *broadcast.Hub, clk clock.Clock) *Service {
	return &Service{
		repo:     repo,
		recorder: recorder,
		hub:      hub,
		clock:    clk,
	}
}

type CreateRequest struct {
	ProjectID   string
	Title       string
	Description string
	AssignedTo  string
}

func (s *Service) Create(ctx context.Context, actor identity.Actor, req CreateRequest) (*Task, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "task title must not be empty", nil)
	}
	now := s.clock.Now()
	t := &Task{
		ID:          ulid.Make().String(),
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusTodo,
		CreatedBy:   actor.ID,
		AssignedTo:  req.AssignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publish(t.ProjectID, broadcast.TaskCreated{Task: t.ToPayload()})
	return t, nil
}

// publish fans a task event out to the global channel and, for tasks that
// belong to a project, the project-scoped channel.
func (s *Service) publish(projectID string, p broadcast.Payload) {
	s.hub.Publish(broadcast.ChannelTasks, p)
	if projectID != "" {
		s.hub.Publish(broadcast.ProjectChannel(projectID), p)
	}
}

// CreateBatch inserts many tasks in one write. Used by the automation
// gateway's bulk path; validation mirrors Create.
func (s *Service) CreateBatch(ctx context.Context, actor identity.Actor, reqs []CreateRequest) ([]*Task, error) {
	if len(reqs) == 0 {
		return nil, cerr.NewError(cerr.InvalidArgument, "no tasks to create", nil)
	}
	now := s.clock.Now()
	tasks := make([]*Task, 0, len(reqs))
	for _, req := range reqs {
		if strings.TrimSpace(req.Title) == "" {
			return nil, cerr.NewError(cerr.InvalidArgument, "task title must not be empty", nil)
		}
		tasks = append(tasks, &Task{
			ID:          ulid.Make().String(),
			ProjectID:   req.ProjectID,
			Title:       req.Title,
			Description: req.Description,
			Status:      StatusTodo,
			CreatedBy:   actor.ID,
			AssignedTo:  req.AssignedTo,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err := s.repo.CreateBatch(ctx, tasks); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		s.publish(t.ProjectID, broadcast.TaskCreated{Task: t.ToPayload()})
	}
	return tasks, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, projectID string) ([]*Task, error) {
	return s.repo.List(ctx, projectID)
}

// MoveRequest describes a drag/drop within or across columns. Left and
// right are the neighbor tasks at the drop position; an empty ID means the
// column boundary. A nil CustomColumnID targets the system column for
// Status; a non-nil one targets that custom column (Status is then left
// unchanged).
type MoveRequest struct {
	TaskID         string
	Status         Status
	CustomColumnID *string
	LeftTaskID     string
	RightTaskID    string
}

func (s *Service) Move(ctx context.Context, actor identity.Actor, req MoveRequest) (*Task, error) {
	t, err := s.repo.Get(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	if req.CustomColumnID != nil {
		// Custom columns are personal groupings: only the task's owner
		// may file someone else's view of it there.
		if actor.ID != t.CreatedBy {
			return nil, cerr.NewError(cerr.PermissionDenied, "only the task owner can move it into a custom column", nil)
		}
	} else {
		if !req.Status.Valid() {
			return nil, cerr.NewError(cerr.InvalidArgument, "invalid task status", nil)
		}
		if !t.ActorIsOwnerOrAssignee(actor.ID) {
			return nil, cerr.NewError(cerr.PermissionDenied, "only the task owner or assignee can reorder it", nil)
		}
	}

	newKey := ordering.Between(s.neighborKey(ctx, req.LeftTaskID), s.neighborKey(ctx, req.RightTaskID))

	oldStatus := t.Status
	if req.CustomColumnID != nil {
		t.CustomColumnID = req.CustomColumnID
	} else {
		// A move to a system column is a fresh insertion there: any
		// custom-column membership no longer applies.
		t.CustomColumnID = nil
		t.Status = req.Status
	}
	t.SortOrder = &newKey
	t.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	if t.Status != oldStatus {
		s.recorder.Record(ctx, actor, audit.EntityKindTask, t.ID, "status", string(oldStatus), string(t.Status))
	}
	s.publish(t.ProjectID, broadcast.TaskUpdated{Task: t.ToPayload()})
	return t, nil
}

// neighborKey resolves the sort key of a drop-position neighbor. A missing
// or concurrently deleted neighbor degrades to the column boundary; a
// neighbor that was never manually ordered counts as key 0.
func (s *Service) neighborKey(ctx context.Context, taskID string) *float64 {
	if taskID == "" {
		return nil
	}
	n, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return nil
	}
	if n.SortOrder == nil {
		zero := 0.0
		return &zero
	}
	return n.SortOrder
}

func (s *Service) SetStatus(ctx context.Context, actor identity.Actor, taskID string, status Status) (*Task, error) {
	if !status.Valid() {
		return nil, cerr.NewError(cerr.InvalidArgument, "invalid task status", nil)
	}
	t, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !t.ActorIsOwnerOrAssignee(actor.ID) {
		return nil, cerr.NewError(cerr.PermissionDenied, "only the task owner or assignee can change its status", nil)
	}
	return s.transitionStatus(ctx, actor, t, status)
}

// PromoteInProgress moves a Todo or Review task to InProgress. The session
// machine calls this at session start so the shared status reflects that
// someone is actively working.
func (s *Service) PromoteInProgress(ctx context.Context, actor identity.Actor, taskID string) (*Task, error) {
	t, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusTodo && t.Status != StatusReview {
		return t, nil
	}
	return s.transitionStatus(ctx, actor, t, StatusInProgress)
}

// ForceDone is the terminal promotion applied when a work session stops.
// It never moves a task out of Done.
func (s *Service) ForceDone(ctx context.Context, actor identity.Actor, taskID string) (*Task, error) {
	t, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusDone {
		return t, nil
	}
	return s.transitionStatus(ctx, actor, t, StatusDone)
}

// AdvanceToReview promotes a task to Review unless it already reached
// Review or Done. One-way: used by the override layer's "done for me"
// signal. Reports whether the shared status actually changed.
func (s *Service) AdvanceToReview(ctx context.Context, actor identity.Actor, taskID string) (*Task, bool, error) {
	t, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return nil, false, err
	}
	if t.Status == StatusReview || t.Status == StatusDone {
		return t, false, nil
	}
	t, err = s.transitionStatus(ctx, actor, t, StatusReview)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (s *Service) transitionStatus(ctx context.Context, actor identity.Actor, t *Task, status Status) (*Task, error) {
	oldStatus := t.Status
	t.Status = status
	t.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	if status != oldStatus {
		s.recorder.Record(ctx, actor, audit.EntityKindTask, t.ID, "status", string(oldStatus), string(status))
	}
	s.publish(t.ProjectID, broadcast.TaskUpdated{Task: t.ToPayload()})
	return t, nil
}

// SetAgentStatusLabel writes the automation-visible label. Only the
// automation process holds this capability.
func (s *Service) SetAgentStatusLabel(ctx context.Context, actor identity.Actor, taskID, label string) (*Task, error) {
	if actor.Kind != identity.KindAutomation {
		return nil, cerr.NewError(cerr.PermissionDenied, "only the automation process can set the agent status label", nil)
	}
	t, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	old := t.AgentStatusLabel
	t.AgentStatusLabel = label
	t.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	if label != old {
		s.recorder.Record(ctx, actor, audit.EntityKindTask, t.ID, "agent_status_label", old, label)
	}
	s.publish(t.ProjectID, broadcast.TaskUpdated{Task: t.ToPayload()})
	return t, nil
}

func (s *Service) Delete(ctx context.Context, actor identity.Actor, taskID string) error {
	t, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if actor.ID != t.CreatedBy {
		return cerr.NewError(cerr.PermissionDenied, "only the task owner can delete it", nil)
	}
	if err := s.repo.Delete(ctx, taskID); err != nil {
		return err
	}
	s.publish(t.ProjectID, broadcast.TaskDeleted{ID: taskID})
	return nil
}
