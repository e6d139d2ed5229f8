package pushnotification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opsboard/opsboard/internal/broadcast"
	"github.com/opsboard/opsboard/pkg/panicerr"
)

// Dispatcher turns core notices into web pushes. It implements
// override.Notifier.
type Dispatcher struct {
	sender *Sender
}

func NewDispatcher(sender *Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// CompletionNotice notifies a task owner that another actor flagged their
// part of the task finished and the task moved to review. Runs on the
// mutation path, so even a panic in push delivery is contained here.
func (d *Dispatcher) CompletionNotice(ctx context.Context, notice broadcast.CompletionNotice) {
	err := panicerr.SafeContext(func(ctx context.Context) error {
		d.sender.SendToUser(ctx, notice.OwnerID, &NotificationPayload{
			Title: "Ready for review",
			Body:  notice.TaskTitle,
			URL:   fmt.Sprintf("/tasks/%s", notice.TaskID),
			Tag:   notice.TaskID,
		})
		return nil
	})(ctx)
	if err != nil {
		slog.Error("push notification: completion notice dispatch panicked", "task_id", notice.TaskID, "error", err)
	}
}
