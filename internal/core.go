// Package internal wires the synchronization core. The embedding web
// layer constructs one Core per process and invokes the services
// directly; there is no transport or CLI in this module.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gorm.io/gorm"

	"github.com/opsboard/opsboard/internal/audit"
	auditrepo "github.com/opsboard/opsboard/internal/audit/repositoryimpl"
	"github.com/opsboard/opsboard/internal/automation"
	"github.com/opsboard/opsboard/internal/broadcast"
	"github.com/opsboard/opsboard/internal/config"
	"github.com/opsboard/opsboard/internal/override"
	overriderepo "github.com/opsboard/opsboard/internal/override/repositoryimpl"
	"github.com/opsboard/opsboard/internal/pushnotification"
	"github.com/opsboard/opsboard/internal/pushsubscription"
	pushsubrepo "github.com/opsboard/opsboard/internal/pushsubscription/repositoryimpl"
	"github.com/opsboard/opsboard/internal/storage"
	"github.com/opsboard/opsboard/internal/task"
	taskrepo "github.com/opsboard/opsboard/internal/task/repositoryimpl"
	"github.com/opsboard/opsboard/internal/worksession"
	sessionrepo "github.com/opsboard/opsboard/internal/worksession/repositoryimpl"
	"github.com/opsboard/opsboard/pkg/blobstore"
	"github.com/opsboard/opsboard/pkg/clock"
	"github.com/opsboard/opsboard/pkg/clog"
)

// SetupLogger installs the process-wide slog logger: human-readable text
// locally, JSON elsewhere, both enriched with context attributes.
func SetupLogger(env *config.Env) {
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))
}

type Core struct {
	Tasks      *task.Service
	Sessions   *worksession.Service
	Overrides  *override.Service
	Automation *automation.Gateway
	Hub        *broadcast.Hub
	Push       *pushnotification.Sender
	Audit      audit.Repository
	Archiver   *audit.Archiver

	db *gorm.DB
}

func NewCore(ctx context.Context, env *config.Env) (*Core, error) {
	db, err := storage.Open(env.DBEnv.Path)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(db,
		&task.Task{},
		&worksession.WorkSession{},
		&override.Override{},
		&audit.Entry{},
		&pushsubscription.Subscription{},
	); err != nil {
		return nil, err
	}

	archiveStore, err := newArchiveStore(ctx, config.ArchiveEnvFromEnv(env))
	if err != nil {
		return nil, err
	}

	return newCore(db, env, archiveStore, clock.SystemClock{}), nil
}

func newCore(db *gorm.DB, env *config.Env, archiveStore blobstore.Store, clk clock.Clock) *Core {
	hub := broadcast.NewHub()
	auditRepo := auditrepo.NewGormRepository(db)
	recorder := audit.NewRecorder(auditRepo, clk)

	tasks := task.NewService(taskrepo.NewGormRepository(db), recorder, hub, clk)
	sessions := worksession.NewService(sessionrepo.NewGormRepository(db), tasks, recorder, hub, clk)

	sender := pushnotification.NewSender(config.VAPIDEnvFromEnv(env), pushsubrepo.NewGormRepository(db))
	dispatcher := pushnotification.NewDispatcher(sender)
	overrides := override.NewService(overriderepo.NewGormRepository(db), tasks, hub, dispatcher, clk)

	return &Core{
		Tasks:      tasks,
		Sessions:   sessions,
		Overrides:  overrides,
		Automation: automation.NewGateway(sessions, tasks),
		Hub:        hub,
		Push:       sender,
		Audit:      auditRepo,
		Archiver:   audit.NewArchiver(auditRepo, archiveStore),
		db:         db,
	}
}

func newArchiveStore(ctx context.Context, env *config.ArchiveEnv) (blobstore.Store, error) {
	switch env.Type {
	case "s3":
		return blobstore.NewS3(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
	case "local", "":
		return blobstore.NewLocal(env.BaseDir)
	default:
		return nil, fmt.Errorf("unknown archive storage type %q", env.Type)
	}
}
