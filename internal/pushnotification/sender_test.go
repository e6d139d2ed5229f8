package pushnotification_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/config"
	"github.com/opsboard/opsboard/internal/pushnotification"
	"github.com/opsboard/opsboard/internal/pushsubscription"
	pushsubrepo "github.com/opsboard/opsboard/internal/pushsubscription/repositoryimpl"
	"github.com/opsboard/opsboard/internal/storage"
	"github.com/opsboard/opsboard/pkg/cerr"
)

func newSender(t *testing.T) (*pushnotification.Sender, pushsubscription.Repository) {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db, &pushsubscription.Subscription{}))
	repo := pushsubrepo.NewGormRepository(db)
	return pushnotification.NewSender(&config.VAPIDEnv{}, repo), repo
}

func TestRegisterAndUnregister(t *testing.T) {
	sender, repo := newSender(t)
	ctx := context.Background()

	require.NoError(t, sender.Register(ctx, "user-1", "https://push.example/ep1", "p256dh", "auth"))

	subs, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://push.example/ep1", subs[0].Endpoint)

	require.NoError(t, sender.Unregister(ctx, "https://push.example/ep1"))
	subs, err = repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestRegisterRebindsExistingEndpoint(t *testing.T) {
	sender, repo := newSender(t)
	ctx := context.Background()

	require.NoError(t, sender.Register(ctx, "user-1", "https://push.example/ep1", "k1", "a1"))
	require.NoError(t, sender.Register(ctx, "user-2", "https://push.example/ep1", "k2", "a2"))

	subs, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, subs)

	subs, err = repo.ListByUser(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "k2", subs[0].P256dhKey)
}

func TestRegisterRejectsIncompleteSubscription(t *testing.T) {
	sender, _ := newSender(t)
	err := sender.Register(context.Background(), "user-1", "", "k", "a")
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
}

func TestSendToUserWithoutVAPIDKeysIsNoOp(t *testing.T) {
	sender, _ := newSender(t)
	// Must not attempt network delivery when the keys are absent.
	sender.SendToUser(context.Background(), "user-1", &pushnotification.NotificationPayload{Title: "x"})
}
