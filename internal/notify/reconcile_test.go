package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quandary-app/quandary/internal/entity"
	"github.com/quandary-app/quandary/internal/store"
)

func TestReconcile_CleanStateIsNoOp(t *testing.T) {
	e, s, clock := setupEngine(t)
	ctx := context.Background()
	seedContent(t, s, clock)

	require.NoError(t, s.Atomic(ctx, func(tx *store.Tx) error {
		if err := tx.AddLike(ctx, "p1", "fan", clock.Now()); err != nil {
			return err
		}
		return e.LikeAdded(ctx, tx, "p1", "fan", "owner")
	}))

	report, err := e.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Created)
	assert.Zero(t, report.Removed)
}

func TestReconcile_CreatesMissingNotification(t *testing.T) {
	e, s, clock := setupEngine(t)
	ctx := context.Background()
	seedContent(t, s, clock)

	// A like without its notification, as if a crash interleaved the
	// legacy non-atomic toggle.
	require.NoError(t, s.AddLike(ctx, "p1", "fan", clock.Now()))

	report, err := e.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Zero(t, report.Removed)

	inbox, err := e.ListByReceiver(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, entity.NotificationLike, inbox[0].Type)
	assert.Equal(t, entity.UserID("fan"), inbox[0].Sender)
}

func TestReconcile_RemovesOrphanedNotification(t *testing.T) {
	e, s, clock := setupEngine(t)
	ctx := context.Background()
	seedContent(t, s, clock)

	// A like notification whose like no longer exists.
	_, err := s.InsertNotification(ctx, entity.Notification{
		ID: "n1", Type: entity.NotificationLike,
		Sender: "fan", Receiver: "owner",
		EntityID: "p1", PostID: "p1", CreatedAt: clock.Now(),
	})
	require.NoError(t, err)

	report, err := e.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Created)
	assert.Equal(t, 1, report.Removed)

	inbox, err := e.ListByReceiver(ctx, "owner")
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestReconcile_RemovesSelfLikeNotification(t *testing.T) {
	e, s, clock := setupEngine(t)
	ctx := context.Background()
	seedContent(t, s, clock)

	// Self-like plus the notification the fan-out rules forbid.
	require.NoError(t, s.AddLike(ctx, "p1", "owner", clock.Now()))
	_, err := s.InsertNotification(ctx, entity.Notification{
		ID: "n1", Type: entity.NotificationLike,
		Sender: "owner", Receiver: "owner",
		EntityID: "p1", PostID: "p1", CreatedAt: clock.Now(),
	})
	require.NoError(t, err)

	report, err := e.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Created)
	assert.Equal(t, 1, report.Removed)
}

func TestReconcile_Idempotent(t *testing.T) {
	e, s, clock := setupEngine(t)
	ctx := context.Background()
	seedContent(t, s, clock)

	require.NoError(t, s.AddLike(ctx, "p1", "fan", clock.Now()))

	first, err := e.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := e.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Removed)
}
