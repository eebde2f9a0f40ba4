// Package notify implements the notification fan-out engine.
//
// Notifications are derived records: content-graph mutations (answer
// creation, like toggles, deletions) fan out into Notification rows in
// the same atomic group as the primary mutation, so a reader never sees
// content without its notification or a notification without its content.
//
// Rules:
//   - self-actions never notify (sender == receiver is suppressed)
//   - at most one active like notification exists per (post, sender,
//     receiver); an unlike removes it, a re-like recreates it
//   - deleting the source entity cascades to its notifications
//
// Per-notification state machine: created unread, marked read only by the
// receiver, deleted by the receiver or by cascade. Deleted is terminal.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/quandary-app/quandary/internal/authz"
	"github.com/quandary-app/quandary/internal/entity"
	"github.com/quandary-app/quandary/internal/idgen"
	"github.com/quandary-app/quandary/internal/store"
)

// Engine derives and manages notifications.
type Engine struct {
	store *store.Store
	guard *authz.Guard
	ids   idgen.Generator
	now   func() time.Time
	log   *slog.Logger
}

// New creates an Engine.
func New(s *store.Store, guard *authz.Guard, ids idgen.Generator, now func() time.Time, log *slog.Logger) *Engine {
	return &Engine{store: s, guard: guard, ids: ids, now: now, log: log}
}

// AnswerCreated fans out an answer-created event inside the caller's
// atomic group. Suppressed when the answerer owns the post.
func (e *Engine) AnswerCreated(ctx context.Context, tx *store.Tx, answer entity.Answer, postCreator entity.UserID) error {
	if answer.Creator == postCreator {
		return nil
	}

	_, err := tx.InsertNotification(ctx, entity.Notification{
		ID:        entity.NotificationID(e.ids.NewID()),
		Type:      entity.NotificationAnswer,
		Sender:    answer.Creator,
		Receiver:  postCreator,
		EntityID:  string(answer.ID),
		PostID:    answer.PostID,
		CreatedAt: e.now(),
	})
	if err != nil {
		return err
	}

	e.log.Debug("answer notification created",
		"post", string(answer.PostID),
		"sender", string(answer.Creator),
		"receiver", string(postCreator))
	return nil
}

// LikeAdded fans out a like-toggled-on event inside the caller's atomic
// group. Suppressed for self-likes. A duplicate like notification is
// deduplicated by the store's unique index.
func (e *Engine) LikeAdded(ctx context.Context, tx *store.Tx, postID entity.PostID, sender, postCreator entity.UserID) error {
	if sender == postCreator {
		return nil
	}

	inserted, err := tx.InsertNotification(ctx, entity.Notification{
		ID:        entity.NotificationID(e.ids.NewID()),
		Type:      entity.NotificationLike,
		Sender:    sender,
		Receiver:  postCreator,
		EntityID:  string(postID),
		PostID:    postID,
		CreatedAt: e.now(),
	})
	if err != nil {
		return err
	}
	if !inserted {
		e.log.Debug("like notification already present, skipping",
			"post", string(postID), "sender", string(sender))
	}
	return nil
}

// LikeRemoved removes the matching like notification inside the caller's
// atomic group. Absence is not an error.
func (e *Engine) LikeRemoved(ctx context.Context, tx *store.Tx, postID entity.PostID, sender entity.UserID) error {
	return tx.DeleteLikeNotification(ctx, postID, sender)
}

// AnswerDeleted cascades an answer deletion to its notifications inside
// the caller's atomic group.
func (e *Engine) AnswerDeleted(ctx context.Context, tx *store.Tx, answerID entity.AnswerID) error {
	return tx.DeleteAnswerNotifications(ctx, answerID)
}

// PostDeleted cascades a post deletion to every notification tied to the
// post or its answers, inside the caller's atomic group.
func (e *Engine) PostDeleted(ctx context.Context, tx *store.Tx, postID entity.PostID) error {
	return tx.DeleteNotificationsForPost(ctx, postID)
}

// MarkRead transitions a notification to read.
// Only the receiver may read it; anyone else fails Forbidden.
func (e *Engine) MarkRead(ctx context.Context, actor entity.UserID, id entity.NotificationID) (entity.Notification, error) {
	n, err := e.store.GetNotification(ctx, id)
	if err != nil {
		return entity.Notification{}, err
	}
	if err := e.guard.RequireOwner(actor, n.Receiver, "read or delete this notification"); err != nil {
		return entity.Notification{}, err
	}
	if err := e.store.MarkNotificationRead(ctx, id); err != nil {
		return entity.Notification{}, err
	}
	n.IsRead = true
	return n, nil
}

// Delete removes a notification at the receiver's request.
// Only the receiver may delete it; anyone else fails Forbidden.
func (e *Engine) Delete(ctx context.Context, actor entity.UserID, id entity.NotificationID) error {
	n, err := e.store.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if err := e.guard.RequireOwner(actor, n.Receiver, "read or delete this notification"); err != nil {
		return err
	}
	return e.store.DeleteNotification(ctx, id)
}

// ListByReceiver returns the receiver's notifications newest-first.
// An empty inbox returns an empty slice, not an error.
func (e *Engine) ListByReceiver(ctx context.Context, receiver entity.UserID) ([]entity.Notification, error) {
	return e.store.ListNotificationsByReceiver(ctx, receiver)
}

// ListAll returns every notification newest-first.
func (e *Engine) ListAll(ctx context.Context) ([]entity.Notification, error) {
	return e.store.ListNotifications(ctx)
}
