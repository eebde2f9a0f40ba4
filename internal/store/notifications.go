package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
)

// InsertNotification inserts a notification record and reports whether a
// new row was written.
//
// Uses ON CONFLICT DO NOTHING against the partial unique index on
// (entity_id, sender, receiver) for like notifications: a duplicate like
// notification is silently deduplicated and inserted=false is returned.
func (c queries) InsertNotification(ctx context.Context, n entity.Notification) (inserted bool, err error) {
	res, err := c.q.ExecContext(ctx, `
		INSERT INTO notifications
		(id, type, is_read, sender, receiver, entity_id, post_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		string(n.ID),
		string(n.Type),
		n.IsRead,
		string(n.Sender),
		string(n.Receiver),
		n.EntityID,
		nullable(string(n.PostID)),
		ts(n.CreatedAt),
	)
	if err != nil {
		return false, wrapDB(err, "could not create the notification")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, wrapDB(err, "could not create the notification")
	}
	return affected > 0, nil
}

// GetNotification retrieves a notification by id. Fails NotFound if absent.
func (c queries) GetNotification(ctx context.Context, id entity.NotificationID) (entity.Notification, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, type, is_read, sender, receiver, entity_id, post_id, created_at
		FROM notifications
		WHERE id = ?
	`, string(id))

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Notification{}, apperr.New(apperr.KindNotFound,
				"could not find a notification for the provided id")
		}
		return entity.Notification{}, wrapDB(err, "could not load the notification")
	}
	return n, nil
}

// ListNotifications returns every notification newest-first.
func (c queries) ListNotifications(ctx context.Context) ([]entity.Notification, error) {
	return c.listNotifications(ctx, `
		SELECT id, type, is_read, sender, receiver, entity_id, post_id, created_at
		FROM notifications
		ORDER BY created_at DESC, id DESC
	`)
}

// ListNotificationsByReceiver returns the receiver's notifications
// newest-first. Returns an empty slice (not nil) when there are none.
func (c queries) ListNotificationsByReceiver(ctx context.Context, receiver entity.UserID) ([]entity.Notification, error) {
	return c.listNotifications(ctx, `
		SELECT id, type, is_read, sender, receiver, entity_id, post_id, created_at
		FROM notifications
		WHERE receiver = ?
		ORDER BY created_at DESC, id DESC
	`, string(receiver))
}

// ListNotificationsByType returns all notifications of one type
// newest-first. Used by the reconciliation pass.
func (c queries) ListNotificationsByType(ctx context.Context, typ entity.NotificationType) ([]entity.Notification, error) {
	return c.listNotifications(ctx, `
		SELECT id, type, is_read, sender, receiver, entity_id, post_id, created_at
		FROM notifications
		WHERE type = ?
		ORDER BY created_at DESC, id DESC
	`, string(typ))
}

func (c queries) listNotifications(ctx context.Context, query string, args ...any) ([]entity.Notification, error) {
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDB(err, "could not list notifications")
	}
	defer rows.Close()

	notifications := []entity.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, wrapDB(err, "could not list notifications")
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err, "could not list notifications")
	}
	return notifications, nil
}

// MarkNotificationRead flips is_read to true.
// Fails NotFound if the notification is absent.
func (c queries) MarkNotificationRead(ctx context.Context, id entity.NotificationID) error {
	res, err := c.q.ExecContext(ctx, `
		UPDATE notifications SET is_read = 1 WHERE id = ?
	`, string(id))
	if err != nil {
		return wrapDB(err, "could not update the notification")
	}
	return requireAffected(res, "could not find a notification for the provided id")
}

// DeleteNotification deletes a notification by id.
// Fails NotFound if absent.
func (c queries) DeleteNotification(ctx context.Context, id entity.NotificationID) error {
	res, err := c.q.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, string(id))
	if err != nil {
		return wrapDB(err, "could not delete the notification")
	}
	return requireAffected(res, "could not find a notification for the provided id")
}

// DeleteLikeNotification removes the like notification matching the
// (post, sender) pair. Absence is not an error: an unlike after a
// self-like or a reconciled state has nothing to remove.
func (c queries) DeleteLikeNotification(ctx context.Context, postID entity.PostID, sender entity.UserID) error {
	_, err := c.q.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE type = 'like' AND entity_id = ? AND sender = ?
	`, string(postID), string(sender))
	if err != nil {
		return wrapDB(err, "could not delete the notification")
	}
	return nil
}

// DeleteAnswerNotifications removes every answer notification referencing
// the given answer. Absence is not an error.
func (c queries) DeleteAnswerNotifications(ctx context.Context, answerID entity.AnswerID) error {
	_, err := c.q.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE type = 'answer' AND entity_id = ?
	`, string(answerID))
	if err != nil {
		return wrapDB(err, "could not delete the notifications")
	}
	return nil
}

// DeleteNotificationsForPost removes every notification tied to the post:
// like notifications on the post itself and answer notifications for any
// of its answers (all carry the post id).
func (c queries) DeleteNotificationsForPost(ctx context.Context, postID entity.PostID) error {
	_, err := c.q.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE post_id = ? OR entity_id = ?
	`, string(postID), string(postID))
	if err != nil {
		return wrapDB(err, "could not delete the notifications")
	}
	return nil
}

// nullable maps the empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanNotification(s scanner) (entity.Notification, error) {
	var (
		n                      entity.Notification
		id, typ, sender, recv  string
		postID                 sql.NullString
		createdAt              int64
	)
	if err := s.Scan(&id, &typ, &n.IsRead, &sender, &recv, &n.EntityID, &postID, &createdAt); err != nil {
		return entity.Notification{}, err
	}
	n.ID = entity.NotificationID(id)
	n.Type = entity.NotificationType(typ)
	n.Sender = entity.UserID(sender)
	n.Receiver = entity.UserID(recv)
	if postID.Valid {
		n.PostID = entity.PostID(postID.String)
	}
	n.CreatedAt = fromTS(createdAt)
	return n, nil
}

// LikeRef is one row of the like relation joined with the post's creator.
// Input to the reconciliation pass.
type LikeRef struct {
	PostID    entity.PostID
	UserID    entity.UserID
	Creator   entity.UserID
	CreatedAt time.Time
}

// ListAllLikes returns every like joined with its post's creator, in like
// order. Used by the reconciliation pass to re-derive notification
// existence from like membership.
func (c queries) ListAllLikes(ctx context.Context) ([]LikeRef, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT l.post_id, l.user_id, p.creator, l.created_at
		FROM post_likes l
		JOIN posts p ON p.id = l.post_id
		ORDER BY l.created_at ASC, l.post_id ASC, l.user_id ASC
	`)
	if err != nil {
		return nil, wrapDB(err, "could not list likes")
	}
	defer rows.Close()

	refs := []LikeRef{}
	for rows.Next() {
		var (
			postID, userID, creator string
			createdAt               int64
		)
		if err := rows.Scan(&postID, &userID, &creator, &createdAt); err != nil {
			return nil, wrapDB(err, "could not list likes")
		}
		refs = append(refs, LikeRef{
			PostID:    entity.PostID(postID),
			UserID:    entity.UserID(userID),
			Creator:   entity.UserID(creator),
			CreatedAt: fromTS(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err, "could not list likes")
	}
	return refs, nil
}
