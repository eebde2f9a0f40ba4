package notify

import (
	"context"

	"github.com/quandary-app/quandary/internal/entity"
	"github.com/quandary-app/quandary/internal/store"
)

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	// Created is the number of like notifications re-derived from like
	// membership that were missing.
	Created int `json:"created"`

	// Removed is the number of orphaned like notifications deleted:
	// rows whose like no longer exists, plus self-like rows that should
	// never have existed.
	Removed int `json:"removed"`
}

// Reconcile re-derives like-notification existence from like membership.
//
// The like relation is the source of truth: for every non-self like there
// must be exactly one like notification, and no like notification may
// exist without its like. The whole pass runs in one atomic group, so a
// concurrent reader sees either the old or the repaired state.
//
// This is an operational repair tool (exposed as a CLI command); the
// normal toggle path maintains the same invariant transactionally.
func (e *Engine) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	err := e.store.Atomic(ctx, func(tx *store.Tx) error {
		likes, err := tx.ListAllLikes(ctx)
		if err != nil {
			return err
		}

		notifications, err := tx.ListNotificationsByType(ctx, entity.NotificationLike)
		if err != nil {
			return err
		}

		type likeKey struct {
			post   entity.PostID
			sender entity.UserID
		}

		wanted := map[likeKey]store.LikeRef{}
		for _, l := range likes {
			if l.UserID == l.Creator {
				continue // self-likes never notify
			}
			wanted[likeKey{post: l.PostID, sender: l.UserID}] = l
		}

		present := map[likeKey]bool{}
		for _, n := range notifications {
			key := likeKey{post: entity.PostID(n.EntityID), sender: n.Sender}
			if _, ok := wanted[key]; ok && !present[key] {
				present[key] = true
				continue
			}
			// Orphan: like gone, self-like, or a duplicate row.
			if err := tx.DeleteNotification(ctx, n.ID); err != nil {
				return err
			}
			report.Removed++
		}

		for key, l := range wanted {
			if present[key] {
				continue
			}
			inserted, err := tx.InsertNotification(ctx, entity.Notification{
				ID:        entity.NotificationID(e.ids.NewID()),
				Type:      entity.NotificationLike,
				Sender:    l.UserID,
				Receiver:  l.Creator,
				EntityID:  string(key.post),
				PostID:    key.post,
				CreatedAt: l.CreatedAt,
			})
			if err != nil {
				return err
			}
			if inserted {
				report.Created++
			}
		}

		return nil
	})
	if err != nil {
		return ReconcileReport{}, err
	}

	e.log.Info("reconciliation complete",
		"created", report.Created, "removed", report.Removed)
	return report, nil
}
