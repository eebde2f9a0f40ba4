// Package content implements the consistency manager: it translates each
// logical content mutation into the exact mutation set that preserves
// cross-entity consistency, and submits that set as one atomic group.
//
// Every operation takes the authenticated actor id as an explicit
// parameter. Ownership checks go through the authz guard, notification
// fan-out through the notify engine, and all multi-entity writes through
// Store.Atomic - there is no code path that mutates one side of a
// relation without the other.
//
// External side effects (image file cleanup) run only after the owning
// group commits, fire-and-forget: their failure is logged and never
// undoes the main operation.
package content

import (
	"log/slog"
	"time"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/authz"
	"github.com/quandary-app/quandary/internal/blob"
	"github.com/quandary-app/quandary/internal/idgen"
	"github.com/quandary-app/quandary/internal/notify"
	"github.com/quandary-app/quandary/internal/store"
)

// Service is the consistency manager.
type Service struct {
	store  *store.Store
	notify *notify.Engine
	guard  *authz.Guard
	blobs  blob.Storage
	ids    idgen.Generator
	now    func() time.Time
	log    *slog.Logger
}

// New creates a Service.
func New(
	s *store.Store,
	n *notify.Engine,
	guard *authz.Guard,
	blobs blob.Storage,
	ids idgen.Generator,
	now func() time.Time,
	log *slog.Logger,
) *Service {
	return &Service{
		store:  s,
		notify: n,
		guard:  guard,
		blobs:  blobs,
		ids:    ids,
		now:    now,
		log:    log,
	}
}

// dropSideEffect logs a failed external side effect and discards it.
// Side effects never abort or retry the operation that requested them.
func (s *Service) dropSideEffect(err error) {
	if err == nil {
		return
	}
	s.log.Warn("side effect failed",
		"kind", string(apperr.KindOf(err)), "error", err)
}
