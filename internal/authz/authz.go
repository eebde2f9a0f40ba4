// Package authz implements the ownership guard gating mutating operations.
//
// The guard compares an authenticated actor id against a target's owning
// user id. The actor id is always passed in explicitly by the caller -
// never read from ambient per-request state - so every authorization
// decision is auditable at the call site.
package authz

import (
	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
)

// Guard performs ownership checks.
type Guard struct {
	// RequireAnswerOwnership controls whether answer update/delete is
	// restricted to the answer's creator. The legacy system shipped
	// without this check; it is on by default and can be disabled to
	// reproduce the permissive behavior.
	RequireAnswerOwnership bool
}

// NewGuard creates a Guard with ownership enforced everywhere.
func NewGuard() *Guard {
	return &Guard{RequireAnswerOwnership: true}
}

// RequireOwner allows the operation iff actor equals owner.
func (g *Guard) RequireOwner(actor, owner entity.UserID, action string) error {
	if actor != owner {
		return apperr.Newf(apperr.KindForbidden, "you are not allowed to %s", action)
	}
	return nil
}

// RequireAnswerOwner applies RequireOwner to answer mutations, unless the
// guard is configured permissive.
func (g *Guard) RequireAnswerOwner(actor, owner entity.UserID, action string) error {
	if !g.RequireAnswerOwnership {
		return nil
	}
	return g.RequireOwner(actor, owner, action)
}
