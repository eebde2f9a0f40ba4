package store

import (
	"context"
	"fmt"
)

// Tx is an atomic group in progress. It exposes the same per-entity
// methods as Store; every mutation performed through it commits or rolls
// back as one unit.
type Tx struct {
	queries
}

// Atomic executes fn inside a single database transaction.
//
// All mutations performed through the Tx apply together or not at all.
// Any error from fn aborts the group with zero partial effects and is
// returned unchanged. Groups over disjoint entities proceed independently;
// groups touching the same rows serialize at the store, and a losing group
// surfaces apperr.KindConflict. No automatic retry is performed - the
// caller decides whether to retry.
func (s *Store) Atomic(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDB(err, "could not start the operation")
	}
	defer sqlTx.Rollback() // No-op if committed

	if err := fn(&Tx{queries: queries{q: sqlTx}}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return wrapDB(fmt.Errorf("commit: %w", err), "could not complete the operation")
	}

	return nil
}
