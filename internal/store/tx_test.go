package store

import (
	"context"
	"errors"
	"testing"

	"github.com/quandary-app/quandary/internal/apperr"
)

func TestAtomic_CommitsOnSuccess(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Atomic(ctx, func(tx *Tx) error {
		if err := tx.InsertUser(ctx, testUser("u1")); err != nil {
			return err
		}
		return tx.InsertPost(ctx, testPost("p1", "u1"))
	})
	if err != nil {
		t.Fatalf("Atomic() failed: %v", err)
	}

	if _, err := s.GetUser(ctx, "u1"); err != nil {
		t.Errorf("user not committed: %v", err)
	}
	if _, err := s.GetPost(ctx, "p1"); err != nil {
		t.Errorf("post not committed: %v", err)
	}
}

func TestAtomic_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx *Tx) error {
		if err := tx.InsertUser(ctx, testUser("u1")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Atomic() = %v, want boom", err)
	}

	if _, err := s.GetUser(ctx, "u1"); !apperr.IsNotFound(err) {
		t.Errorf("user should have been rolled back, got %v", err)
	}
}

func TestAtomic_PartialWritesNeverVisible(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.InsertUser(ctx, testUser("u1")); err != nil {
		t.Fatalf("InsertUser() failed: %v", err)
	}

	// The second insert collides on the primary key; the first must not
	// survive the rollback.
	err := s.Atomic(ctx, func(tx *Tx) error {
		if err := tx.InsertPost(ctx, testPost("p1", "u1")); err != nil {
			return err
		}
		if err := tx.InsertUser(ctx, testUser("u1")); err != nil {
			return err
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected duplicate insert to fail")
	}

	if _, err := s.GetPost(ctx, "p1"); !apperr.IsNotFound(err) {
		t.Errorf("partial write visible after rollback: %v", err)
	}
}
