package store

import (
	"context"
	"testing"
	"time"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
)

func TestInsertAnswer_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedUserAndPost(t, s, "u1", "p1")
	if err := s.InsertAnswer(ctx, testAnswer("a1", "p1", "u1")); err != nil {
		t.Fatalf("InsertAnswer() failed: %v", err)
	}

	got, err := s.GetAnswer(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAnswer() failed: %v", err)
	}
	if got.Text != "Answer a1" || got.Author != "User u1" || got.Creator != "u1" || got.PostID != "p1" {
		t.Errorf("GetAnswer() = %+v", got)
	}
}

func TestGetAnswer_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetAnswer(context.Background(), "missing")
	if !apperr.IsNotFound(err) {
		t.Errorf("missing answer should be NOT_FOUND, got %v", err)
	}
}

func TestListAnswersByPost_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedUserAndPost(t, s, "u1", "p1")
	for i, id := range []string{"a1", "a2", "a3"} {
		a := testAnswer(id, "p1", "u1")
		a.CreatedAt = testEpoch.Add(time.Duration(i) * time.Second)
		if err := s.InsertAnswer(ctx, a); err != nil {
			t.Fatalf("InsertAnswer(%s) failed: %v", id, err)
		}
	}

	answers, err := s.ListAnswersByPost(ctx, "p1")
	if err != nil {
		t.Fatalf("ListAnswersByPost() failed: %v", err)
	}

	want := []entity.AnswerID{"a3", "a2", "a1"}
	if len(answers) != len(want) {
		t.Fatalf("got %d answers, want %d", len(answers), len(want))
	}
	for i, id := range want {
		if answers[i].ID != id {
			t.Errorf("answers[%d] = %s, want %s", i, answers[i].ID, id)
		}
	}
}

func TestUpdateAnswerText(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedUserAndPost(t, s, "u1", "p1")
	if err := s.InsertAnswer(ctx, testAnswer("a1", "p1", "u1")); err != nil {
		t.Fatalf("InsertAnswer() failed: %v", err)
	}

	later := testEpoch.Add(time.Hour)
	if err := s.UpdateAnswerText(ctx, "a1", "revised", later); err != nil {
		t.Fatalf("UpdateAnswerText() failed: %v", err)
	}

	got, err := s.GetAnswer(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAnswer() failed: %v", err)
	}
	if got.Text != "revised" {
		t.Errorf("Text = %q, want %q", got.Text, "revised")
	}
	if got.Author != "User u1" {
		t.Errorf("Author changed on text update: %q", got.Author)
	}

	if err := s.UpdateAnswerText(ctx, "missing", "x", later); !apperr.IsNotFound(err) {
		t.Errorf("updating missing answer should be NOT_FOUND, got %v", err)
	}
}

func TestDeleteAnswersForPost_ScopedToPost(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seedUserAndPost(t, s, "u1", "p1")
	if err := s.InsertPost(ctx, testPost("p2", "u1")); err != nil {
		t.Fatalf("InsertPost(p2) failed: %v", err)
	}
	for _, tc := range []struct{ id, post string }{
		{"a1", "p1"}, {"a2", "p1"}, {"a3", "p2"},
	} {
		if err := s.InsertAnswer(ctx, testAnswer(tc.id, tc.post, "u1")); err != nil {
			t.Fatalf("InsertAnswer(%s) failed: %v", tc.id, err)
		}
	}

	if err := s.DeleteAnswersForPost(ctx, "p1"); err != nil {
		t.Fatalf("DeleteAnswersForPost() failed: %v", err)
	}

	for _, id := range []entity.AnswerID{"a1", "a2"} {
		if _, err := s.GetAnswer(ctx, id); !apperr.IsNotFound(err) {
			t.Errorf("%s should be gone, got %v", id, err)
		}
	}
	if _, err := s.GetAnswer(ctx, "a3"); err != nil {
		t.Errorf("a3 on another post should survive: %v", err)
	}

	// A post with no answers left deletes cleanly a second time.
	if err := s.DeleteAnswersForPost(ctx, "p1"); err != nil {
		t.Errorf("deleting zero answers should succeed, got %v", err)
	}
}
