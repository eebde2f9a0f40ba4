package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/quandary-app/quandary/internal/entity"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// testUser builds a minimal user. The email is derived from the id so
// repeated inserts in one test never collide on the unique constraint.
func testUser(id string) entity.User {
	return entity.User{
		ID:           entity.UserID(id),
		Name:         "User " + id,
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: "hash",
		CreatedAt:    testEpoch,
		UpdatedAt:    testEpoch,
	}
}

func testPost(id, creator string) entity.Post {
	return entity.Post{
		ID:        entity.PostID(id),
		Title:     "Title " + id,
		Question:  "Question " + id,
		Creator:   entity.UserID(creator),
		CreatedAt: testEpoch,
		UpdatedAt: testEpoch,
	}
}

func testAnswer(id, postID, creator string) entity.Answer {
	return entity.Answer{
		ID:        entity.AnswerID(id),
		Text:      "Answer " + id,
		Author:    "User " + creator,
		Creator:   entity.UserID(creator),
		PostID:    entity.PostID(postID),
		CreatedAt: testEpoch,
		UpdatedAt: testEpoch,
	}
}

func testNotification(id string, typ entity.NotificationType, sender, receiver, entityID, postID string) entity.Notification {
	return entity.Notification{
		ID:        entity.NotificationID(id),
		Type:      typ,
		Sender:    entity.UserID(sender),
		Receiver:  entity.UserID(receiver),
		EntityID:  entityID,
		PostID:    entity.PostID(postID),
		CreatedAt: testEpoch,
	}
}
