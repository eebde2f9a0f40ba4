package content

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quandary-app/quandary/internal/authz"
	"github.com/quandary-app/quandary/internal/entity"
	"github.com/quandary-app/quandary/internal/idgen"
	"github.com/quandary-app/quandary/internal/notify"
	"github.com/quandary-app/quandary/internal/store"
	"github.com/quandary-app/quandary/internal/testutil"
)

// recordingStorage captures delete requests so tests can assert on
// fire-and-forget cleanup.
type recordingStorage struct {
	mu      sync.Mutex
	deleted []string
	fail    error
}

func (r *recordingStorage) Store(data []byte, ext string) (string, error) {
	return "uploads/stored" + ext, nil
}

func (r *recordingStorage) Delete(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, path)
	return r.fail
}

func (r *recordingStorage) deletes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

type fixture struct {
	svc    *Service
	store  *store.Store
	engine *notify.Engine
	blobs  *recordingStorage
	clock  *testutil.DeterministicClock
}

func setupService(t *testing.T) *fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := testutil.NewDeterministicClock()
	guard := authz.NewGuard()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	blobs := &recordingStorage{}
	engine := notify.New(s, guard, idgen.UUIDv7Generator{}, clock.Now, logger)
	svc := New(s, engine, guard, blobs, idgen.UUIDv7Generator{}, clock.Now, logger)

	return &fixture{svc: svc, store: s, engine: engine, blobs: blobs, clock: clock}
}

// addUser inserts an account directly; auth is out of scope here.
func (f *fixture) addUser(t *testing.T, id string) entity.UserID {
	t.Helper()
	now := f.clock.Now()
	err := f.store.InsertUser(context.Background(), entity.User{
		ID:           entity.UserID(id),
		Name:         "User " + id,
		Email:        id + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	return entity.UserID(id)
}

func (f *fixture) addPost(t *testing.T, creator entity.UserID) entity.Post {
	t.Helper()
	post, err := f.svc.CreatePost(context.Background(), creator, NewPost{
		Title:    "How do I fix this",
		Question: "Details of the problem",
	})
	require.NoError(t, err)
	return post
}

func (f *fixture) addAnswer(t *testing.T, creator entity.UserID, postID entity.PostID) entity.Answer {
	t.Helper()
	answer, err := f.svc.CreateAnswer(context.Background(), creator, NewAnswer{
		Text:   "Have you tried turning it off and on",
		Author: "User " + string(creator),
		PostID: postID,
	})
	require.NoError(t, err)
	return answer
}

// assertMirror checks that a post's projections agree with the records
// that reference it.
func assertMirror(t *testing.T, f *fixture, postID entity.PostID) {
	t.Helper()
	ctx := context.Background()

	post, err := f.store.GetPost(ctx, postID)
	require.NoError(t, err)

	answers, err := f.store.ListAnswersByPost(ctx, postID)
	require.NoError(t, err)
	require.Len(t, post.Answers, len(answers), "answer projection out of sync")

	byID := map[entity.AnswerID]bool{}
	for _, a := range answers {
		byID[a.ID] = true
	}
	for _, id := range post.Answers {
		require.True(t, byID[id], "projection lists %s which has no record", id)
	}
}
