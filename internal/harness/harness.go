package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/authz"
	"github.com/quandary-app/quandary/internal/content"
	"github.com/quandary-app/quandary/internal/entity"
	"github.com/quandary-app/quandary/internal/notify"
	"github.com/quandary-app/quandary/internal/store"
	"github.com/quandary-app/quandary/internal/testutil"
)

// TraceEvent is one executed flow step. Args are recorded as written in
// the scenario (refs, not resolved ids) so traces read like the scenario.
type TraceEvent struct {
	Op      string            `json:"op"`
	Actor   string            `json:"actor"`
	Args    map[string]string `json:"args,omitempty"`
	Outcome string            `json:"outcome"`
}

// Result is a completed scenario run. The store stays open for
// assertions and snapshots until Close.
type Result struct {
	Scenario *Scenario
	Trace    []TraceEvent

	h *harness
}

// Close releases the run's database.
func (r *Result) Close() error {
	return r.h.store.Close()
}

// harness wires a deterministic instance of the backend core.
type harness struct {
	store  *store.Store
	svc    *content.Service
	engine *notify.Engine
	refs   map[string]string
	clock  *testutil.DeterministicClock
}

// seqGenerator issues "id-000001", "id-000002", ... so scenario runs are
// byte-identical across executions.
type seqGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *seqGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%06d", g.n)
}

// nopStorage satisfies blob.Storage for scenarios, which never carry
// image payloads.
type nopStorage struct{}

func (nopStorage) Store(data []byte, ext string) (string, error) { return "", nil }
func (nopStorage) Delete(path string) error                      { return nil }

// Run executes a scenario against a fresh database in dir.
//
// Every step's outcome is compared against its Expect clause; a mismatch
// fails the run. The returned Result carries the trace and an open store
// for assertions.
func Run(sc *Scenario, dir string) (*Result, error) {
	st, err := store.Open(filepath.Join(dir, sc.Name+".db"))
	if err != nil {
		return nil, fmt.Errorf("scenario %q: open store: %w", sc.Name, err)
	}

	clock := testutil.NewDeterministicClock()
	ids := &seqGenerator{}
	guard := authz.NewGuard()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in scenario runs
	engine := notify.New(st, guard, ids, clock.Now, logger)
	svc := content.New(st, engine, guard, nopStorage{}, ids, clock.Now, logger)

	h := &harness{
		store:  st,
		svc:    svc,
		engine: engine,
		refs:   map[string]string{},
		clock:  clock,
	}

	result := &Result{Scenario: sc, h: h}

	if err := h.setup(sc); err != nil {
		st.Close()
		return nil, err
	}

	for i, step := range sc.Flow {
		outcome := h.execute(step)
		result.Trace = append(result.Trace, TraceEvent{
			Op:      step.Op,
			Actor:   step.Actor,
			Args:    step.Args,
			Outcome: outcome,
		})

		expect := step.Expect
		if expect == "" {
			expect = "ok"
		}
		if outcome != expect {
			st.Close()
			return nil, fmt.Errorf("scenario %q: flow[%d] %s: outcome %q, expected %q",
				sc.Name, i, step.Op, outcome, expect)
		}
	}

	return result, nil
}

func (h *harness) setup(sc *Scenario) error {
	ctx := context.Background()

	for _, u := range sc.Users {
		now := h.clock.Now()
		id := entity.UserID("user-" + u.Ref)
		err := h.store.InsertUser(ctx, entity.User{
			ID:           id,
			Name:         u.Name,
			Email:        u.Email,
			PasswordHash: "scenario",
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("scenario %q: setup user %s: %w", sc.Name, u.Ref, err)
		}
		h.refs[u.Ref] = string(id)
	}

	for _, p := range sc.Posts {
		creator, err := h.resolve(p.Creator)
		if err != nil {
			return fmt.Errorf("scenario %q: setup post %s: %w", sc.Name, p.Ref, err)
		}
		post, err := h.svc.CreatePost(ctx, entity.UserID(creator), content.NewPost{
			Title:    p.Title,
			Question: p.Question,
		})
		if err != nil {
			return fmt.Errorf("scenario %q: setup post %s: %w", sc.Name, p.Ref, err)
		}
		h.refs[p.Ref] = string(post.ID)
	}

	return nil
}

// execute runs one step and reduces its result to an outcome string:
// "ok" on success, the error kind otherwise.
func (h *harness) execute(step FlowStep) string {
	err := h.dispatch(step)
	if err == nil {
		return "ok"
	}
	if kind := apperr.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error: " + err.Error()
}

func (h *harness) dispatch(step FlowStep) error {
	ctx := context.Background()

	actor, err := h.resolve(step.Actor)
	if err != nil {
		return err
	}
	actorID := entity.UserID(actor)

	arg := func(name string) string { return step.Args[name] }
	ref := func(name string) (string, error) { return h.resolve(arg(name)) }

	switch step.Op {
	case "create_post":
		post, err := h.svc.CreatePost(ctx, actorID, content.NewPost{
			Title:    arg("title"),
			Question: arg("question"),
		})
		if err != nil {
			return err
		}
		h.register(step.As, string(post.ID))
		return nil

	case "update_post":
		postID, err := ref("post")
		if err != nil {
			return err
		}
		_, err = h.svc.UpdatePost(ctx, actorID, entity.PostID(postID), arg("title"), arg("question"))
		return err

	case "delete_post":
		postID, err := ref("post")
		if err != nil {
			return err
		}
		return h.svc.DeletePost(ctx, actorID, entity.PostID(postID))

	case "create_answer":
		postID, err := ref("post")
		if err != nil {
			return err
		}
		answer, err := h.svc.CreateAnswer(ctx, actorID, content.NewAnswer{
			Text:   arg("text"),
			Author: arg("author"),
			PostID: entity.PostID(postID),
		})
		if err != nil {
			return err
		}
		h.register(step.As, string(answer.ID))
		return nil

	case "update_answer":
		answerID, err := ref("answer")
		if err != nil {
			return err
		}
		_, err = h.svc.UpdateAnswer(ctx, actorID, entity.AnswerID(answerID), arg("text"))
		return err

	case "delete_answer":
		answerID, err := ref("answer")
		if err != nil {
			return err
		}
		return h.svc.DeleteAnswer(ctx, actorID, entity.AnswerID(answerID))

	case "toggle_like":
		postID, err := ref("post")
		if err != nil {
			return err
		}
		_, err = h.svc.ToggleLike(ctx, actorID, entity.PostID(postID))
		return err

	case "save_post":
		postID, err := ref("post")
		if err != nil {
			return err
		}
		_, err = h.svc.SavePost(ctx, actorID, actorID, entity.PostID(postID))
		return err

	case "unsave_post":
		postID, err := ref("post")
		if err != nil {
			return err
		}
		_, err = h.svc.UnsavePost(ctx, actorID, actorID, entity.PostID(postID))
		return err

	case "mark_read":
		id, err := h.newestNotification(ctx, arg("notification_of"))
		if err != nil {
			return err
		}
		_, err = h.engine.MarkRead(ctx, actorID, id)
		return err

	case "delete_notification":
		id, err := h.newestNotification(ctx, arg("notification_of"))
		if err != nil {
			return err
		}
		return h.engine.Delete(ctx, actorID, id)

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

// newestNotification resolves the newest notification in a user's inbox.
func (h *harness) newestNotification(ctx context.Context, userRef string) (entity.NotificationID, error) {
	receiver, err := h.resolve(userRef)
	if err != nil {
		return "", err
	}
	inbox, err := h.engine.ListByReceiver(ctx, entity.UserID(receiver))
	if err != nil {
		return "", err
	}
	if len(inbox) == 0 {
		return "", apperr.New(apperr.KindNotFound, "could not find a notification for the provided id")
	}
	return inbox[0].ID, nil
}

func (h *harness) resolve(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty ref")
	}
	id, ok := h.refs[ref]
	if !ok {
		return "", fmt.Errorf("unknown ref %q", ref)
	}
	return id, nil
}

func (h *harness) register(as, id string) {
	if as != "" {
		h.refs[as] = id
	}
}
