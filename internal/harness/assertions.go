package harness

import (
	"context"
	"fmt"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
)

// CheckAssertions validates every assertion of the scenario against the
// final state. The first failing assertion is returned.
func (r *Result) CheckAssertions() error {
	ctx := context.Background()

	for i, a := range r.Scenario.Assertions {
		var err error
		switch a.Type {
		case "notification_count":
			err = r.assertNotificationCount(ctx, a)
		case "notification_exists":
			err = r.assertNotificationExists(ctx, a)
		case "likes":
			err = r.assertLikes(ctx, a)
		case "absent":
			err = r.assertAbsent(ctx, a)
		case "mirrors":
			err = r.assertMirrors(ctx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			return fmt.Errorf("scenario %q: assertion[%d] %s: %w", r.Scenario.Name, i, a.Type, err)
		}
	}
	return nil
}

func (r *Result) assertNotificationCount(ctx context.Context, a Assertion) error {
	receiver, err := r.h.resolve(a.Receiver)
	if err != nil {
		return err
	}
	inbox, err := r.h.engine.ListByReceiver(ctx, entity.UserID(receiver))
	if err != nil {
		return err
	}
	if len(inbox) != a.Count {
		return fmt.Errorf("receiver %s has %d notifications, expected %d", a.Receiver, len(inbox), a.Count)
	}
	return nil
}

func (r *Result) assertNotificationExists(ctx context.Context, a Assertion) error {
	receiver, err := r.h.resolve(a.Receiver)
	if err != nil {
		return err
	}
	inbox, err := r.h.engine.ListByReceiver(ctx, entity.UserID(receiver))
	if err != nil {
		return err
	}

	for _, n := range inbox {
		if a.NotifType != "" && string(n.Type) != a.NotifType {
			continue
		}
		if a.Sender != "" {
			sender, err := r.h.resolve(a.Sender)
			if err != nil {
				return err
			}
			if string(n.Sender) != sender {
				continue
			}
		}
		if a.Entity != "" {
			id, err := r.h.resolve(a.Entity)
			if err != nil {
				return err
			}
			if n.EntityID != id {
				continue
			}
		}
		if a.Read != nil && n.IsRead != *a.Read {
			continue
		}
		return nil
	}
	return fmt.Errorf("no matching notification in %s's inbox (%d entries)", a.Receiver, len(inbox))
}

func (r *Result) assertLikes(ctx context.Context, a Assertion) error {
	postID, err := r.h.resolve(a.Post)
	if err != nil {
		return err
	}
	post, err := r.h.store.GetPost(ctx, entity.PostID(postID))
	if err != nil {
		return err
	}

	if len(post.Likes) != len(a.Users) {
		return fmt.Errorf("post %s has %d likes, expected %d", a.Post, len(post.Likes), len(a.Users))
	}
	for i, ref := range a.Users {
		want, err := r.h.resolve(ref)
		if err != nil {
			return err
		}
		if string(post.Likes[i]) != want {
			return fmt.Errorf("post %s likes[%d] = %s, expected %s", a.Post, i, post.Likes[i], ref)
		}
	}
	return nil
}

func (r *Result) assertAbsent(ctx context.Context, a Assertion) error {
	id, err := r.h.resolve(a.Ref)
	if err != nil {
		return err
	}

	switch a.Kind {
	case "post":
		_, err = r.h.store.GetPost(ctx, entity.PostID(id))
	case "answer":
		_, err = r.h.store.GetAnswer(ctx, entity.AnswerID(id))
	default:
		return fmt.Errorf("unknown kind %q", a.Kind)
	}

	if err == nil {
		return fmt.Errorf("%s %s still exists", a.Kind, a.Ref)
	}
	if !apperr.IsNotFound(err) {
		return err
	}
	return nil
}

// assertMirrors verifies the global mirror invariant: every post's answer
// projection equals the set of answers referencing it, and every user's
// answer/post projections equal the records they created.
func (r *Result) assertMirrors(ctx context.Context) error {
	posts, err := r.h.store.ListPosts(ctx)
	if err != nil {
		return err
	}

	for _, p := range posts {
		answers, err := r.h.store.ListAnswersByPost(ctx, p.ID)
		if err != nil {
			return err
		}
		if err := sameIDSet("post", string(p.ID), answerIDs(p.Answers), answerRecordIDs(answers)); err != nil {
			return err
		}
	}

	users, err := r.h.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		full, err := r.h.store.GetUser(ctx, u.ID)
		if err != nil {
			return err
		}

		answers, err := r.h.store.ListAnswersByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		if err := sameIDSet("user", string(u.ID), answerIDs(full.Answers), answerRecordIDs(answers)); err != nil {
			return err
		}

		userPosts, err := r.h.store.ListPostsByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		got := make([]string, len(full.Posts))
		for i, id := range full.Posts {
			got[i] = string(id)
		}
		want := make([]string, len(userPosts))
		for i, p := range userPosts {
			want[i] = string(p.ID)
		}
		if err := sameIDSet("user", string(u.ID), got, want); err != nil {
			return err
		}
	}

	return nil
}

func answerIDs(ids []entity.AnswerID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func answerRecordIDs(answers []entity.Answer) []string {
	out := make([]string, len(answers))
	for i, a := range answers {
		out[i] = string(a.ID)
	}
	return out
}

// sameIDSet compares two id collections as sets.
func sameIDSet(kind, id string, got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s %s: projection has %d entries, records have %d", kind, id, len(got), len(want))
	}
	seen := map[string]bool{}
	for _, g := range got {
		seen[g] = true
	}
	for _, w := range want {
		if !seen[w] {
			return fmt.Errorf("%s %s: projection missing %s", kind, id, w)
		}
	}
	return nil
}
