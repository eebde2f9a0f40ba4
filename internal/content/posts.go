package content

import (
	"context"
	"strings"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
	"github.com/quandary-app/quandary/internal/store"
)

// NewPost is the input for CreatePost. ImageURL, when set, is a path
// previously returned by the file-storage collaborator.
type NewPost struct {
	Title    string
	Question string
	ImageURL string
}

// CreatePost creates a post owned by actor.
//
// The creator's post list is a reverse-index projection, so a single
// insert is sufficient; no mirror update can be missed. If validation
// rejects the input after an image was already stored, the orphaned file
// is deleted fire-and-forget.
func (s *Service) CreatePost(ctx context.Context, actor entity.UserID, in NewPost) (entity.Post, error) {
	if err := validatePostInput(in.Title, in.Question); err != nil {
		if in.ImageURL != "" {
			s.dropSideEffect(s.blobs.Delete(in.ImageURL))
		}
		return entity.Post{}, err
	}

	if _, err := s.store.GetUser(ctx, actor); err != nil {
		return entity.Post{}, err
	}

	now := s.now()
	post := entity.Post{
		ID:        entity.PostID(s.ids.NewID()),
		Title:     in.Title,
		Question:  in.Question,
		ImageURL:  in.ImageURL,
		Creator:   actor,
		Likes:     []entity.UserID{},
		Answers:   []entity.AnswerID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.InsertPost(ctx, post); err != nil {
		return entity.Post{}, err
	}
	return post, nil
}

// UpdatePost updates title and question. Nothing else about a post is
// mutable. Only the creator may edit; anyone else fails Forbidden.
func (s *Service) UpdatePost(ctx context.Context, actor entity.UserID, postID entity.PostID, title, question string) (entity.Post, error) {
	if err := validatePostInput(title, question); err != nil {
		return entity.Post{}, err
	}

	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return entity.Post{}, err
	}
	if err := s.guard.RequireOwner(actor, post.Creator, "edit this post"); err != nil {
		return entity.Post{}, err
	}

	if err := s.store.UpdatePostContent(ctx, postID, title, question, s.now()); err != nil {
		return entity.Post{}, err
	}
	return s.store.GetPost(ctx, postID)
}

// DeletePost deletes a post and cascades: all child answers, the like
// set, saved-post references, and every notification tied to the post or
// its answers go in the same atomic group. Only the creator may delete.
//
// The post's image file is removed only after commit, fire-and-forget: a
// failed file delete is logged and never undoes the deletion.
func (s *Service) DeletePost(ctx context.Context, actor entity.UserID, postID entity.PostID) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.guard.RequireOwner(actor, post.Creator, "delete this post"); err != nil {
		return err
	}

	err = s.store.Atomic(ctx, func(tx *store.Tx) error {
		if err := s.notify.PostDeleted(ctx, tx, postID); err != nil {
			return err
		}
		if err := tx.DeleteAnswersForPost(ctx, postID); err != nil {
			return err
		}
		if err := tx.DeleteLikesForPost(ctx, postID); err != nil {
			return err
		}
		if err := tx.DeleteSavedRefsForPost(ctx, postID); err != nil {
			return err
		}
		return tx.DeletePost(ctx, postID)
	})
	if err != nil {
		return err
	}

	if post.ImageURL != "" {
		s.dropSideEffect(s.blobs.Delete(post.ImageURL))
	}

	s.log.Info("post deleted",
		"post", string(postID), "answers", len(post.Answers))
	return nil
}

// ToggleLike flips actor's like on a post.
//
// Like present: remove it and the matching like notification. Like
// absent: add it and, unless actor owns the post, create the like
// notification. Both sides run in one atomic group, so like membership
// and notification existence never drift.
func (s *Service) ToggleLike(ctx context.Context, actor entity.UserID, postID entity.PostID) (entity.Post, error) {
	if _, err := s.store.GetUser(ctx, actor); err != nil {
		return entity.Post{}, err
	}
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return entity.Post{}, err
	}

	err = s.store.Atomic(ctx, func(tx *store.Tx) error {
		liked, err := tx.HasLike(ctx, postID, actor)
		if err != nil {
			return err
		}

		if liked {
			if err := tx.RemoveLike(ctx, postID, actor); err != nil {
				return err
			}
			return s.notify.LikeRemoved(ctx, tx, postID, actor)
		}

		if err := tx.AddLike(ctx, postID, actor, s.now()); err != nil {
			return err
		}
		return s.notify.LikeAdded(ctx, tx, postID, actor, post.Creator)
	})
	if err != nil {
		return entity.Post{}, err
	}

	return s.store.GetPost(ctx, postID)
}

// GetPost retrieves one post with its projections.
func (s *Service) GetPost(ctx context.Context, postID entity.PostID) (entity.Post, error) {
	return s.store.GetPost(ctx, postID)
}

// ListPosts returns all posts newest-first.
func (s *Service) ListPosts(ctx context.Context) ([]entity.Post, error) {
	return s.store.ListPosts(ctx)
}

// ListPostsByUser returns a user's posts newest-first. A user with no
// posts yields an empty sequence, not an error.
func (s *Service) ListPostsByUser(ctx context.Context, userID entity.UserID) ([]entity.Post, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListPostsByUser(ctx, userID)
}

func validatePostInput(title, question string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.New(apperr.KindValidation, "title must not be empty")
	}
	if strings.TrimSpace(question) == "" {
		return apperr.New(apperr.KindValidation, "question must not be empty")
	}
	return nil
}
