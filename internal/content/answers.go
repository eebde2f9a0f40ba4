package content

import (
	"context"
	"strings"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
	"github.com/quandary-app/quandary/internal/store"
)

// NewAnswer is the input for CreateAnswer. Author is the display-name
// snapshot recorded on the answer; it is frozen at creation time.
type NewAnswer struct {
	Text   string
	Author string
	PostID entity.PostID
}

// CreateAnswer creates an answer by actor on a post.
//
// Creator and post must exist (NotFound otherwise). The insert and the
// answer notification fan-out form one atomic group; the post's and
// creator's answer lists are reverse-index projections and need no
// explicit update.
func (s *Service) CreateAnswer(ctx context.Context, actor entity.UserID, in NewAnswer) (entity.Answer, error) {
	if strings.TrimSpace(in.Text) == "" {
		return entity.Answer{}, apperr.New(apperr.KindValidation, "answer must not be empty")
	}
	if strings.TrimSpace(in.Author) == "" {
		return entity.Answer{}, apperr.New(apperr.KindValidation, "author must not be empty")
	}

	if _, err := s.store.GetUser(ctx, actor); err != nil {
		return entity.Answer{}, err
	}
	post, err := s.store.GetPost(ctx, in.PostID)
	if err != nil {
		return entity.Answer{}, err
	}

	now := s.now()
	answer := entity.Answer{
		ID:        entity.AnswerID(s.ids.NewID()),
		Text:      in.Text,
		Author:    in.Author,
		Creator:   actor,
		PostID:    in.PostID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.store.Atomic(ctx, func(tx *store.Tx) error {
		if err := tx.InsertAnswer(ctx, answer); err != nil {
			return err
		}
		return s.notify.AnswerCreated(ctx, tx, answer, post.Creator)
	})
	if err != nil {
		return entity.Answer{}, err
	}
	return answer, nil
}

// UpdateAnswer replaces the answer text. The ownership check follows the
// guard's answer policy (strict by default, permissive when configured).
func (s *Service) UpdateAnswer(ctx context.Context, actor entity.UserID, answerID entity.AnswerID, text string) (entity.Answer, error) {
	if strings.TrimSpace(text) == "" {
		return entity.Answer{}, apperr.New(apperr.KindValidation, "answer must not be empty")
	}

	answer, err := s.store.GetAnswer(ctx, answerID)
	if err != nil {
		return entity.Answer{}, err
	}
	if err := s.guard.RequireAnswerOwner(actor, answer.Creator, "edit this answer"); err != nil {
		return entity.Answer{}, err
	}

	if err := s.store.UpdateAnswerText(ctx, answerID, text, s.now()); err != nil {
		return entity.Answer{}, err
	}
	return s.store.GetAnswer(ctx, answerID)
}

// DeleteAnswer deletes an answer and, in the same atomic group, any
// answer notification referencing it. The post's and creator's answer
// lists are projections and shrink automatically.
func (s *Service) DeleteAnswer(ctx context.Context, actor entity.UserID, answerID entity.AnswerID) error {
	answer, err := s.store.GetAnswer(ctx, answerID)
	if err != nil {
		return err
	}
	if err := s.guard.RequireAnswerOwner(actor, answer.Creator, "delete this answer"); err != nil {
		return err
	}

	return s.store.Atomic(ctx, func(tx *store.Tx) error {
		if err := tx.DeleteAnswer(ctx, answerID); err != nil {
			return err
		}
		return s.notify.AnswerDeleted(ctx, tx, answerID)
	})
}

// GetAnswer retrieves one answer.
func (s *Service) GetAnswer(ctx context.Context, answerID entity.AnswerID) (entity.Answer, error) {
	return s.store.GetAnswer(ctx, answerID)
}

// ListAnswers returns all answers newest-first.
func (s *Service) ListAnswers(ctx context.Context) ([]entity.Answer, error) {
	return s.store.ListAnswers(ctx)
}

// ListAnswersByUser returns a user's answers newest-first.
func (s *Service) ListAnswersByUser(ctx context.Context, userID entity.UserID) ([]entity.Answer, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListAnswersByUser(ctx, userID)
}

// ListAnswersByPost returns a post's answers newest-first.
func (s *Service) ListAnswersByPost(ctx context.Context, postID entity.PostID) ([]entity.Answer, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.store.ListAnswersByPost(ctx, postID)
}
