package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
)

// InsertAnswer inserts an answer record.
func (c queries) InsertAnswer(ctx context.Context, a entity.Answer) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO answers (id, answer, author, creator, post_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		string(a.ID),
		a.Text,
		a.Author,
		string(a.Creator),
		string(a.PostID),
		ts(a.CreatedAt),
		ts(a.UpdatedAt),
	)
	if err != nil {
		return wrapDB(err, "could not create the answer")
	}
	return nil
}

// GetAnswer retrieves an answer by id. Fails NotFound if absent.
func (c queries) GetAnswer(ctx context.Context, id entity.AnswerID) (entity.Answer, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, answer, author, creator, post_id, created_at, updated_at
		FROM answers
		WHERE id = ?
	`, string(id))

	a, err := scanAnswer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Answer{}, apperr.New(apperr.KindNotFound,
				"could not find an answer for the provided id")
		}
		return entity.Answer{}, wrapDB(err, "could not load the answer")
	}
	return a, nil
}

// ListAnswers returns all answers newest-first.
// Returns an empty slice (not nil) when there are none.
func (c queries) ListAnswers(ctx context.Context) ([]entity.Answer, error) {
	return c.listAnswers(ctx, `
		SELECT id, answer, author, creator, post_id, created_at, updated_at
		FROM answers
		ORDER BY created_at DESC, id DESC
	`)
}

// ListAnswersByUser returns creator's answers newest-first.
func (c queries) ListAnswersByUser(ctx context.Context, creator entity.UserID) ([]entity.Answer, error) {
	return c.listAnswers(ctx, `
		SELECT id, answer, author, creator, post_id, created_at, updated_at
		FROM answers
		WHERE creator = ?
		ORDER BY created_at DESC, id DESC
	`, string(creator))
}

// ListAnswersByPost returns the post's answers newest-first.
func (c queries) ListAnswersByPost(ctx context.Context, postID entity.PostID) ([]entity.Answer, error) {
	return c.listAnswers(ctx, `
		SELECT id, answer, author, creator, post_id, created_at, updated_at
		FROM answers
		WHERE post_id = ?
		ORDER BY created_at DESC, id DESC
	`, string(postID))
}

func (c queries) listAnswers(ctx context.Context, query string, args ...any) ([]entity.Answer, error) {
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDB(err, "could not list answers")
	}
	defer rows.Close()

	answers := []entity.Answer{}
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, wrapDB(err, "could not list answers")
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err, "could not list answers")
	}
	return answers, nil
}

// UpdateAnswerText updates the answer body.
// Fails NotFound if the answer is absent.
func (c queries) UpdateAnswerText(ctx context.Context, id entity.AnswerID, text string, updatedAt time.Time) error {
	res, err := c.q.ExecContext(ctx, `
		UPDATE answers SET answer = ?, updated_at = ? WHERE id = ?
	`, text, ts(updatedAt), string(id))
	if err != nil {
		return wrapDB(err, "could not update the answer")
	}
	return requireAffected(res, "could not find an answer for the provided id")
}

// DeleteAnswer deletes a single answer row.
// Fails NotFound if the answer is absent.
func (c queries) DeleteAnswer(ctx context.Context, id entity.AnswerID) error {
	res, err := c.q.ExecContext(ctx, `DELETE FROM answers WHERE id = ?`, string(id))
	if err != nil {
		return wrapDB(err, "could not delete the answer")
	}
	return requireAffected(res, "could not find an answer for the provided id")
}

// DeleteAnswersForPost deletes all answers of a post. Their notifications
// are cascaded separately by post_id, so no ids need to come back.
// Deleting zero answers is fine.
func (c queries) DeleteAnswersForPost(ctx context.Context, postID entity.PostID) error {
	if _, err := c.q.ExecContext(ctx, `DELETE FROM answers WHERE post_id = ?`, string(postID)); err != nil {
		return wrapDB(err, "could not delete the post's answers")
	}
	return nil
}

func scanAnswer(s scanner) (entity.Answer, error) {
	var (
		a                    entity.Answer
		id, creator, postID  string
		createdAt, updatedAt int64
	)
	if err := s.Scan(&id, &a.Text, &a.Author, &creator, &postID, &createdAt, &updatedAt); err != nil {
		return entity.Answer{}, err
	}
	a.ID = entity.AnswerID(id)
	a.Creator = entity.UserID(creator)
	a.PostID = entity.PostID(postID)
	a.CreatedAt = fromTS(createdAt)
	a.UpdatedAt = fromTS(updatedAt)
	return a, nil
}
