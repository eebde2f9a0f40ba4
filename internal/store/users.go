package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
)

// InsertUser inserts a user record.
// A duplicate email surfaces as ValidationFailed, matching the signup
// contract: the email column is UNIQUE.
func (c queries) InsertUser(ctx context.Context, u entity.User) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO users
		(id, name, email, password_hash, image_url, bio, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(u.ID),
		u.Name,
		u.Email,
		u.PasswordHash,
		u.ImageURL,
		u.Bio,
		ts(u.CreatedAt),
		ts(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(apperr.KindValidation,
				"user exists already, please login instead", err)
		}
		return wrapDB(err, "could not create the user")
	}
	return nil
}

// GetUser retrieves a user by id, including the reverse-index projections
// (posts, answers, saved posts), each newest-first.
// Fails NotFound if absent.
func (c queries) GetUser(ctx context.Context, id entity.UserID) (entity.User, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, image_url, bio, created_at, updated_at
		FROM users
		WHERE id = ?
	`, string(id))

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.User{}, apperr.New(apperr.KindNotFound,
				"could not find a user for the provided id")
		}
		return entity.User{}, wrapDB(err, "could not load the user")
	}

	if err := c.loadUserRefs(ctx, &u); err != nil {
		return entity.User{}, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, without the reference
// projections. Used by the login path, which only needs credentials.
// Fails NotFound if absent.
func (c queries) GetUserByEmail(ctx context.Context, email string) (entity.User, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, image_url, bio, created_at, updated_at
		FROM users
		WHERE email = ?
	`, email)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.User{}, apperr.New(apperr.KindNotFound,
				"could not find a user for the provided email")
		}
		return entity.User{}, wrapDB(err, "could not load the user")
	}
	return u, nil
}

// ListUsers returns all users newest-first, without the reference
// projections. Returns an empty slice (not nil) when there are none.
func (c queries) ListUsers(ctx context.Context) ([]entity.User, error) {
	rows, err := c.q.QueryContext(ctx, `
		SELECT id, name, email, password_hash, image_url, bio, created_at, updated_at
		FROM users
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, wrapDB(err, "could not list users")
	}
	defer rows.Close()

	users := []entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapDB(err, "could not list users")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err, "could not list users")
	}
	return users, nil
}

// UpdateUserProfile updates name, bio and image url.
// Fails NotFound if the user is absent.
func (c queries) UpdateUserProfile(ctx context.Context, id entity.UserID, name, bio, imageURL string, updatedAt time.Time) error {
	res, err := c.q.ExecContext(ctx, `
		UPDATE users
		SET name = ?, bio = ?, image_url = ?, updated_at = ?
		WHERE id = ?
	`, name, bio, imageURL, ts(updatedAt), string(id))
	if err != nil {
		return wrapDB(err, "could not update the profile")
	}
	return requireAffected(res, "could not find a user for the provided id")
}

// AddSavedPost records postID in the user's saved set.
// Saving an already-saved post is a no-op (set semantics).
func (c queries) AddSavedPost(ctx context.Context, userID entity.UserID, postID entity.PostID, at time.Time) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO saved_posts (user_id, post_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, post_id) DO NOTHING
	`, string(userID), string(postID), ts(at))
	if err != nil {
		return wrapDB(err, "could not save the post")
	}
	return nil
}

// RemoveSavedPost removes postID from the user's saved set.
// Fails NotFound if the post was not saved.
func (c queries) RemoveSavedPost(ctx context.Context, userID entity.UserID, postID entity.PostID) error {
	res, err := c.q.ExecContext(ctx, `
		DELETE FROM saved_posts WHERE user_id = ? AND post_id = ?
	`, string(userID), string(postID))
	if err != nil {
		return wrapDB(err, "could not unsave the post")
	}
	return requireAffected(res, "post is not saved")
}

// loadUserRefs fills the reverse-index projections of u.
func (c queries) loadUserRefs(ctx context.Context, u *entity.User) error {
	postIDs, err := c.idColumn(ctx, `
		SELECT id FROM posts WHERE creator = ?
		ORDER BY created_at DESC, id DESC
	`, string(u.ID), "could not load the user's posts")
	if err != nil {
		return err
	}
	u.Posts = make([]entity.PostID, len(postIDs))
	for i, id := range postIDs {
		u.Posts[i] = entity.PostID(id)
	}

	answerIDs, err := c.idColumn(ctx, `
		SELECT id FROM answers WHERE creator = ?
		ORDER BY created_at DESC, id DESC
	`, string(u.ID), "could not load the user's answers")
	if err != nil {
		return err
	}
	u.Answers = make([]entity.AnswerID, len(answerIDs))
	for i, id := range answerIDs {
		u.Answers[i] = entity.AnswerID(id)
	}

	savedIDs, err := c.idColumn(ctx, `
		SELECT post_id FROM saved_posts WHERE user_id = ?
		ORDER BY created_at DESC, post_id DESC
	`, string(u.ID), "could not load the user's saved posts")
	if err != nil {
		return err
	}
	u.SavedPosts = make([]entity.PostID, len(savedIDs))
	for i, id := range savedIDs {
		u.SavedPosts[i] = entity.PostID(id)
	}

	return nil
}

// idColumn runs a single-column query and collects the values.
// Always returns a non-nil slice on success.
func (c queries) idColumn(ctx context.Context, query, arg, failMsg string) ([]string, error) {
	rows, err := c.q.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, wrapDB(err, failMsg)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDB(err, failMsg)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err, failMsg)
	}
	return ids, nil
}

// requireAffected converts a zero-row mutation into NotFound.
func requireAffected(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDB(err, "could not complete the operation")
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, notFoundMsg)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (entity.User, error) {
	var (
		u                  entity.User
		id                 string
		createdAt, updated int64
	)
	if err := s.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.ImageURL, &u.Bio, &createdAt, &updated); err != nil {
		return entity.User{}, err
	}
	u.ID = entity.UserID(id)
	u.CreatedAt = fromTS(createdAt)
	u.UpdatedAt = fromTS(updated)
	return u, nil
}
