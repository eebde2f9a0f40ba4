package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
)

// InsertPost inserts a post record.
func (c queries) InsertPost(ctx context.Context, p entity.Post) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO posts (id, title, question, image_url, creator, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		string(p.ID),
		p.Title,
		p.Question,
		p.ImageURL,
		string(p.Creator),
		ts(p.CreatedAt),
		ts(p.UpdatedAt),
	)
	if err != nil {
		return wrapDB(err, "could not create the post")
	}
	return nil
}

// GetPost retrieves a post by id with its projections: Likes in like
// order (earliest first) and Answers in answer order (earliest first).
// Fails NotFound if absent.
func (c queries) GetPost(ctx context.Context, id entity.PostID) (entity.Post, error) {
	row := c.q.QueryRowContext(ctx, `
		SELECT id, title, question, image_url, creator, created_at, updated_at
		FROM posts
		WHERE id = ?
	`, string(id))

	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Post{}, apperr.New(apperr.KindNotFound,
				"could not find a post for the provided id")
		}
		return entity.Post{}, wrapDB(err, "could not load the post")
	}

	if err := c.loadPostRefs(ctx, &p); err != nil {
		return entity.Post{}, err
	}
	return p, nil
}

// ListPosts returns all posts newest-first, each with its projections.
// Returns an empty slice (not nil) when there are none.
func (c queries) ListPosts(ctx context.Context) ([]entity.Post, error) {
	return c.listPosts(ctx, `
		SELECT id, title, question, image_url, creator, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC, id DESC
	`)
}

// ListPostsByUser returns creator's posts newest-first.
func (c queries) ListPostsByUser(ctx context.Context, creator entity.UserID) ([]entity.Post, error) {
	return c.listPosts(ctx, `
		SELECT id, title, question, image_url, creator, created_at, updated_at
		FROM posts
		WHERE creator = ?
		ORDER BY created_at DESC, id DESC
	`, string(creator))
}

func (c queries) listPosts(ctx context.Context, query string, args ...any) ([]entity.Post, error) {
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDB(err, "could not list posts")
	}
	defer rows.Close()

	posts := []entity.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, wrapDB(err, "could not list posts")
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDB(err, "could not list posts")
	}

	for i := range posts {
		if err := c.loadPostRefs(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// UpdatePostContent updates title and question only.
// Fails NotFound if the post is absent.
func (c queries) UpdatePostContent(ctx context.Context, id entity.PostID, title, question string, updatedAt time.Time) error {
	res, err := c.q.ExecContext(ctx, `
		UPDATE posts SET title = ?, question = ?, updated_at = ? WHERE id = ?
	`, title, question, ts(updatedAt), string(id))
	if err != nil {
		return wrapDB(err, "could not update the post")
	}
	return requireAffected(res, "could not find a post for the provided id")
}

// DeletePost deletes the post row only. Child answers, likes, saved-post
// references and notifications must be removed first, in the same atomic
// group, or the foreign keys reject the delete.
func (c queries) DeletePost(ctx context.Context, id entity.PostID) error {
	res, err := c.q.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, string(id))
	if err != nil {
		return wrapDB(err, "could not delete the post")
	}
	return requireAffected(res, "could not find a post for the provided id")
}

// HasLike reports whether userID is in the post's like set.
func (c queries) HasLike(ctx context.Context, postID entity.PostID, userID entity.UserID) (bool, error) {
	var count int
	err := c.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM post_likes WHERE post_id = ? AND user_id = ?
	`, string(postID), string(userID)).Scan(&count)
	if err != nil {
		return false, wrapDB(err, "could not check the like")
	}
	return count > 0, nil
}

// AddLike adds userID to the post's like set.
// Adding an existing like is a no-op (set semantics).
func (c queries) AddLike(ctx context.Context, postID entity.PostID, userID entity.UserID, at time.Time) error {
	_, err := c.q.ExecContext(ctx, `
		INSERT INTO post_likes (post_id, user_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(post_id, user_id) DO NOTHING
	`, string(postID), string(userID), ts(at))
	if err != nil {
		return wrapDB(err, "could not like the post")
	}
	return nil
}

// RemoveLike removes userID from the post's like set.
// Removing an absent like is a no-op.
func (c queries) RemoveLike(ctx context.Context, postID entity.PostID, userID entity.UserID) error {
	_, err := c.q.ExecContext(ctx, `
		DELETE FROM post_likes WHERE post_id = ? AND user_id = ?
	`, string(postID), string(userID))
	if err != nil {
		return wrapDB(err, "could not unlike the post")
	}
	return nil
}

// ListLikes returns the like set of a post in like order (earliest first),
// mirroring append order on the original list representation.
func (c queries) ListLikes(ctx context.Context, postID entity.PostID) ([]entity.UserID, error) {
	ids, err := c.idColumn(ctx, `
		SELECT user_id FROM post_likes WHERE post_id = ?
		ORDER BY created_at ASC, user_id ASC
	`, string(postID), "could not load the post's likes")
	if err != nil {
		return nil, err
	}
	likes := make([]entity.UserID, len(ids))
	for i, id := range ids {
		likes[i] = entity.UserID(id)
	}
	return likes, nil
}

// DeleteLikesForPost removes the post's entire like set.
// Part of the delete-post cascade.
func (c queries) DeleteLikesForPost(ctx context.Context, postID entity.PostID) error {
	_, err := c.q.ExecContext(ctx, `
		DELETE FROM post_likes WHERE post_id = ?
	`, string(postID))
	if err != nil {
		return wrapDB(err, "could not delete the post")
	}
	return nil
}

// DeleteSavedRefsForPost removes the post from every user's saved set.
// Part of the delete-post cascade.
func (c queries) DeleteSavedRefsForPost(ctx context.Context, postID entity.PostID) error {
	_, err := c.q.ExecContext(ctx, `
		DELETE FROM saved_posts WHERE post_id = ?
	`, string(postID))
	if err != nil {
		return wrapDB(err, "could not delete the post")
	}
	return nil
}

// loadPostRefs fills the like and answer projections of p.
func (c queries) loadPostRefs(ctx context.Context, p *entity.Post) error {
	likes, err := c.ListLikes(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Likes = likes

	answerIDs, err := c.idColumn(ctx, `
		SELECT id FROM answers WHERE post_id = ?
		ORDER BY created_at ASC, id ASC
	`, string(p.ID), "could not load the post's answers")
	if err != nil {
		return err
	}
	p.Answers = make([]entity.AnswerID, len(answerIDs))
	for i, id := range answerIDs {
		p.Answers[i] = entity.AnswerID(id)
	}
	return nil
}

func scanPost(s scanner) (entity.Post, error) {
	var (
		p                  entity.Post
		id, creator        string
		createdAt, updated int64
	)
	if err := s.Scan(&id, &p.Title, &p.Question, &p.ImageURL, &creator, &createdAt, &updated); err != nil {
		return entity.Post{}, err
	}
	p.ID = entity.PostID(id)
	p.Creator = entity.UserID(creator)
	p.CreatedAt = fromTS(createdAt)
	p.UpdatedAt = fromTS(updated)
	return p, nil
}
