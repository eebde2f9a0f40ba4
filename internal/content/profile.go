package content

import (
	"context"
	"strings"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
)

// ProfileUpdate is the input for UpdateProfile. An empty ImageURL keeps
// the current image; a new one replaces it and schedules the old file
// for fire-and-forget deletion after the update lands.
type ProfileUpdate struct {
	Name     string
	Bio      string
	ImageURL string
}

// UpdateProfile updates a user's own profile. Only the profile owner may
// edit it.
//
// Renames do not rewrite Author snapshots on existing answers: answers
// keep the display name they were published under.
func (s *Service) UpdateProfile(ctx context.Context, actor, userID entity.UserID, in ProfileUpdate) (entity.User, error) {
	if strings.TrimSpace(in.Name) == "" {
		return entity.User{}, apperr.New(apperr.KindValidation, "name must not be empty")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return entity.User{}, err
	}
	if err := s.guard.RequireOwner(actor, user.ID, "edit this profile"); err != nil {
		return entity.User{}, err
	}

	imageURL := user.ImageURL
	if in.ImageURL != "" {
		imageURL = in.ImageURL
	}

	if err := s.store.UpdateUserProfile(ctx, userID, in.Name, in.Bio, imageURL, s.now()); err != nil {
		return entity.User{}, err
	}

	if in.ImageURL != "" && user.ImageURL != "" && user.ImageURL != in.ImageURL {
		s.dropSideEffect(s.blobs.Delete(user.ImageURL))
	}

	return s.store.GetUser(ctx, userID)
}

// SavePost adds a post to the actor's own saved set. Saving an already
// saved post is a no-op. Only the set's owner may modify it.
func (s *Service) SavePost(ctx context.Context, actor, userID entity.UserID, postID entity.PostID) (entity.User, error) {
	if err := s.guard.RequireOwner(actor, userID, "modify this user's saved posts"); err != nil {
		return entity.User{}, err
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return entity.User{}, err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return entity.User{}, err
	}

	if err := s.store.AddSavedPost(ctx, userID, postID, s.now()); err != nil {
		return entity.User{}, err
	}
	return s.store.GetUser(ctx, userID)
}

// UnsavePost removes a post from the actor's own saved set.
// Fails NotFound when the post is not saved.
func (s *Service) UnsavePost(ctx context.Context, actor, userID entity.UserID, postID entity.PostID) (entity.User, error) {
	if err := s.guard.RequireOwner(actor, userID, "modify this user's saved posts"); err != nil {
		return entity.User{}, err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return entity.User{}, err
	}

	if err := s.store.RemoveSavedPost(ctx, userID, postID); err != nil {
		return entity.User{}, err
	}
	return s.store.GetUser(ctx, userID)
}

// GetUser retrieves a user with the post/answer/saved projections.
func (s *Service) GetUser(ctx context.Context, userID entity.UserID) (entity.User, error) {
	return s.store.GetUser(ctx, userID)
}

// ListUsers returns all users newest-first.
func (s *Service) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.store.ListUsers(ctx)
}
