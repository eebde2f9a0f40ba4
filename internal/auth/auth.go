// Package auth implements the identity collaborator: credential issuance
// and verification.
//
// It owns signup and login. Everything downstream of it only sees an
// authenticated actor id, which the consistency manager and the guard
// take as an explicit parameter and trust as-is.
package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
	"github.com/quandary-app/quandary/internal/idgen"
	"github.com/quandary-app/quandary/internal/store"
)

// MinPasswordLength matches the account schema's minimum.
const MinPasswordLength = 5

// Service issues and verifies credentials.
type Service struct {
	store  *store.Store
	tokens *TokenIssuer
	ids    idgen.Generator
	now    func() time.Time
	cost   int
}

// NewService creates an auth service.
// cost is the bcrypt cost factor; now provides timestamps (inject a
// deterministic clock in tests).
func NewService(s *store.Store, tokens *TokenIssuer, ids idgen.Generator, now func() time.Time, cost int) *Service {
	return &Service{store: s, tokens: tokens, ids: ids, now: now, cost: cost}
}

// Signup creates an account and returns it with a signed token.
func (s *Service) Signup(ctx context.Context, name, email, password string) (entity.User, string, error) {
	user, err := s.CreateAccount(ctx, name, email, password)
	if err != nil {
		return entity.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.CreatedAt)
	if err != nil {
		return entity.User{}, "", err
	}
	return user, token, nil
}

// CreateAccount creates an account without issuing a token. Used by
// Signup and by the adduser CLI command.
//
// The email must be unused; a taken email fails ValidationFailed with the
// same message whether it is caught by the pre-check or by the unique
// constraint on a concurrent race.
func (s *Service) CreateAccount(ctx context.Context, name, email, password string) (entity.User, error) {
	if err := validateSignup(name, email, password); err != nil {
		return entity.User{}, err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return entity.User{}, apperr.New(apperr.KindValidation,
			"user exists already, please login instead")
	} else if !apperr.IsNotFound(err) {
		return entity.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return entity.User{}, apperr.Wrap(apperr.KindStorage,
			"could not create the user", err)
	}

	now := s.now()
	user := entity.User{
		ID:           entity.UserID(s.ids.NewID()),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Posts:        []entity.PostID{},
		Answers:      []entity.AnswerID{},
		SavedPosts:   []entity.PostID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.InsertUser(ctx, user); err != nil {
		return entity.User{}, err
	}
	return user, nil
}

// Login verifies credentials and returns the account with a signed token.
// Unknown email and wrong password both fail Forbidden with the same
// message - the caller cannot probe which emails exist.
func (s *Service) Login(ctx context.Context, email, password string) (entity.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return entity.User{}, "", errInvalidCredentials()
		}
		return entity.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return entity.User{}, "", errInvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID, user.Email, s.now())
	if err != nil {
		return entity.User{}, "", err
	}
	return user, token, nil
}

func errInvalidCredentials() error {
	return apperr.New(apperr.KindForbidden, "invalid credentials, could not log you in")
}

func validateSignup(name, email, password string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return apperr.New(apperr.KindValidation, "name must not be empty")
	case !strings.Contains(email, "@"):
		return apperr.New(apperr.KindValidation, "a valid email is required")
	case len(password) < MinPasswordLength:
		return apperr.Newf(apperr.KindValidation,
			"password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
