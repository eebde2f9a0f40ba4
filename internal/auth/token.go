package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quandary-app/quandary/internal/apperr"
	"github.com/quandary-app/quandary/internal/entity"
)

// Claims is the token payload: the authenticated actor id and email.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. The secret must not be empty; now is
// the time source expiry is checked against (inject a deterministic clock
// in tests, nil means time.Now).
func NewTokenIssuer(secret string, ttl time.Duration, now func() time.Time) (*TokenIssuer, error) {
	if secret == "" {
		return nil, apperr.New(apperr.KindValidation, "token secret must not be empty")
	}
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue signs a token for the given account, valid for the configured TTL
// from issuedAt.
func (t *TokenIssuer) Issue(userID entity.UserID, email string, issuedAt time.Time) (string, error) {
	claims := Claims{
		UserID: string(userID),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "could not issue a token", err)
	}
	return signed, nil
}

// Verify parses a token and returns the actor id it certifies.
// Any parse, signature or expiry failure is Forbidden.
func (t *TokenIssuer) Verify(token string) (entity.UserID, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return "", apperr.Wrap(apperr.KindForbidden, "authentication failed", err)
	}
	return entity.UserID(claims.UserID), nil
}
