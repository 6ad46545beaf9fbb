// Package services – AuthService
//
// This file implements the AuthService, which owns account registration,
// credential verification, and token issuance. Passwords are hashed with
// bcrypt; sessions are stateless HS256 JWTs carrying the user id and role.
// The rest of the application never parses credentials itself: handlers and
// middleware receive an already-verified (userID, role) identity.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/civireport/go-civic-backend/internal/domain"
	"github.com/civireport/go-civic-backend/internal/repo"
)

// Identity is the authenticated principal attached to a request after token
// verification: a user id plus the role recorded at issuance time.
type Identity struct {
	UserID string
	Role   string
}

// AuthService implements registration, login, and token verification.
type AuthService struct {
	// DB is the database handle used for all account operations.
	DB *gorm.DB

	// Secret signs and verifies session tokens (HS256).
	Secret []byte

	// TokenTTL bounds the lifetime of issued tokens.
	TokenTTL time.Duration
}

// claims is the JWT payload for a session token.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Register creates a citizen account for the given name/email/password.
//
// Semantics and validation:
//   - name, email, and password must be non-blank; password must be at least
//     8 characters.
//   - The email must not already be registered; otherwise ErrEmailTaken.
//     The unique index on users.email is the final arbiter under concurrent
//     registrations; the pre-check only produces a friendlier error.
//   - New accounts always receive the citizen role.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	if _, err := repo.GetUserByEmail(ctx, s.DB, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u, err := repo.CreateUser(ctx, s.DB, name, email, string(hash), domain.RoleCitizen)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Login verifies the email/password pair and returns the user together with
// a signed session token. Unknown email and wrong password both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// ParseToken verifies a session token and returns the identity it carries.
// Any parsing or validation failure maps to ErrInvalidToken.
func (s *AuthService) ParseToken(tokenString string) (Identity, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.Secret, nil
	})
	if err != nil || !tok.Valid || c.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: c.Subject, Role: c.Role}, nil
}

// issueToken signs an HS256 token with the user id as subject and the role
// as a private claim.
func (s *AuthService) issueToken(u *domain.User) (string, error) {
	now := time.Now().UTC()
	ttl := s.TokenTTL
	if ttl == 0 {
		ttl = 2 * time.Hour
	}
	c := claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.Secret)
}
