package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

// ErrInvalidCredentials is returned for any failed login. It does not say
// which of username or password was wrong.
var ErrInvalidCredentials = apperrors.Unauthorized("Invalid username or password")

// Token is the result of a successful login.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticator checks the single admin credential.
type Authenticator struct {
	username     string
	passwordHash []byte
	tokens       *JWTManager
	logger       *slog.Logger
}

// NewAuthenticator creates an authenticator for the configured admin.
// passwordHash is a bcrypt hash.
func NewAuthenticator(username, passwordHash string, tokens *JWTManager, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		username:     username,
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
		logger:       logger,
	}
}

// Login returns a token when username and password match the admin.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Token, error) {
	// The hash is compared even for a wrong username so both paths cost the same.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		a.logger.WarnContext(ctx, "admin login rejected", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	signed, expires, err := a.tokens.Generate(a.username, RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	a.logger.InfoContext(ctx, "admin logged in", slog.String("username", username))
	return &Token{Token: signed, ExpiresAt: expires}, nil
}
