// Package service holds the business logic between the HTTP handlers and
// the stores:
//
//	AuthHandler  → AuthService  → UserRepository
//	                            ↘ TokenService, Sealer
//	StatsHandler → StatsService → UserRepository
//	                            ↘ SourceFactory → provider.Client → GitHub
//
// Nothing here reads requests or writes cookies; that stays in handler.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/gitstats/internal/auth"
	"github.com/sakif/gitstats/internal/model"
	"github.com/sakif/gitstats/internal/repository"
)

// TokenSealer encrypts the GitHub access token before it is stored.
// *auth.Sealer implements it.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
}

// AuthService turns a completed GitHub login into a stored user and a
// session token.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	sealer TokenSealer
	logger *slog.Logger
}

// NewAuthService wires an AuthService.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	sealer TokenSealer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		sealer: sealer,
		logger: logger,
	}
}

// AuthResult bundles the stored user and the session token so the handler
// can set the cookie and redirect in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub upserts the user behind identity (keyed by GitHub
// id), stores their sealed access token and issues a session token.
//
// The cached statistics survive a re-login: they describe the same GitHub
// account, whatever token was used to compute them.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, identity *auth.Identity) (*AuthResult, error) {
	if identity == nil {
		return nil, errors.New("service/auth: identity must not be nil")
	}

	sealed, err := s.sealer.Seal(identity.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("service/auth: sealing access token: %w", err)
	}

	user := &model.User{
		GitHubID:    identity.User.ID,
		Login:       identity.User.Login,
		Email:       identity.User.Email,
		AvatarURL:   identity.User.AvatarURL,
		AccessToken: sealed,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", identity.User.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, errors.New("service/auth: user ID must not be empty")
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

// ValidateToken returns the user ID carried by a session token.
func (s *AuthService) ValidateToken(token string) (string, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return "", fmt.Errorf("service/auth: validating token: %w", err)
	}
	return userID, nil
}
