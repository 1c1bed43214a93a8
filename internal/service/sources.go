package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakif/gitstats/internal/apperror"
	"github.com/sakif/gitstats/internal/config"
	"github.com/sakif/gitstats/internal/model"
	"github.com/sakif/gitstats/internal/provider"
)

// StatsSource computes a complete statistics snapshot. *provider.Client
// implements it.
type StatsSource interface {
	Snapshot(ctx context.Context) (*model.StatsSnapshot, error)
}

// SourceFactory builds the StatsSource for one user.
type SourceFactory interface {
	ForUser(user *model.User) (StatsSource, error)
}

// TokenOpener decrypts a stored access token. *auth.Sealer implements it.
type TokenOpener interface {
	Open(sealed string) (string, error)
}

// ClientFactory creates GitHub API clients bound to one user's login.
//
// In "token" mode the client authenticates with the user's own OAuth token,
// opened from the store. In "app" mode it authenticates as the OAuth app
// (client id and secret), which sees public data only but needs no stored
// token.
type ClientFactory struct {
	fetcher *provider.Fetcher
	cfg     provider.Config
	mode    string
	app     provider.AppCredentials
	opener  TokenOpener
}

// NewClientFactory wires a ClientFactory. mode is config.CredentialModeToken
// or config.CredentialModeApp; opener may be nil in app mode.
func NewClientFactory(fetcher *provider.Fetcher, cfg provider.Config, mode string, app provider.AppCredentials, opener TokenOpener) *ClientFactory {
	return &ClientFactory{
		fetcher: fetcher,
		cfg:     cfg,
		mode:    mode,
		app:     app,
		opener:  opener,
	}
}

var _ SourceFactory = (*ClientFactory)(nil)

// ForUser returns a client for user.Login.
func (f *ClientFactory) ForUser(user *model.User) (StatsSource, error) {
	client, err := f.Client(user)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Client is ForUser with the concrete type, for callers that need more than
// Snapshot.
func (f *ClientFactory) Client(user *model.User) (*provider.Client, error) {
	if user == nil || user.Login == "" {
		return nil, errors.New("service/stats: user login is required")
	}

	if f.mode == config.CredentialModeApp {
		return provider.NewClient(f.fetcher, f.cfg, user.Login, f.app), nil
	}

	if f.opener == nil || user.AccessToken == "" {
		return nil, apperror.Unauthorized("no GitHub authorization on record, please log in again")
	}
	token, err := f.opener.Open(user.AccessToken)
	if err != nil {
		return nil, &apperror.AppError{
			Err:     fmt.Errorf("%w: %w", apperror.ErrUnauthorized, err),
			Message: "stored GitHub authorization is unusable, please log in again",
		}
	}
	return provider.NewClient(f.fetcher, f.cfg, user.Login, provider.TokenCredentials{AccessToken: token}), nil
}
