package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/sakif/gitstats/internal/apperror"
)

// GitHubUser is the part of GET /user this application keeps.
//
// API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// Identity is the result of a completed login: who the user is, and the
// access token that lets the server call the GitHub API on their behalf.
type Identity struct {
	User        GitHubUser
	AccessToken string
}

// OAuthConfig configures a GitHubProvider.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	// CallbackURL must match the "Authorization callback URL" of the OAuth app.
	CallbackURL string
	// APIBaseURL is where GET /user is sent. Defaults to https://api.github.com.
	APIBaseURL string
	// Endpoint overrides github.Endpoint, for GitHub Enterprise or tests.
	Endpoint *oauth2.Endpoint
}

// GitHubProvider runs the OAuth 2.0 authorization code flow against GitHub.
//
// AUTHORIZATION CODE FLOW:
//  1. The browser is redirected to GitHub with our client id and scopes.
//  2. The user approves; GitHub redirects back with a short-lived code.
//  3. The server trades the code for an access token (server-to-server,
//     using the client secret) and calls GET /user with it.
//
// The access token never reaches the browser.
type GitHubProvider struct {
	config     *oauth2.Config
	apiBaseURL string
}

// NewGitHubProvider creates a GitHubProvider.
//
// Scopes:
//   - "read:user"  - the public profile (id, login, avatar)
//   - "user:email" - the primary email address
func NewGitHubProvider(cfg OAuthConfig) *GitHubProvider {
	endpoint := github.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	apiBase := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if apiBase == "" {
		apiBase = "https://api.github.com"
	}
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     endpoint,
		},
		apiBaseURL: apiBase,
	}
}

// AuthURL returns the GitHub authorization URL carrying state.
//
// The state is a random value also stored in a short-lived cookie; the
// callback rejects any request whose state does not match it (CSRF).
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for the user's identity. Every
// failure wraps apperror.ErrUpstream: GitHub, not the caller, said no.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	id, err := p.exchange(ctx, code)
	if err != nil {
		return nil, apperror.Upstream("GitHub login failed", err)
	}
	return id, nil
}

func (p *GitHubProvider) exchange(ctx context.Context, code string) (*Identity, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// The oauth2 client adds "Authorization: Bearer <token>" to every request.
	client := p.config.Client(ctx, tok)
	resp, err := client.Get(p.apiBaseURL + "/user")
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}
	if ghUser.ID == 0 || ghUser.Login == "" {
		return nil, errors.New("auth: GitHub returned an invalid user")
	}

	return &Identity{User: ghUser, AccessToken: tok.AccessToken}, nil
}
