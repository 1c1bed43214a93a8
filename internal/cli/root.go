// Package cli is the statsctl command line: it computes the same statistics
// as the web server for one GitHub login, without a database or a session.
//
// COMMANDS:
//
//	statsctl snapshot --login alice           all five aggregates
//	statsctl commits  --login alice <repo>    newest commits of one repository
//	statsctl gitlab projects                  projects visible to a GitLab token
//
// CREDENTIALS:
// --token (or GITHUB_TOKEN) authenticates as a user. Without a token,
// --client-id/--client-secret (or GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET)
// authenticate as an OAuth app. With neither, requests are anonymous and
// GitHub's lower rate limit applies. The gitlab commands use
// --private-token (or GITLAB_TOKEN) instead.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/gitstats/internal/provider"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// options are the flags shared by every subcommand.
type options struct {
	login        string
	token        string
	clientID     string
	clientSecret string
	apiURL       string
	policy       string
	format       string
	timeout      time.Duration
	verbose      bool

	gitlabURL    string
	privateToken string
}

// NewRootCmd builds the statsctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "statsctl",
		Short: "Compute GitHub statistics for a single user",
		Long: `statsctl computes the statistics shown on the stats page (commits per
repository, fork counts, additions and deletions, contributions and
stargazers) straight from the GitHub API and prints them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.login, "login", "", "GitHub login to report on (required)")
	flags.StringVar(&opts.token, "token", os.Getenv("GITHUB_TOKEN"), "OAuth access token [$GITHUB_TOKEN]")
	flags.StringVar(&opts.clientID, "client-id", os.Getenv("GITHUB_CLIENT_ID"), "OAuth app client id [$GITHUB_CLIENT_ID]")
	flags.StringVar(&opts.clientSecret, "client-secret", os.Getenv("GITHUB_CLIENT_SECRET"), "OAuth app client secret [$GITHUB_CLIENT_SECRET]")
	flags.StringVar(&opts.apiURL, "api-url", envOr("GITHUB_API_BASE_URL", provider.DefaultBaseURL), "GitHub API base URL [$GITHUB_API_BASE_URL]")
	flags.StringVar(&opts.policy, "policy", "empty", `what a failed request means: "empty" or "error"`)
	flags.StringVarP(&opts.format, "output", "o", FormatTable, `output format: "table" or "json"`)
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "timeout of each HTTP request")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every request to stderr")

	root.AddCommand(newSnapshotCmd(opts), newCommitsCmd(opts), newGitLabCmd(opts))
	return root
}

// Execute runs the command tree against os.Args.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (o *options) validate() error {
	if _, err := provider.ParseFailurePolicy(o.policy); err != nil {
		return err
	}
	switch o.format {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("unknown output format %q", o.format)
	}
	if o.timeout <= 0 {
		return errors.New("--timeout must be positive")
	}
	return nil
}

// requireLogin is checked by the GitHub commands, which all report on one user.
func (o *options) requireLogin() error {
	if o.login == "" {
		return errors.New("--login is required")
	}
	return nil
}

func (o *options) credentials() provider.Credentials {
	switch {
	case o.token != "":
		return provider.TokenCredentials{AccessToken: o.token}
	case o.clientID != "" && o.clientSecret != "":
		return provider.AppCredentials{ClientID: o.clientID, ClientSecret: o.clientSecret}
	}
	return nil
}

// fetcher builds a Fetcher that logs to stderr.
func (o *options) fetcher(stderr io.Writer) *provider.Fetcher {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return provider.NewFetcher(&http.Client{Timeout: o.timeout}, logger, nil)
}

func (o *options) failurePolicy() provider.FailurePolicy {
	policy, _ := provider.ParseFailurePolicy(o.policy)
	return policy
}

// client builds a GitHub client for --login.
func (o *options) client(stderr io.Writer) *provider.Client {
	cfg := provider.Config{BaseURL: o.apiURL, Policy: o.failurePolicy()}
	return provider.NewClient(o.fetcher(stderr), cfg, o.login, o.credentials())
}

// gitlabClient builds a GitLab client authenticated with --private-token.
func (o *options) gitlabClient(stderr io.Writer) *provider.GitLabClient {
	var creds provider.Credentials
	if o.privateToken != "" {
		creds = provider.PrivateTokenCredentials{Token: o.privateToken}
	}
	cfg := provider.Config{BaseURL: o.gitlabURL, Policy: o.failurePolicy()}
	return provider.NewGitLabClient(o.fetcher(stderr), cfg, creds)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
