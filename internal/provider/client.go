package provider

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

const (
	// perPage is the largest page size GitHub accepts.
	perPage = 100
	// maxPages bounds how far listAll walks a paginated listing.
	maxPages = 10
)

// Config is the deployment-wide part of a Client.
type Config struct {
	BaseURL string
	Policy  FailurePolicy
}

// ID is a provider resource id already normalized to a path segment.
// Untyped string constants convert implicitly; use IDOf for numbers.
type ID string

// IDOf normalizes a numeric or string id.
func IDOf[T Identifier](v T) ID {
	return ID(Segment(v))
}

// Client talks to the GitHub REST API on behalf of one authenticated login.
//
// The login and credentials are explicit constructor arguments rather than
// something looked up from the request: a Client built for "alice" can only
// ever ask about alice's repositories.
type Client struct {
	baseURL string
	login   string
	creds   Credentials
	policy  FailurePolicy
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewClient creates a Client for login, authenticating with creds.
func NewClient(fetcher *Fetcher, cfg Config, login string, creds Credentials) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		login:   login,
		creds:   creds,
		policy:  cfg.Policy,
		fetcher: fetcher,
		logger:  fetcher.logger.With(slog.String("login", login)),
	}
}

// Login returns the login the client was built for.
func (c *Client) Login() string { return c.login }

// endpoint builds the full request URL for the given path segments.
func (c *Client) endpoint(extra url.Values, segments ...string) string {
	return AddQuery(BuildURL(c.baseURL, segments...), c.creds, extra)
}

// fetch performs the request and applies the failure policy.
// Under FailuresAsEmpty a failed request comes back as the zero (empty) Result.
func (c *Client) fetch(ctx context.Context, rawURL string) (Result, error) {
	res := c.fetcher.Get(ctx, rawURL)
	if res.Failed() {
		if c.policy == FailuresAsErrors {
			return res, res.Err
		}
		return Result{}, nil
	}
	return res, nil
}

// getJSON fetches rawURL and decodes it into out.
// It reports false when there was nothing to decode.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) (bool, error) {
	res, err := c.fetch(ctx, rawURL)
	if err != nil {
		return false, err
	}
	if res.Empty() {
		return false, nil
	}
	if err := res.Decode(out); err != nil {
		if c.policy == FailuresAsErrors {
			return false, err
		}
		c.logger.Warn("provider response did not match the expected shape",
			slog.String("path", redact(rawURL)),
			slog.String("error", err.Error()),
		)
		return false, nil
	}
	return true, nil
}

// listAll walks a paginated listing until a short page, an empty page or
// maxPages. Results keep the provider's order.
func listAll[T any](ctx context.Context, c *Client, segments ...string) ([]T, error) {
	return listAllWith[T](ctx, c, nil, segments...)
}

// listAllWith is listAll with extra query parameters on every page.
// Reaching maxPages with a full last page is logged: the listing may be
// truncated.
func listAllWith[T any](ctx context.Context, c *Client, query url.Values, segments ...string) ([]T, error) {
	var all []T
	for page := 1; page <= maxPages; page++ {
		extra := url.Values{}
		for key, values := range query {
			extra[key] = values
		}
		extra.Set("per_page", strconv.Itoa(perPage))
		extra.Set("page", strconv.Itoa(page))

		var items []T
		ok, err := c.getJSON(ctx, c.endpoint(extra, segments...), &items)
		if err != nil {
			return all, err
		}
		if !ok {
			break
		}
		all = append(all, items...)
		if len(items) < perPage {
			break
		}
		if page == maxPages {
			c.logger.Warn("provider listing truncated at page limit",
				slog.String("path", JoinPath(segments...)),
				slog.Int("pages", maxPages),
				slog.Int("items", len(all)),
			)
		}
	}
	return all, nil
}

// getOne fetches a single object. It returns nil when there is nothing.
func getOne[T any](ctx context.Context, c *Client, segments ...string) (*T, error) {
	var item T
	ok, err := c.getJSON(ctx, c.endpoint(nil, segments...), &item)
	if err != nil || !ok {
		return nil, err
	}
	return &item, nil
}
