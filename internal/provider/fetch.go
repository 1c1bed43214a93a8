package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrFetch marks a request that failed at the transport level, returned a
// non-2xx status, or returned a body that is not JSON.
var ErrFetch = errors.New("provider: fetch failed")

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 32 << 20

// Outcome classifies a Result.
type Outcome int

const (
	// OutcomeOK means the provider returned a non-empty JSON document.
	OutcomeOK Outcome = iota
	// OutcomeEmpty means the request succeeded but there are no items.
	OutcomeEmpty
	// OutcomeFailed means the request did not succeed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	default:
		return "failed"
	}
}

// Result is the outcome of one GET request.
//
// EMPTY vs FAILED:
// The two look the same to someone who only wants "the list of items", but
// they mean different things. A repository with no commits yet is Empty; a
// DNS error is Failed. Callers decide what a failure means via FailurePolicy.
type Result struct {
	StatusCode int
	Body       json.RawMessage
	Err        error
}

// Outcome reports whether the result is OK, Empty or Failed.
func (r Result) Outcome() Outcome {
	switch {
	case r.Err != nil:
		return OutcomeFailed
	case isEmptyDocument(r.StatusCode, r.Body):
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}

// Failed reports whether the request failed.
func (r Result) Failed() bool { return r.Outcome() == OutcomeFailed }

// Empty reports whether the request succeeded with nothing in it.
// The zero Result is Empty.
func (r Result) Empty() bool { return r.Outcome() == OutcomeEmpty }

// Decode unmarshals the body into v.
func (r Result) Decode(v any) error {
	if r.Err != nil {
		return r.Err
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: decoding body: %v", ErrFetch, err)
	}
	return nil
}

// Text returns the body of a GetText result, or "" when the request failed.
func (r Result) Text() string {
	if r.Err != nil {
		return ""
	}
	return string(r.Body)
}

// isEmptyDocument treats GitHub's "nothing here" answers as empty:
// 202 Accepted (statistics still being computed), 204 No Content (empty repo)
// and the empty JSON values.
func isEmptyDocument(status int, body json.RawMessage) bool {
	if status == http.StatusAccepted || status == http.StatusNoContent {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	switch string(trimmed) {
	case "", "null", "[]", "{}":
		return true
	}
	return false
}

// FailurePolicy decides what a failed request means to the caller.
type FailurePolicy int

const (
	// FailuresAsEmpty reports a failed request as "zero items".
	//
	// KNOWN LIMITATION: a transient outage is indistinguishable from a user
	// who really has no data, so statistics can be silently under-reported.
	// It is the default because the stats page prefers a partial answer to an
	// error page.
	FailuresAsEmpty FailurePolicy = iota
	// FailuresAsErrors returns an error wrapping ErrFetch instead.
	FailuresAsErrors
)

// ParseFailurePolicy maps a config string ("empty" or "error") to a policy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "empty":
		return FailuresAsEmpty, nil
	case "error":
		return FailuresAsErrors, nil
	}
	return FailuresAsEmpty, fmt.Errorf("provider: unknown failure policy %q", s)
}

// FetchObserver is notified after every request. metrics.Metrics implements it.
type FetchObserver interface {
	ObserveFetch(outcome string, elapsed time.Duration)
}

// Fetcher performs GET requests and decodes JSON bodies.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
	observer   FetchObserver
}

// NewFetcher creates a Fetcher. observer may be nil.
func NewFetcher(httpClient *http.Client, logger *slog.Logger, observer FetchObserver) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		httpClient: httpClient,
		logger:     logger,
		observer:   observer,
	}
}

// Get requests rawURL and returns the classified Result.
// It never returns a Go error; failures are carried inside Result.
func (f *Fetcher) Get(ctx context.Context, rawURL string) Result {
	return f.observe(ctx, rawURL, true)
}

// GetText is Get for endpoints that answer with plain text, such as raw
// snippet content. The body is kept as is; read it with Result.Text.
func (f *Fetcher) GetText(ctx context.Context, rawURL string) Result {
	return f.observe(ctx, rawURL, false)
}

func (f *Fetcher) observe(ctx context.Context, rawURL string, wantJSON bool) Result {
	start := time.Now()
	res := f.get(ctx, rawURL, wantJSON)

	outcome := res.Outcome()
	if f.observer != nil {
		f.observer.ObserveFetch(outcome.String(), time.Since(start))
	}
	if outcome == OutcomeFailed {
		// Never log the query string: it carries the credentials.
		f.logger.Warn("provider request failed",
			slog.String("path", redact(rawURL)),
			slog.Int("status", res.StatusCode),
			slog.String("error", res.Err.Error()),
		)
	}
	return res
}

func (f *Fetcher) get(ctx context.Context, rawURL string, wantJSON bool) Result {
	if rawURL == "" {
		return Result{Err: fmt.Errorf("%w: empty url", ErrFetch)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: building request: %v", ErrFetch, err)}
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Result{Err: fmt.Errorf("%w: %v", ErrFetch, redactErr(err))}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: reading body: %v", ErrFetch, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)}
	}

	if wantJSON && len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
		return Result{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: body is not JSON", ErrFetch)}
	}

	return Result{StatusCode: resp.StatusCode, Body: body}
}

// redact strips the query string (and with it, any credentials) from rawURL.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

// redactErr removes the URL from *url.Error, which would otherwise print
// the full request URL including credentials.
func redactErr(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s %s: %w", urlErr.Op, redact(urlErr.URL), urlErr.Err)
	}
	return err
}
