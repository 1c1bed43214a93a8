package provider

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveFetch(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func TestFetcher_Outcomes(t *testing.T) {
	f := newFakeGitHub(t, map[string]fakeResponse{
		"/ok":           {body: `[{"name":"a"}]`},
		"/empty-array":  {body: `[]`},
		"/empty-object": {body: `{}`},
		"/accepted":     {status: http.StatusAccepted, body: `{}`},
		"/no-content":   {status: http.StatusNoContent},
		"/server-error": {status: http.StatusInternalServerError, body: `{"message":"boom"}`},
		"/not-json":     {body: `<html>rate limited</html>`},
	})

	cases := []struct {
		path string
		want Outcome
	}{
		{"/ok", OutcomeOK},
		{"/empty-array", OutcomeEmpty},
		{"/empty-object", OutcomeEmpty},
		{"/accepted", OutcomeEmpty},
		{"/no-content", OutcomeEmpty},
		{"/server-error", OutcomeFailed},
		{"/not-json", OutcomeFailed},
		{"/missing", OutcomeFailed},
	}

	observer := &recordingObserver{}
	fetcher := NewFetcher(f.server.Client(), quietLogger(), observer)

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			res := fetcher.Get(context.Background(), f.server.URL+tc.path)
			assert.Equal(t, tc.want, res.Outcome())
			if tc.want == OutcomeFailed {
				assert.ErrorIs(t, res.Err, ErrFetch)
			}
		})
	}
	assert.Len(t, observer.outcomes, len(cases))
}

func TestFetcher_TransportErrorIsFailedNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close() // nothing listens here any more

	fetcher := NewFetcher(&http.Client{Timeout: time.Second}, quietLogger(), nil)
	res := fetcher.Get(context.Background(), addr+"/users/alice/repos?access_token=secret")

	assert.True(t, res.Failed())
	assert.NotContains(t, res.Err.Error(), "secret")
}

func TestFetcher_DoesNotLogCredentials(t *testing.T) {
	f := newFakeGitHub(t, map[string]fakeResponse{
		"/boom": {status: http.StatusBadGateway},
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	fetcher := NewFetcher(f.server.Client(), logger, nil)

	fetcher.Get(context.Background(), f.server.URL+"/boom?access_token=very-secret")

	assert.Contains(t, buf.String(), "provider request failed")
	assert.NotContains(t, buf.String(), "very-secret")
}

func TestFetcher_GetTextKeepsPlainBody(t *testing.T) {
	f := newFakeGitHub(t, map[string]fakeResponse{
		"/raw": {body: "print('hello')\n"},
	})
	fetcher := NewFetcher(f.server.Client(), quietLogger(), nil)

	text := fetcher.GetText(context.Background(), f.server.URL+"/raw")
	assert.False(t, text.Failed())
	assert.Equal(t, "print('hello')\n", text.Text())

	asJSON := fetcher.Get(context.Background(), f.server.URL+"/raw")
	assert.True(t, asJSON.Failed(), "Get still rejects a body that is not JSON")
	assert.Empty(t, asJSON.Text())
}

func TestResult_Decode(t *testing.T) {
	res := Result{StatusCode: http.StatusOK, Body: []byte(`{"all":[1,2],"owner":[1,0]}`)}

	var p Participation
	require.NoError(t, res.Decode(&p))
	assert.Equal(t, []int{1, 0}, p.Owner)

	bad := Result{StatusCode: http.StatusOK, Body: []byte(`{"all":"nope"}`)}
	assert.True(t, errors.Is(bad.Decode(&p), ErrFetch))
}

func TestZeroResultIsEmpty(t *testing.T) {
	assert.True(t, Result{}.Empty())
	assert.False(t, Result{}.Failed())
}

func TestParseFailurePolicy(t *testing.T) {
	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, FailuresAsEmpty, p)

	p, err = ParseFailurePolicy("error")
	require.NoError(t, err)
	assert.Equal(t, FailuresAsErrors, p)

	_, err = ParseFailurePolicy("retry")
	assert.Error(t, err)
}
