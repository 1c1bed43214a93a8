package provider

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
)

// fakeResponse is what the fake GitHub answers for one path.
type fakeResponse struct {
	status int
	body   string
}

// fakeGitHub is an httptest-backed stand-in for api.github.com.
// Routes are keyed by URL path; unknown paths answer 404.
type fakeGitHub struct {
	mu      sync.Mutex
	routes  map[string]fakeResponse
	pages   map[string][]string
	hits    map[string]int
	queries []string
	server  *httptest.Server
}

func newFakeGitHub(t *testing.T, routes map[string]fakeResponse) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{
		routes: routes,
		pages:  make(map[string][]string),
		hits:   make(map[string]int),
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		f.queries = append(f.queries, r.URL.RawQuery)
		resp, ok := f.routes[r.URL.Path]
		if pages, paged := f.pages[r.URL.Path]; paged {
			resp, ok = pageOf(pages, r.URL.Query().Get("page")), true
		}
		f.mu.Unlock()

		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		status := resp.status
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(f.server.Close)
	return f
}

// paginate serves bodies one page at a time for path; pages past the end are [].
func (f *fakeGitHub) paginate(path string, bodies ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[path] = bodies
}

func pageOf(bodies []string, page string) fakeResponse {
	n, err := strconv.Atoi(page)
	if err != nil || n < 1 || n > len(bodies) {
		return fakeResponse{body: `[]`}
	}
	return fakeResponse{body: bodies[n-1]}
}

func (f *fakeGitHub) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.hits {
		n += c
	}
	return n
}

func (f *fakeGitHub) hitsFor(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestClient returns a Client for login pointed at the fake server.
func newTestClient(f *fakeGitHub, login string, policy FailurePolicy) *Client {
	fetcher := NewFetcher(f.server.Client(), quietLogger(), nil)
	return NewClient(fetcher, Config{BaseURL: f.server.URL + "/", Policy: policy}, login, TokenCredentials{AccessToken: "test-token"})
}
