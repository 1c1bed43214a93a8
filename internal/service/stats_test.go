package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/gitstats/internal/apperror"
	"github.com/sakif/gitstats/internal/config"
	"github.com/sakif/gitstats/internal/metrics"
	"github.com/sakif/gitstats/internal/model"
	"github.com/sakif/gitstats/internal/provider"
)

func newTestStatsService(repo *fakeUserRepo, sources SourceFactory, obs StatsObserver) *StatsService {
	return NewStatsService(repo, sources, obs, quietLogger())
}

// =========================================================================
// Stats TESTS
// =========================================================================

func TestStats_AnonymousGetsEmptyView(t *testing.T) {
	source := &fakeSource{snapshot: sampleSnapshot()}
	obs := &recordingObserver{}
	svc := newTestStatsService(newFakeUserRepo(), &fakeSources{source: source}, obs)

	view, err := svc.Stats(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, view.Summary)
	assert.Empty(t, view.Commits)
	assert.Empty(t, view.Deletions)
	assert.Zero(t, view.Stargazers)
	assert.Zero(t, source.calls)
	assert.Equal(t, []string{metrics.CacheAnonymous}, obs.results)
}

func TestStats_CacheHitMakesNoProviderCalls(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.add(&model.User{GitHubID: 1, Login: "alice", Stats: sampleSnapshot()})
	source := &fakeSource{err: errors.New("must not be called")}
	sources := &fakeSources{source: source}
	obs := &recordingObserver{}
	svc := newTestStatsService(repo, sources, obs)

	view, err := svc.Stats(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, 6, view.TotalCommits)
	assert.Equal(t, 7, view.ContribCommits)
	assert.Equal(t, 5, view.Stargazers)
	assert.Zero(t, source.calls)
	assert.Empty(t, sources.users, "no client should be built on a hit")
	assert.Zero(t, repo.saves)
	assert.Equal(t, []string{metrics.CacheHit}, obs.results)
}

func TestStats_MissComputesAndCachesEverything(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.add(&model.User{GitHubID: 1, Login: "alice"})
	source := &fakeSource{snapshot: sampleSnapshot()}
	obs := &recordingObserver{}
	svc := newTestStatsService(repo, &fakeSources{source: source}, obs)

	view, err := svc.Stats(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, sampleSnapshot(), repo.stored(user.ID).Stats)
	assert.Same(t, source.snapshot, user.Stats, "the caller's user carries the fresh snapshot")
	assert.Equal(t, 5, view.Stargazers)
	assert.Equal(t, []string{metrics.CacheMiss}, obs.results)
	assert.Equal(t, 1, obs.snapshots)
}

func TestStats_SecondRequestIsServedFromCache(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(&model.User{ID: "u1", GitHubID: 1, Login: "alice"})
	source := &fakeSource{snapshot: sampleSnapshot()}
	svc := newTestStatsService(repo, &fakeSources{source: source}, nil)

	_, err := svc.StatsForUserID(context.Background(), "u1")
	require.NoError(t, err)
	_, err = svc.StatsForUserID(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, repo.saves)
}

func TestStats_FetchFailureShowsNoticeAndCachesNothing(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.add(&model.User{GitHubID: 1, Login: "alice"})
	source := &fakeSource{err: fmt.Errorf("provider: listing repos: %w", provider.ErrFetch)}
	svc := newTestStatsService(repo, &fakeSources{source: source}, nil)

	view, err := svc.Stats(context.Background(), user)

	require.NoError(t, err)
	assert.NotEmpty(t, view.Notice)
	assert.Empty(t, view.Commits)
	assert.Zero(t, repo.saves)
	assert.Nil(t, repo.stored(user.ID).Stats)
	assert.Nil(t, user.Stats)
}

func TestStats_SourceErrorPropagates(t *testing.T) {
	repo := newFakeUserRepo()
	user := repo.add(&model.User{GitHubID: 1, Login: "alice"})
	sources := &fakeSources{err: apperror.Unauthorized("log in again")}
	svc := newTestStatsService(repo, sources, nil)

	_, err := svc.Stats(context.Background(), user)

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Zero(t, repo.saves)
}

func TestStats_SaveErrorPropagates(t *testing.T) {
	repo := newFakeUserRepo()
	repo.saveStatsErr = errors.New("disk full")
	user := repo.add(&model.User{GitHubID: 1, Login: "alice"})
	svc := newTestStatsService(repo, &fakeSources{source: &fakeSource{snapshot: sampleSnapshot()}}, nil)

	_, err := svc.Stats(context.Background(), user)

	assert.ErrorIs(t, err, repo.saveStatsErr)
	assert.Nil(t, user.Stats)
}

func TestStatsForUserID_UnknownUserIsAnonymous(t *testing.T) {
	source := &fakeSource{snapshot: sampleSnapshot()}
	svc := newTestStatsService(newFakeUserRepo(), &fakeSources{source: source}, nil)

	view, err := svc.StatsForUserID(context.Background(), "gone")

	require.NoError(t, err)
	assert.Empty(t, view.Summary)
	assert.Zero(t, source.calls)
}

func TestStatsForUserID_StoreErrorPropagates(t *testing.T) {
	repo := newFakeUserRepo()
	repo.getByIDErr = errors.New("connection reset")
	svc := newTestStatsService(repo, &fakeSources{source: &fakeSource{}}, nil)

	_, err := svc.StatsForUserID(context.Background(), "u1")

	assert.ErrorIs(t, err, repo.getByIDErr)
}

// =========================================================================
// Refresh TESTS
// =========================================================================

func TestRefresh_ClearsCacheSoNextStatsRecomputes(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(&model.User{ID: "u1", GitHubID: 1, Login: "alice", Stats: sampleSnapshot()})
	source := &fakeSource{snapshot: sampleSnapshot()}
	svc := newTestStatsService(repo, &fakeSources{source: source}, nil)

	require.NoError(t, svc.Refresh(context.Background(), "u1"))
	assert.Nil(t, repo.stored("u1").Stats)

	_, err := svc.StatsForUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

func TestRefresh_RequiresUser(t *testing.T) {
	svc := newTestStatsService(newFakeUserRepo(), &fakeSources{}, nil)

	err := svc.Refresh(context.Background(), "")

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRefresh_UnknownUser(t *testing.T) {
	svc := newTestStatsService(newFakeUserRepo(), &fakeSources{}, nil)

	err := svc.Refresh(context.Background(), "gone")

	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// =========================================================================
// ClientFactory TESTS
// =========================================================================

func newTestFetcher() *provider.Fetcher {
	return provider.NewFetcher(http.DefaultClient, quietLogger(), nil)
}

func TestClientFactory_TokenModeNeedsStoredToken(t *testing.T) {
	f := NewClientFactory(newTestFetcher(), provider.Config{}, config.CredentialModeToken, provider.AppCredentials{}, plainSealer{})

	_, err := f.ForUser(&model.User{Login: "alice"})

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestClientFactory_TokenModeRejectsUnopenableToken(t *testing.T) {
	f := NewClientFactory(newTestFetcher(), provider.Config{}, config.CredentialModeToken, provider.AppCredentials{}, plainSealer{})

	_, err := f.ForUser(&model.User{Login: "alice", AccessToken: "garbage"})

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestClientFactory_RequiresLogin(t *testing.T) {
	f := NewClientFactory(newTestFetcher(), provider.Config{}, config.CredentialModeApp, provider.AppCredentials{}, nil)

	_, err := f.ForUser(&model.User{})

	assert.Error(t, err)
}

func TestClientFactory_BindsLogin(t *testing.T) {
	f := NewClientFactory(newTestFetcher(), provider.Config{}, config.CredentialModeApp, provider.AppCredentials{ClientID: "id", ClientSecret: "s"}, nil)

	c, err := f.Client(&model.User{Login: "alice"})

	require.NoError(t, err)
	assert.Equal(t, "alice", c.Login())
}

// =========================================================================
// END-TO-END
// =========================================================================

// fakeGitHubServer answers for a user "alice" who owns one repository "a"
// with 5 stargazers and watches nothing. Every request is counted.
func fakeGitHubServer(t *testing.T, token string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	routes := map[string]string{
		"/users/alice/repos":                 `[{"name":"a","full_name":"alice/a","owner":{"login":"alice"},"forks_count":2,"stargazers_count":5}]`,
		"/users/alice/subscriptions":         `[]`,
		"/repos/alice/a/stats/participation": `{"all":[3,4,5],"owner":[1,2,3]}`,
		"/repos/alice/a/stats/contributors":  `[{"author":{"login":"alice"},"total":3,"weeks":[{"w":1,"a":6,"d":0,"c":3}]}]`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("access_token") != token {
			http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		if p := r.URL.Query().Get("page"); p != "" && p != "1" {
			body = `[]`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestStats_EndToEndWithGitHub(t *testing.T) {
	srv, hits := fakeGitHubServer(t, "gho_alice")

	repo := newFakeUserRepo()
	repo.add(&model.User{ID: "u1", GitHubID: 1, Login: "alice", AccessToken: "sealed:gho_alice"})
	factory := NewClientFactory(newTestFetcher(), provider.Config{BaseURL: srv.URL, Policy: provider.FailuresAsErrors},
		config.CredentialModeToken, provider.AppCredentials{}, plainSealer{})
	svc := newTestStatsService(repo, factory, nil)

	view, err := svc.StatsForUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 6, view.TotalCommits)
	assert.Equal(t, 5, view.Stargazers)
	assert.Equal(t, 1, view.Summary[0].Count)
	assert.Equal(t, 2, view.Summary[1].Count)
	require.NotNil(t, repo.stored("u1").Stats)

	before := hits.Load()
	require.Positive(t, before)

	again, err := svc.StatsForUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, view, again)
	assert.Equal(t, before, hits.Load(), "a cached user costs no GitHub requests")
}

func TestStats_EndToEndErrorPolicyDoesNotCache(t *testing.T) {
	srv, _ := fakeGitHubServer(t, "a-different-token")

	repo := newFakeUserRepo()
	repo.add(&model.User{ID: "u1", GitHubID: 1, Login: "alice", AccessToken: "sealed:gho_alice"})
	factory := NewClientFactory(newTestFetcher(), provider.Config{BaseURL: srv.URL, Policy: provider.FailuresAsErrors},
		config.CredentialModeToken, provider.AppCredentials{}, plainSealer{})
	svc := newTestStatsService(repo, factory, nil)

	view, err := svc.StatsForUserID(context.Background(), "u1")

	require.NoError(t, err)
	assert.NotEmpty(t, view.Notice)
	assert.Nil(t, repo.stored("u1").Stats)
}
