package service

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sakif/gitstats/internal/apperror"
	"github.com/sakif/gitstats/internal/model"
	"github.com/sakif/gitstats/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// fakeUserRepo is an in-memory repository.UserRepository. Stored users are
// copies, so a test can tell what was persisted from what the service only
// set on its own struct.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*model.User // keyed by internal ID
	byGHID map[int64]*model.User  // keyed by GitHub ID (for Upsert)
	nextID int

	saves  int
	clears int

	// set to a non-nil error to simulate a database failure
	upsertErr    error
	getByIDErr   error
	saveStatsErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*model.User),
		byGHID: make(map[int64]*model.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.byGHID[user.GitHubID]; ok {
		existing.Login = user.Login
		existing.Email = user.Email
		existing.AvatarURL = user.AvatarURL
		existing.AccessToken = user.AccessToken
		existing.UpdatedAt = time.Now()
		*user = *existing
		return nil
	}

	user.ID = "user-" + strconv.Itoa(f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	f.byGHID[user.GitHubID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) SaveStats(ctx context.Context, userID string, stats *model.StatsSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveStatsErr != nil {
		return f.saveStatsErr
	}
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	f.saves++
	u.Stats = stats
	return nil
}

func (f *fakeUserRepo) ClearStats(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	f.clears++
	u.Stats = nil
	return nil
}

// add stores a user directly, bypassing Upsert.
func (f *fakeUserRepo) add(u *model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = "user-" + strconv.Itoa(f.nextID)
		f.nextID++
	}
	copied := *u
	f.users[u.ID] = &copied
	f.byGHID[u.GitHubID] = &copied
	return u
}

func (f *fakeUserRepo) stored(id string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

// fakeSource returns a fixed snapshot or error and counts calls.
type fakeSource struct {
	mu       sync.Mutex
	snapshot *model.StatsSnapshot
	err      error
	calls    int
}

func (s *fakeSource) Snapshot(ctx context.Context) (*model.StatsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.snapshot, s.err
}

// fakeSources hands out the same fakeSource for every user.
type fakeSources struct {
	source *fakeSource
	err    error
	users  []string
}

func (f *fakeSources) ForUser(user *model.User) (StatsSource, error) {
	f.users = append(f.users, user.Login)
	if f.err != nil {
		return nil, f.err
	}
	return f.source, nil
}

// recordingObserver remembers every cache result it was told about.
type recordingObserver struct {
	results   []string
	snapshots int
}

func (o *recordingObserver) ObserveCache(result string)    { o.results = append(o.results, result) }
func (o *recordingObserver) ObserveSnapshot(time.Duration) { o.snapshots++ }

// plainSealer "encrypts" by prefixing, so tests can see what was stored.
type plainSealer struct{}

func (plainSealer) Seal(plaintext string) (string, error) { return "sealed:" + plaintext, nil }

func (plainSealer) Open(sealed string) (string, error) {
	const prefix = "sealed:"
	if len(sealed) < len(prefix) || sealed[:len(prefix)] != prefix {
		return "", apperror.Unauthorized("bad seal")
	}
	return sealed[len(prefix):], nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sampleSnapshot() *model.StatsSnapshot {
	return &model.StatsSnapshot{
		RepoCommits: []model.RepoCount{{Repo: "a", Commits: 6}},
		RepoInfo: model.RepoInfo{
			Repos:       []model.RepoSummary{{Name: "a", FullName: "alice/a", Owner: "alice", Stargazers: 5, Forks: 2}},
			ForkTotal:   2,
			Contributed: 1,
		},
		Deletions:          []model.DeletionRow{{Repo: "a", Additions: 1.9459}},
		ContribRepoCommits: []model.RepoCount{{Repo: "x", Commits: 7}},
		Stargazers:         5,
	}
}
