package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/gitstats/internal/apperror"
	"github.com/sakif/gitstats/internal/model"
)

// newTestStore connects to TEST_DATABASE_URL, skipping the test when it is
// not set. Every test uses fresh GitHub ids so runs do not interfere.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// uniqueGitHubID derives a positive id from a fresh xid.
func uniqueGitHubID() int64 {
	id := xid.New()
	return int64(id.Counter())<<20 | int64(id.Pid())
}

func TestStore_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ghID := uniqueGitHubID()

	user := &model.User{GitHubID: ghID, Login: "alice", AccessToken: "sealed"}
	require.NoError(t, s.Upsert(ctx, user))
	require.NotEmpty(t, user.ID)

	again := &model.User{GitHubID: ghID, Login: "alice2", AccessToken: "sealed2"}
	require.NoError(t, s.Upsert(ctx, again))
	assert.Equal(t, user.ID, again.ID)

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Login)
	assert.Equal(t, "sealed2", got.AccessToken)
	assert.Nil(t, got.Stats)
}

func TestStore_StatsLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &model.User{GitHubID: uniqueGitHubID(), Login: "alice"}
	require.NoError(t, s.Upsert(ctx, user))

	snap := &model.StatsSnapshot{
		RepoCommits: []model.RepoCount{{Repo: "a", Commits: 6}},
		Stargazers:  5,
	}
	require.NoError(t, s.SaveStats(ctx, user.ID, snap))

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Stats)
	assert.Equal(t, 5, got.Stats.Stargazers)
	assert.Equal(t, snap.RepoCommits, got.Stats.RepoCommits)

	_, err = s.pool.Exec(ctx, `UPDATE users SET deletions = NULL WHERE id = $1`, user.ID)
	require.NoError(t, err)
	got, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Stats, "one NULL column means no cache")

	require.NoError(t, s.SaveStats(ctx, user.ID, snap))
	require.NoError(t, s.ClearStats(ctx, user.ID))
	got, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Stats)
}

func TestStore_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUserByID(ctx, "missing-"+xid.New().String())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = s.SaveStats(ctx, "missing-"+xid.New().String(), &model.StatsSnapshot{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
