package model

import (
	"encoding/json"
	"fmt"
)

// RepoCount is a commit count for one repository.
type RepoCount struct {
	Repo    string `json:"repo"`
	Commits int    `json:"commits"`
}

// RepoSummary is the part of a provider repository kept in the cache.
type RepoSummary struct {
	Name       string `json:"name"`
	FullName   string `json:"fullName"`
	Owner      string `json:"owner"`
	Fork       bool   `json:"fork"`
	Forks      int    `json:"forks"`
	Stargazers int    `json:"stargazers"`
	HTMLURL    string `json:"htmlUrl"`
}

// RepoInfo summarizes the user's repositories.
//
//	Repos       - every repository the user owns, in provider order
//	ForkTotal   - how many times those repositories were forked, summed
//	OwnedForks  - how many of those repositories are themselves forks
//	Contributed - how many watched repositories belong to someone else
type RepoInfo struct {
	Repos       []RepoSummary `json:"repos"`
	ForkTotal   int           `json:"forkTotal"`
	OwnedForks  int           `json:"ownedForks"`
	Contributed int           `json:"contributed"`
}

// DeletionRow holds the log-smoothed additions and deletions of one repository.
type DeletionRow struct {
	Repo      string  `json:"repo"`
	Additions float64 `json:"additions"`
	Deletions float64 `json:"deletions"`
}

// StatsSnapshot is one complete computation of every cached aggregate.
//
// A snapshot is all-or-nothing: the store either holds all five parts from
// the same computation or the user has no snapshot at all (User.Stats == nil).
type StatsSnapshot struct {
	RepoCommits        []RepoCount   `json:"repoCommits"`
	RepoInfo           RepoInfo      `json:"repoInfo"`
	Deletions          []DeletionRow `json:"deletions"`
	ContribRepoCommits []RepoCount   `json:"contribRepoCommits"`
	Stargazers         int           `json:"stargazers"`
}

// StatsColumns is the stored form of a snapshot: one nullable JSON string per
// aggregate. nil means "never computed".
type StatsColumns struct {
	RepoCommits        *string
	UserRepoInfo       *string
	Deletions          *string
	ContribRepoCommits *string
	Stargazers         *string
}

// Columns serializes the snapshot into its five stored columns.
func (s *StatsSnapshot) Columns() (StatsColumns, error) {
	var cols StatsColumns
	parts := []struct {
		dst   **string
		value any
		name  string
	}{
		{&cols.RepoCommits, nonNil(s.RepoCommits), "repo_commits"},
		{&cols.UserRepoInfo, s.RepoInfo, "user_repo_info"},
		{&cols.Deletions, nonNil(s.Deletions), "deletions"},
		{&cols.ContribRepoCommits, nonNil(s.ContribRepoCommits), "contrib_repo_commits"},
		{&cols.Stargazers, s.Stargazers, "stargazers"},
	}
	for _, p := range parts {
		b, err := json.Marshal(p.value)
		if err != nil {
			return StatsColumns{}, fmt.Errorf("model: encoding %s: %w", p.name, err)
		}
		str := string(b)
		*p.dst = &str
	}
	return cols, nil
}

// DecodeStatsColumns rebuilds a snapshot from stored columns.
//
// It reports false unless every column is present and decodes cleanly; a
// record in that state is "cache incomplete" and must be recomputed in full.
func DecodeStatsColumns(cols StatsColumns) (*StatsSnapshot, bool) {
	if cols.RepoCommits == nil || cols.UserRepoInfo == nil || cols.Deletions == nil ||
		cols.ContribRepoCommits == nil || cols.Stargazers == nil {
		return nil, false
	}

	var s StatsSnapshot
	targets := []struct {
		src string
		dst any
	}{
		{*cols.RepoCommits, &s.RepoCommits},
		{*cols.UserRepoInfo, &s.RepoInfo},
		{*cols.Deletions, &s.Deletions},
		{*cols.ContribRepoCommits, &s.ContribRepoCommits},
		{*cols.Stargazers, &s.Stargazers},
	}
	for _, t := range targets {
		if err := json.Unmarshal([]byte(t.src), t.dst); err != nil {
			return nil, false
		}
	}
	return &s, true
}

// nonNil makes nil slices encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
