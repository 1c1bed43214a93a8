package provider

import (
	"context"
	"fmt"
	"math"

	"github.com/sakif/gitstats/internal/model"
)

// Aggregations combine several resource calls into the statistics shown on
// the stats page. They run sequentially and keep the order in which GitHub
// listed the repositories; nothing is sorted here.
//
// Each exported aggregate lists what it needs and hands the listing to an
// unexported helper. Snapshot lists the owned and watched repositories once
// and feeds the same slices to every helper, so all five aggregates describe
// one repository set.

// UserRepoInfo summarizes the user's repositories and contributions.
func (c *Client) UserRepoInfo(ctx context.Context) (model.RepoInfo, error) {
	repos, err := c.listOwned(ctx)
	if err != nil {
		return model.RepoInfo{}, err
	}
	contributed, err := c.ReposContributedTo(ctx)
	if err != nil {
		return model.RepoInfo{}, err
	}
	return userRepoInfo(repos, contributed), nil
}

func userRepoInfo(repos, contributed []Repository) model.RepoInfo {
	info := model.RepoInfo{Repos: make([]model.RepoSummary, 0, len(repos))}
	for _, r := range repos {
		info.Repos = append(info.Repos, summarize(r))
		info.ForkTotal += r.ForksCount
		if r.Fork {
			info.OwnedForks++
		}
	}
	info.Contributed = len(contributed)
	return info
}

// ReposContributedTo returns the watched repositories owned by someone else.
// Ownership is exact login equality.
func (c *Client) ReposContributedTo(ctx context.Context) ([]Repository, error) {
	watched, err := c.WatchedRepos(ctx)
	if err != nil {
		return nil, fmt.Errorf("provider: listing watched repos: %w", err)
	}
	return notOwnedBy(watched, c.login), nil
}

func notOwnedBy(repos []Repository, login string) []Repository {
	out := make([]Repository, 0, len(repos))
	for _, r := range repos {
		if r.Owner.Login != login {
			out = append(out, r)
		}
	}
	return out
}

// CommitsByRepo sums the owner's weekly participation series of every owned
// repository.
//
// A repository whose participation stats come back empty is left out rather
// than recorded as zero: "no stats yet" is not "no commits".
func (c *Client) CommitsByRepo(ctx context.Context) ([]model.RepoCount, error) {
	repos, err := c.listOwned(ctx)
	if err != nil {
		return nil, err
	}
	return c.commitsByRepo(ctx, repos)
}

func (c *Client) commitsByRepo(ctx context.Context, repos []Repository) ([]model.RepoCount, error) {
	counts := make([]model.RepoCount, 0, len(repos))
	for _, r := range repos {
		p, err := c.Participation(ctx, c.login, r.Name)
		if err != nil {
			return nil, fmt.Errorf("provider: participation of %s: %w", r.Name, err)
		}
		if p == nil {
			continue
		}
		counts = append(counts, model.RepoCount{Repo: r.Name, Commits: sum(p.Owner)})
	}
	return counts, nil
}

// Deletions scores the user's additions and deletions per owned repository.
//
// Each score is Σ ln(x+1) over the weekly line counts attributed to the
// user, which damps weeks with huge generated diffs. The +1 keeps ln defined
// at zero and every score non-negative. Repositories without a contributor
// entry for the user are left out.
func (c *Client) Deletions(ctx context.Context) ([]model.DeletionRow, error) {
	repos, err := c.listOwned(ctx)
	if err != nil {
		return nil, err
	}
	return c.deletions(ctx, repos)
}

func (c *Client) deletions(ctx context.Context, repos []Repository) ([]model.DeletionRow, error) {
	rows := make([]model.DeletionRow, 0, len(repos))
	for _, r := range repos {
		stats, err := c.ContributorStats(ctx, c.login, r.Name)
		if err != nil {
			return nil, fmt.Errorf("provider: contributor stats of %s: %w", r.Name, err)
		}
		for _, author := range stats {
			if author.Author == nil || author.Author.Login != c.login {
				continue
			}
			additions, deletions := smoothedScores(author.Weeks)
			rows = append(rows, model.DeletionRow{Repo: r.Name, Additions: additions, Deletions: deletions})
		}
	}
	return rows, nil
}

// smoothedScores returns Σ ln(a+1) and Σ ln(d+1) over weeks.
func smoothedScores(weeks []Week) (additions, deletions float64) {
	for _, w := range weeks {
		additions += math.Log(float64(max(w.Additions, 0)) + 1)
		deletions += math.Log(float64(max(w.Deletions, 0)) + 1)
	}
	return additions, deletions
}

// ContribRepoCommits is CommitsByRepo over the repositories the user
// contributed to but does not own: the participation owner series of each,
// summed, keyed by full name. Empty participation results are skipped.
func (c *Client) ContribRepoCommits(ctx context.Context) ([]model.RepoCount, error) {
	contributed, err := c.ReposContributedTo(ctx)
	if err != nil {
		return nil, err
	}
	return c.contribRepoCommits(ctx, contributed)
}

func (c *Client) contribRepoCommits(ctx context.Context, contributed []Repository) ([]model.RepoCount, error) {
	counts := make([]model.RepoCount, 0, len(contributed))
	for _, r := range contributed {
		p, err := c.Participation(ctx, r.Owner.Login, r.Name)
		if err != nil {
			return nil, fmt.Errorf("provider: participation of %s: %w", fullName(r), err)
		}
		if p == nil {
			continue
		}
		counts = append(counts, model.RepoCount{Repo: fullName(r), Commits: sum(p.Owner)})
	}
	return counts, nil
}

// Stargazers sums the stargazer counts of the owned repositories.
func (c *Client) Stargazers(ctx context.Context) (int, error) {
	repos, err := c.listOwned(ctx)
	if err != nil {
		return 0, err
	}
	return stargazers(repos), nil
}

func stargazers(repos []Repository) int {
	total := 0
	for _, r := range repos {
		total += r.StargazersCount
	}
	return total
}

// Snapshot computes every cached aggregate, one after the other, from a
// single listing of the owned and the watched repositories.
func (c *Client) Snapshot(ctx context.Context) (*model.StatsSnapshot, error) {
	repos, err := c.listOwned(ctx)
	if err != nil {
		return nil, err
	}
	contributed, err := c.ReposContributedTo(ctx)
	if err != nil {
		return nil, err
	}

	s := model.StatsSnapshot{
		RepoInfo:   userRepoInfo(repos, contributed),
		Stargazers: stargazers(repos),
	}
	if s.RepoCommits, err = c.commitsByRepo(ctx, repos); err != nil {
		return nil, err
	}
	if s.Deletions, err = c.deletions(ctx, repos); err != nil {
		return nil, err
	}
	if s.ContribRepoCommits, err = c.contribRepoCommits(ctx, contributed); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) listOwned(ctx context.Context) ([]Repository, error) {
	repos, err := c.UserRepos(ctx)
	if err != nil {
		return nil, fmt.Errorf("provider: listing repos: %w", err)
	}
	return repos, nil
}

func summarize(r Repository) model.RepoSummary {
	return model.RepoSummary{
		Name:       r.Name,
		FullName:   r.FullName,
		Owner:      r.Owner.Login,
		Fork:       r.Fork,
		Forks:      r.ForksCount,
		Stargazers: r.StargazersCount,
		HTMLURL:    r.HTMLURL,
	}
}

func fullName(r Repository) string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Owner.Login + "/" + r.Name
}

func sum(series []int) int {
	total := 0
	for _, n := range series {
		total += n
	}
	return total
}
