package provider

import (
	"context"
	"net/url"
	"strconv"
)

// One method per REST resource. Each one normalizes its ids, builds the path,
// adds credentials and fetches. Listings are typed; selector-based methods
// return the raw Result because the shape depends on the selector.

// ---- organizations ----

// OrgEvents lists the organization events visible to the user.
// GET /users/{user}/events/orgs/{org}
func (c *Client) OrgEvents(ctx context.Context, org ID) ([]Event, error) {
	return listAll[Event](ctx, c, "users", c.login, "events", "orgs", string(org))
}

// OrgPublicEvents lists an organization's public events.
// GET /orgs/{org}/events
func (c *Client) OrgPublicEvents(ctx context.Context, org ID) ([]Event, error) {
	return listAll[Event](ctx, c, "orgs", string(org), "events")
}

// Orgs lists the user's public organizations.
// GET /users/{user}/orgs
func (c *Client) Orgs(ctx context.Context) ([]Organization, error) {
	return listAll[Organization](ctx, c, "users", c.login, "orgs")
}

// OrgInfo fetches an organization, or one of its sub-resources when sel is set.
// GET /orgs/{org}[/{sel}]
func (c *Client) OrgInfo(ctx context.Context, org ID, sel OrgSelector) (Result, error) {
	if sel == "" {
		return c.fetch(ctx, c.endpoint(nil, "orgs", string(org)))
	}
	if !sel.valid() {
		return Result{}, nil
	}
	return c.fetch(ctx, c.endpoint(nil, "orgs", string(org), string(sel)))
}

// OrgMemberships lists the authenticated user's organization memberships.
// GET /user/memberships/orgs
func (c *Client) OrgMemberships(ctx context.Context) ([]Membership, error) {
	return listAll[Membership](ctx, c, "user", "memberships", "orgs")
}

// Team fetches a team of an organization.
// GET /orgs/{org}/teams/{team}
func (c *Client) Team(ctx context.Context, org, team ID) (*Team, error) {
	return getOne[Team](ctx, c, "orgs", string(org), "teams", string(team))
}

// TeamInfo fetches a team, or its members or repos when sel is set.
// GET /orgs/{org}/teams/{team}[/{sel}]
func (c *Client) TeamInfo(ctx context.Context, org, team ID, sel TeamSelector) (Result, error) {
	if sel == "" {
		return c.fetch(ctx, c.endpoint(nil, "orgs", string(org), "teams", string(team)))
	}
	if !sel.valid() {
		return Result{}, nil
	}
	return c.fetch(ctx, c.endpoint(nil, "orgs", string(org), "teams", string(team), string(sel)))
}

// OrgRepos lists an organization's repositories.
// GET /orgs/{org}/repos
func (c *Client) OrgRepos(ctx context.Context, org ID) ([]Repository, error) {
	return listAll[Repository](ctx, c, "orgs", string(org), "repos")
}

// ---- user ----

// UserRepos lists the repositories the user owns.
// GET /users/{user}/repos
func (c *Client) UserRepos(ctx context.Context) ([]Repository, error) {
	return listAll[Repository](ctx, c, "users", c.login, "repos")
}

// UserRepoNames returns the names of UserRepos, in the same order.
func (c *Client) UserRepoNames(ctx context.Context) ([]string, error) {
	repos, err := c.UserRepos(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.Name)
	}
	return names, nil
}

// ReceivedEvents lists events the user has received.
// GET /users/{user}/received_events
func (c *Client) ReceivedEvents(ctx context.Context) ([]Event, error) {
	return listAll[Event](ctx, c, "users", c.login, "received_events")
}

// PublicReceivedEvents lists public events the user has received.
// GET /users/{user}/received_events/public
func (c *Client) PublicReceivedEvents(ctx context.Context) ([]Event, error) {
	return listAll[Event](ctx, c, "users", c.login, "received_events", "public")
}

// WatchedRepos lists the repositories the user is subscribed to.
// GET /users/{user}/subscriptions
func (c *Client) WatchedRepos(ctx context.Context) ([]Repository, error) {
	return listAll[Repository](ctx, c, "users", c.login, "subscriptions")
}

// Gists lists the user's gists.
// GET /users/{user}/gists
func (c *Client) Gists(ctx context.Context) ([]Gist, error) {
	return listAll[Gist](ctx, c, "users", c.login, "gists")
}

// ---- repositories ----

// Repo fetches one of the user's repositories.
// GET /repos/{user}/{repo}
func (c *Client) Repo(ctx context.Context, repo string) (*Repository, error) {
	return getOne[Repository](ctx, c, "repos", c.login, repo)
}

// RepoInfo fetches a repository sub-resource.
// GET /repos/{user}/{repo}/{sel}
func (c *Client) RepoInfo(ctx context.Context, repo string, sel RepoInfoSelector) (Result, error) {
	if !sel.valid() {
		return Result{}, nil
	}
	return c.fetch(ctx, c.endpoint(nil, "repos", c.login, repo, string(sel)))
}

// RepoBranch fetches a single branch.
// GET /repos/{user}/{repo}/branches/{branch}
func (c *Client) RepoBranch(ctx context.Context, repo, branch string) (*Branch, error) {
	return getOne[Branch](ctx, c, "repos", c.login, repo, "branches", branch)
}

// RepoCollection fetches one of the issue-tracker collections of a repository.
// GET /repos/{user}/{repo}/{sel}
func (c *Client) RepoCollection(ctx context.Context, repo string, sel CollectionSelector) (Result, error) {
	if !sel.valid() {
		return Result{}, nil
	}
	return c.fetch(ctx, c.endpoint(nil, "repos", c.login, repo, string(sel)))
}

// RepoCommits lists the commits of a repository.
// GET /repos/{user}/{repo}/commits
func (c *Client) RepoCommits(ctx context.Context, repo string) ([]Commit, error) {
	return listAll[Commit](ctx, c, "repos", c.login, repo, "commits")
}

// RepoCommitSHAs returns the SHAs of RepoCommits, newest first.
func (c *Client) RepoCommitSHAs(ctx context.Context, repo string) ([]string, error) {
	commits, err := c.RepoCommits(ctx, repo)
	if err != nil {
		return nil, err
	}
	shas := make([]string, 0, len(commits))
	for _, commit := range commits {
		shas = append(shas, commit.SHA)
	}
	return shas, nil
}

// RepoCommit fetches a single commit, including its line stats.
// GET /repos/{user}/{repo}/commits/{sha}
func (c *Client) RepoCommit(ctx context.Context, repo, sha string) (*Commit, error) {
	return getOne[Commit](ctx, c, "repos", c.login, repo, "commits", sha)
}

// ReposCommits maps every owned repository name to its commit SHAs.
func (c *Client) ReposCommits(ctx context.Context) (map[string][]string, error) {
	names, err := c.UserRepoNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(names))
	for _, name := range names {
		shas, err := c.RepoCommitSHAs(ctx, name)
		if err != nil {
			return nil, err
		}
		out[name] = shas
	}
	return out, nil
}

// ---- issues ----

// RepoIssueComments lists all issue comments of a repository.
// GET /repos/{user}/{repo}/issues/comments
func (c *Client) RepoIssueComments(ctx context.Context, repo string) ([]IssueComment, error) {
	return listAll[IssueComment](ctx, c, "repos", c.login, repo, "issues", "comments")
}

// RepoIssueInfo fetches a sub-resource of one issue.
// GET /repos/{user}/{repo}/issues/{issue}/{sel}
func (c *Client) RepoIssueInfo(ctx context.Context, repo string, issue ID, sel IssueSelector) (Result, error) {
	if !sel.valid() {
		return Result{}, nil
	}
	return c.fetch(ctx, c.endpoint(nil, "repos", c.login, repo, "issues", string(issue), string(sel)))
}

// RepoMilestoneLabels lists the labels of a milestone's issues.
// GET /repos/{user}/{repo}/milestones/{milestone}/labels
func (c *Client) RepoMilestoneLabels(ctx context.Context, repo string, milestone ID) ([]Label, error) {
	return listAll[Label](ctx, c, "repos", c.login, repo, "milestones", string(milestone), "labels")
}

// ---- statistics ----

// RepoStats fetches a statistics sub-resource of owner/repo.
// GET /repos/{owner}/{repo}/stats/{sel}
//
// GitHub computes these lazily: the first request for a repository usually
// answers 202 Accepted with an empty body, which reads as Empty here.
func (c *Client) RepoStats(ctx context.Context, owner, repo string, sel StatsSelector) (Result, error) {
	if !sel.valid() {
		return Result{}, nil
	}
	return c.fetch(ctx, c.endpoint(nil, "repos", owner, repo, "stats", string(sel)))
}

// ContributorStats returns per-author weekly additions, deletions and commits.
func (c *Client) ContributorStats(ctx context.Context, owner, repo string) ([]ContributorStats, error) {
	var stats []ContributorStats
	if _, err := c.getJSON(ctx, c.endpoint(nil, "repos", owner, repo, "stats", string(StatsContributors)), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Participation returns the weekly commit series of owner/repo, or nil when
// GitHub has nothing to report.
func (c *Client) Participation(ctx context.Context, owner, repo string) (*Participation, error) {
	return getOne[Participation](ctx, c, "repos", owner, repo, "stats", string(StatsParticipation))
}

// commitsQuery asks for a single page of n commits, clamped to perPage.
func commitsQuery(n int) url.Values {
	if n <= 0 || n > perPage {
		n = perPage
	}
	return url.Values{"per_page": {strconv.Itoa(n)}}
}

// RecentCommits returns at most n of the newest commits of a repository.
func (c *Client) RecentCommits(ctx context.Context, repo string, n int) ([]Commit, error) {
	var commits []Commit
	if _, err := c.getJSON(ctx, c.endpoint(commitsQuery(n), "repos", c.login, repo, "commits"), &commits); err != nil {
		return nil, err
	}
	return commits, nil
}
