package provider

import "time"

// GitHub REST response shapes. Only the fields this application reads are
// declared; encoding/json ignores the rest.
//
// API docs: https://docs.github.com/en/rest

// Owner is the account that owns a repository (user or organization).
type Owner struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Type  string `json:"type"`
}

// Repository is an entry of /users/{user}/repos, /users/{user}/subscriptions
// and /repos/{owner}/{repo}.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Owner           Owner     `json:"owner"`
	Private         bool      `json:"private"`
	Fork            bool      `json:"fork"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language"`
	ForksCount      int       `json:"forks_count"`
	StargazersCount int       `json:"stargazers_count"`
	WatchersCount   int       `json:"watchers_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	DefaultBranch   string    `json:"default_branch"`
	CreatedAt       time.Time `json:"created_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

// Organization is an entry of /users/{user}/orgs or /orgs/{org}.
type Organization struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Description string `json:"description"`
}

// Membership is an entry of /user/memberships/orgs.
type Membership struct {
	State        string       `json:"state"`
	Role         string       `json:"role"`
	Organization Organization `json:"organization"`
}

// Team is /orgs/{org}/teams/{team}.
type Team struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
}

// Event is an entry of the events feeds.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Actor     Owner     `json:"actor"`
	Repo      EventRepo `json:"repo"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepo is the short repository reference inside an Event.
type EventRepo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Gist is an entry of /users/{user}/gists.
type Gist struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Public      bool      `json:"public"`
	HTMLURL     string    `json:"html_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Commit is an entry of /repos/{owner}/{repo}/commits, or the single commit
// at /repos/{owner}/{repo}/commits/{sha} (which also fills Stats).
type Commit struct {
	SHA     string       `json:"sha"`
	HTMLURL string       `json:"html_url"`
	Commit  CommitDetail `json:"commit"`
	Author  *Owner       `json:"author"`
	Stats   *CommitStats `json:"stats,omitempty"`
}

// CommitDetail is the git-level part of a Commit.
type CommitDetail struct {
	Message string `json:"message"`
	Author  struct {
		Name  string    `json:"name"`
		Email string    `json:"email"`
		Date  time.Time `json:"date"`
	} `json:"author"`
}

// CommitStats are the line counts of a single commit.
type CommitStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	Total     int `json:"total"`
}

// Branch is /repos/{owner}/{repo}/branches/{branch}.
type Branch struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
	Commit    struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Label is an issue or milestone label.
type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// IssueComment is an entry of the issue comment listings.
type IssueComment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	User      Owner     `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// ContributorStats is an entry of /repos/{owner}/{repo}/stats/contributors.
// Author is nil for commits whose author is not a GitHub account.
type ContributorStats struct {
	Author *Owner `json:"author"`
	Total  int    `json:"total"`
	Weeks  []Week `json:"weeks"`
}

// Week is one week of a contributor's activity.
type Week struct {
	Start     int64 `json:"w"`
	Additions int   `json:"a"`
	Deletions int   `json:"d"`
	Commits   int   `json:"c"`
}

// Participation is /repos/{owner}/{repo}/stats/participation: weekly commit
// counts for the last 52 weeks, for everyone (All) and for the owner.
type Participation struct {
	All   []int `json:"all"`
	Owner []int `json:"owner"`
}
