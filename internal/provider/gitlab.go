package provider

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"
)

// DefaultGitLabBaseURL is the REST API of gitlab.com. Self-hosted instances
// serve the same API under https://{host}/api/v4.
const DefaultGitLabBaseURL = "https://gitlab.com/api/v4"

// GitLabClient is the GitLab counterpart of Client: the same URL building,
// credential merging, failure policy and pagination, against the projects
// and users of a GitLab instance.
//
// API docs: https://docs.gitlab.com/ee/api/rest/
type GitLabClient struct {
	c *Client
}

// NewGitLabClient creates a GitLabClient. creds is normally a
// PrivateTokenCredentials; nil sends anonymous requests.
func NewGitLabClient(fetcher *Fetcher, cfg Config, creds Credentials) *GitLabClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGitLabBaseURL
	}
	c := NewClient(fetcher, cfg, "", creds)
	c.logger = fetcher.logger.With(slog.String("provider", "gitlab"))
	return &GitLabClient{c: c}
}

// ProjectQuery filters and orders the project listing.
type ProjectQuery struct {
	Archived bool
	// OrderBy is one of id, name, path, created_at, updated_at, last_activity_at.
	OrderBy string
	// Sort is asc or desc.
	Sort string
}

// DefaultProjectQuery lists every project, archived ones included, oldest id
// first.
func DefaultProjectQuery() ProjectQuery {
	return ProjectQuery{Archived: true, OrderBy: "id", Sort: "asc"}
}

func (q ProjectQuery) values() url.Values {
	v := url.Values{"archived": {strconv.FormatBool(q.Archived)}}
	if q.OrderBy != "" {
		v.Set("order_by", q.OrderBy)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// ---- projects ----

// Projects lists the projects visible to the token.
// GET /projects?archived=&order_by=&sort=
func (g *GitLabClient) Projects(ctx context.Context, q ProjectQuery) ([]Project, error) {
	return listAllWith[Project](ctx, g.c, q.values(), "projects")
}

// ProjectIDs returns the ids of Projects under DefaultProjectQuery, in order.
func (g *GitLabClient) ProjectIDs(ctx context.Context) ([]int64, error) {
	projects, err := g.Projects(ctx, DefaultProjectQuery())
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// Project fetches one project.
// GET /projects/{id}
func (g *GitLabClient) Project(ctx context.Context, project ID) (*Project, error) {
	return getOne[Project](ctx, g.c, "projects", string(project))
}

// ProjectSnippets lists a project's snippets.
// GET /projects/{id}/snippets
func (g *GitLabClient) ProjectSnippets(ctx context.Context, project ID) ([]Snippet, error) {
	return listAll[Snippet](ctx, g.c, "projects", string(project), "snippets")
}

// ProjectSnippet fetches one snippet's metadata.
// GET /projects/{id}/snippets/{snippet}
func (g *GitLabClient) ProjectSnippet(ctx context.Context, project, snippet ID) (*Snippet, error) {
	return getOne[Snippet](ctx, g.c, "projects", string(project), "snippets", string(snippet))
}

// ProjectSnippetRaw fetches a snippet's content as plain text. Under
// FailuresAsEmpty a failed request reads as "".
// GET /projects/{id}/snippets/{snippet}/raw
func (g *GitLabClient) ProjectSnippetRaw(ctx context.Context, project, snippet ID) (string, error) {
	rawURL := g.c.endpoint(nil, "projects", string(project), "snippets", string(snippet), "raw")
	res := g.c.fetcher.GetText(ctx, rawURL)
	if res.Failed() {
		if g.c.policy == FailuresAsErrors {
			return "", res.Err
		}
		return "", nil
	}
	return res.Text(), nil
}

// ProjectInfo fetches a repository sub-resource of a project. An unknown
// selector sends nothing and returns an empty Result.
// GET /projects/{id}/repository/{tags|tree|files|commits|contributors}
func (g *GitLabClient) ProjectInfo(ctx context.Context, project ID, sel ProjectInfoSelector) (Result, error) {
	sub, ok := sel.path()
	if !ok {
		return Result{}, nil
	}
	return g.c.fetch(ctx, g.c.endpoint(nil, "projects", string(project), "repository", sub))
}

// Commit fetches a single commit of a project.
// GET /projects/{id}/repository/commits/{sha}
func (g *GitLabClient) Commit(ctx context.Context, project ID, sha string) (*ProjectCommit, error) {
	return getOne[ProjectCommit](ctx, g.c, "projects", string(project), "repository", "commits", sha)
}

// ProjectEvents lists a project's events.
// GET /projects/{id}/events
func (g *GitLabClient) ProjectEvents(ctx context.Context, project ID) ([]ProjectEvent, error) {
	return listAll[ProjectEvent](ctx, g.c, "projects", string(project), "events")
}

// ProjectMembers lists a project's members.
// GET /projects/{id}/members
func (g *GitLabClient) ProjectMembers(ctx context.Context, project ID) ([]ProjectMember, error) {
	return listAll[ProjectMember](ctx, g.c, "projects", string(project), "members")
}

// ---- users ----

// Users lists the users of the instance.
// GET /users
func (g *GitLabClient) Users(ctx context.Context) ([]GitLabUser, error) {
	return listAll[GitLabUser](ctx, g.c, "users")
}

// User fetches one user.
// GET /users/{id}
func (g *GitLabClient) User(ctx context.Context, user ID) (*GitLabUser, error) {
	return getOne[GitLabUser](ctx, g.c, "users", string(user))
}

// UserKeys lists a user's public SSH keys.
// GET /users/{id}/keys
func (g *GitLabClient) UserKeys(ctx context.Context, user ID) ([]SSHKey, error) {
	return listAll[SSHKey](ctx, g.c, "users", string(user), "keys")
}

// GitLab REST response shapes.

// Project is an entry of /projects or /projects/{id}.
type Project struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	PathWithNamespace string    `json:"path_with_namespace"`
	Description       string    `json:"description"`
	WebURL            string    `json:"web_url"`
	DefaultBranch     string    `json:"default_branch"`
	Archived          bool      `json:"archived"`
	StarCount         int       `json:"star_count"`
	ForksCount        int       `json:"forks_count"`
	LastActivityAt    time.Time `json:"last_activity_at"`
}

// Snippet is a project snippet.
type Snippet struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	FileName  string     `json:"file_name"`
	Author    GitLabUser `json:"author"`
	WebURL    string     `json:"web_url"`
	CreatedAt time.Time  `json:"created_at"`
}

// ProjectCommit is /projects/{id}/repository/commits/{sha}.
type ProjectCommit struct {
	ID          string       `json:"id"`
	ShortID     string       `json:"short_id"`
	Title       string       `json:"title"`
	Message     string       `json:"message"`
	AuthorName  string       `json:"author_name"`
	AuthorEmail string       `json:"author_email"`
	CreatedAt   time.Time    `json:"created_at"`
	Stats       *CommitStats `json:"stats,omitempty"`
}

// ProjectEvent is an entry of /projects/{id}/events.
type ProjectEvent struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	ActionName     string    `json:"action_name"`
	TargetType     string    `json:"target_type"`
	AuthorUsername string    `json:"author_username"`
	CreatedAt      time.Time `json:"created_at"`
}

// GitLabUser is an entry of /users, or an embedded author.
type GitLabUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	State    string `json:"state"`
	WebURL   string `json:"web_url"`
}

// ProjectMember is a user plus their access level on one project.
type ProjectMember struct {
	GitLabUser
	AccessLevel int `json:"access_level"`
}

// SSHKey is an entry of /users/{id}/keys.
type SSHKey struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}
