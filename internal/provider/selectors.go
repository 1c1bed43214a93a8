package provider

// Resource selectors name a sub-resource of an organization, team,
// repository or issue. Each method accepts only its own allow-list; any other
// value makes the call a no-op that returns an empty Result.

// OrgSelector selects /orgs/{org}/{selector}. The zero value selects the
// organization itself.
type OrgSelector string

const (
	OrgMembers       OrgSelector = "members"
	OrgPublicMembers OrgSelector = "public_members"
	OrgTeams         OrgSelector = "teams"
	OrgHooks         OrgSelector = "hooks"
)

// TeamSelector selects /orgs/{org}/teams/{team}/{selector}.
type TeamSelector string

const (
	TeamMembers TeamSelector = "members"
	TeamRepos   TeamSelector = "repos"
)

// RepoInfoSelector selects /repos/{owner}/{repo}/{selector}.
type RepoInfoSelector string

const (
	RepoContributors  RepoInfoSelector = "contributors"
	RepoLanguages     RepoInfoSelector = "languages"
	RepoTags          RepoInfoSelector = "tags"
	RepoBranches      RepoInfoSelector = "branches"
	RepoCollaborators RepoInfoSelector = "collaborators"
)

// CollectionSelector selects the issue-tracker collections of a repository.
type CollectionSelector string

const (
	CollectionMilestones    CollectionSelector = "milestones"
	CollectionCollaborators CollectionSelector = "collaborators"
	CollectionEvents        CollectionSelector = "events"
	CollectionSubscribers   CollectionSelector = "subscribers"
	CollectionIssues        CollectionSelector = "issues"
	CollectionAssignees     CollectionSelector = "assignees"
	CollectionLabels        CollectionSelector = "labels"
)

// IssueSelector selects /repos/{owner}/{repo}/issues/{issue}/{selector}.
type IssueSelector string

const (
	IssueComments IssueSelector = "comments"
	IssueEvents   IssueSelector = "events"
	IssueLabels   IssueSelector = "labels"
)

// StatsSelector selects /repos/{owner}/{repo}/stats/{selector}.
type StatsSelector string

const (
	StatsContributors   StatsSelector = "contributors"
	StatsCommitActivity StatsSelector = "commit_activity"
	StatsCodeFrequency  StatsSelector = "code_frequency"
	StatsParticipation  StatsSelector = "participation"
	StatsPunchCard      StatsSelector = "punch_card"
)

// ProjectInfoSelector selects a repository sub-resource of a GitLab project,
// /projects/{id}/repository/{path}.
type ProjectInfoSelector string

const (
	ProjectTags         ProjectInfoSelector = "tags"
	ProjectTrees        ProjectInfoSelector = "trees"
	ProjectFiles        ProjectInfoSelector = "files"
	ProjectCommits      ProjectInfoSelector = "commits"
	ProjectContributors ProjectInfoSelector = "contributors"
)

func (s OrgSelector) valid() bool {
	switch s {
	case OrgMembers, OrgPublicMembers, OrgTeams, OrgHooks:
		return true
	}
	return false
}

func (s TeamSelector) valid() bool {
	return s == TeamMembers || s == TeamRepos
}

func (s RepoInfoSelector) valid() bool {
	switch s {
	case RepoContributors, RepoLanguages, RepoTags, RepoBranches, RepoCollaborators:
		return true
	}
	return false
}

func (s CollectionSelector) valid() bool {
	switch s {
	case CollectionMilestones, CollectionCollaborators, CollectionEvents,
		CollectionSubscribers, CollectionIssues, CollectionAssignees, CollectionLabels:
		return true
	}
	return false
}

func (s IssueSelector) valid() bool {
	switch s {
	case IssueComments, IssueEvents, IssueLabels:
		return true
	}
	return false
}

func (s StatsSelector) valid() bool {
	switch s {
	case StatsContributors, StatsCommitActivity, StatsCodeFrequency, StatsParticipation, StatsPunchCard:
		return true
	}
	return false
}

// path returns the repository sub-path for s. GitLab calls the tree listing
// "tree", singular.
func (s ProjectInfoSelector) path() (string, bool) {
	switch s {
	case ProjectTrees:
		return "tree", true
	case ProjectTags, ProjectFiles, ProjectCommits, ProjectContributors:
		return string(s), true
	}
	return "", false
}
