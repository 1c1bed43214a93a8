package model

// CountRow is a (category, count) row of the stats summary table.
type CountRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatsView is what the stats page renders.
type StatsView struct {
	Summary        []CountRow    `json:"summary"`
	Commits        []RepoCount   `json:"commits"`
	TotalCommits   int           `json:"totalCommits"`
	Deletions      []DeletionRow `json:"deletions"`
	ContribCommits int           `json:"contribCommits"`
	Stargazers     int           `json:"stargazers"`
	// Notice is shown above the tables when the numbers are known to be incomplete.
	Notice string `json:"notice,omitempty"`
}

// EmptyStatsView is the view for anonymous visitors.
func EmptyStatsView() *StatsView {
	return &StatsView{
		Summary:   []CountRow{},
		Commits:   []RepoCount{},
		Deletions: []DeletionRow{},
	}
}

// NewStatsView turns a snapshot into display rows.
func NewStatsView(s *StatsSnapshot) *StatsView {
	if s == nil {
		return EmptyStatsView()
	}

	v := &StatsView{
		Summary: []CountRow{
			{Label: "Repos", Count: len(s.RepoInfo.Repos)},
			{Label: "Forks of user repos", Count: s.RepoInfo.ForkTotal},
			{Label: "User forked", Count: s.RepoInfo.OwnedForks},
			{Label: "Repositories contributed to", Count: s.RepoInfo.Contributed},
		},
		Commits:    nonNil(s.RepoCommits),
		Deletions:  nonNil(s.Deletions),
		Stargazers: s.Stargazers,
	}
	for _, c := range s.RepoCommits {
		v.TotalCommits += c.Commits
	}
	for _, c := range s.ContribRepoCommits {
		v.ContribCommits += c.Commits
	}
	return v
}
