package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sakif/gitstats/internal/model"
)

func newSnapshotCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Compute every statistic for --login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireLogin(); err != nil {
				return err
			}
			client := opts.client(cmd.ErrOrStderr())

			snapshot, err := client.Snapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("computing statistics for %s: %w", client.Login(), err)
			}

			out := cmd.OutOrStdout()
			if opts.format == FormatJSON {
				return writeJSON(out, snapshot)
			}
			return writeTables(out, viewTables(model.NewStatsView(snapshot)))
		},
	}
}

// viewTables turns a view into the tables printed by the table format, in
// the order the stats page shows them.
func viewTables(v *model.StatsView) []table {
	summary := table{title: "Summary", header: []string{"Category", "Count"}}
	for _, row := range v.Summary {
		summary.rows = append(summary.rows, []string{row.Label, strconv.Itoa(row.Count)})
	}
	summary.rows = append(summary.rows,
		[]string{"Total commits", strconv.Itoa(v.TotalCommits)},
		[]string{"Commits to other repositories", strconv.Itoa(v.ContribCommits)},
		[]string{"Stargazers", strconv.Itoa(v.Stargazers)},
	)

	commits := table{title: "Commits by repository", header: []string{"Repository", "Commits"}}
	for _, row := range v.Commits {
		commits.rows = append(commits.rows, []string{row.Repo, strconv.Itoa(row.Commits)})
	}

	deletions := table{title: "Additions and deletions (log scale)", header: []string{"Repository", "Additions", "Deletions"}}
	for _, row := range v.Deletions {
		deletions.rows = append(deletions.rows, []string{
			row.Repo,
			strconv.FormatFloat(row.Additions, 'f', 2, 64),
			strconv.FormatFloat(row.Deletions, 'f', 2, 64),
		})
	}

	return []table{summary, commits, deletions}
}
