package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/gitstats/internal/provider"
)

func newCommitsCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "commits <repo>",
		Short: "List the newest commits of one of --login's repositories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireLogin(); err != nil {
				return err
			}
			client := opts.client(cmd.ErrOrStderr())

			commits, err := client.RecentCommits(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("listing commits of %s/%s: %w", client.Login(), args[0], err)
			}

			out := cmd.OutOrStdout()
			if opts.format == FormatJSON {
				return writeJSON(out, commits)
			}
			return writeTables(out, []table{commitTable(commits)})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of commits to show (at most 100)")
	return cmd
}

func commitTable(commits []provider.Commit) table {
	t := table{title: "Recent commits", header: []string{"SHA", "Date", "Author", "Message"}}
	for _, c := range commits {
		sha := c.SHA
		if len(sha) > 7 {
			sha = sha[:7]
		}
		date := ""
		if !c.Commit.Author.Date.IsZero() {
			date = c.Commit.Author.Date.Format("2006-01-02")
		}
		subject, _, _ := strings.Cut(c.Commit.Message, "\n")
		t.rows = append(t.rows, []string{sha, date, c.Commit.Author.Name, subject})
	}
	return t
}
