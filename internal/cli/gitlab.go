package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sakif/gitstats/internal/provider"
)

func newGitLabCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gitlab",
		Short: "Query a GitLab instance with a private token",
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.gitlabURL, "gitlab-url", envOr("GITLAB_API_URL", provider.DefaultGitLabBaseURL), "GitLab API base URL [$GITLAB_API_URL]")
	flags.StringVar(&opts.privateToken, "private-token", envOr("GITLAB_TOKEN", ""), "GitLab private token [$GITLAB_TOKEN]")

	cmd.AddCommand(newGitLabProjectsCmd(opts))
	return cmd
}

func newGitLabProjectsCmd(opts *options) *cobra.Command {
	query := provider.DefaultProjectQuery()

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects visible to the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.gitlabClient(cmd.ErrOrStderr())

			projects, err := client.Projects(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("listing gitlab projects: %w", err)
			}

			out := cmd.OutOrStdout()
			if opts.format == FormatJSON {
				return writeJSON(out, projects)
			}
			return writeTables(out, []table{projectTable(projects)})
		},
	}
	cmd.Flags().BoolVar(&query.Archived, "archived", query.Archived, "include archived projects")
	cmd.Flags().StringVar(&query.OrderBy, "order-by", query.OrderBy, "id, name, path, created_at, updated_at or last_activity_at")
	cmd.Flags().StringVar(&query.Sort, "sort", query.Sort, "asc or desc")
	return cmd
}

func projectTable(projects []provider.Project) table {
	t := table{title: "Projects", header: []string{"ID", "Project", "Stars", "Forks", "Archived"}}
	for _, p := range projects {
		t.rows = append(t.rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.PathWithNamespace,
			strconv.Itoa(p.StarCount),
			strconv.Itoa(p.ForksCount),
			strconv.FormatBool(p.Archived),
		})
	}
	return t
}
