package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// table is one titled block of the table format.
type table struct {
	title  string
	header []string
	rows   [][]string
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTables renders each table with pterm. An empty table prints "(none)"
// under its title.
func writeTables(w io.Writer, tables []table) error {
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, pterm.Bold.Sprint(t.title))

		if len(t.rows) == 0 {
			fmt.Fprintln(w, "(none)")
			continue
		}

		data := append([][]string{t.header}, t.rows...)
		rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return fmt.Errorf("rendering %s: %w", t.title, err)
		}
		if _, err := fmt.Fprintln(w, rendered); err != nil {
			return err
		}
	}
	return nil
}
