package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkmapper/internal/paths"
	"github.com/mesh-intelligence/linkmapper/internal/sqlite"
)

// runJSON is the --json form of an archived run.
type runJSON struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	Steps     []stepJSON `json:"steps"`
}

type stepJSON struct {
	Step   int `json:"step"`
	Total  int `json:"total"`
	Active int `json:"active"`
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List archived runs",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := paths.ResolveProjectDir(flags.projectDir, "")
			if err != nil {
				return fmt.Errorf("resolve project dir: %w", err)
			}
			layout, err := paths.NewLayout(projectDir)
			if err != nil {
				return err
			}

			archive := sqlite.NewArchive()
			if err := archive.Attach(layout.ArchivePath()); err != nil {
				return fmt.Errorf("attach archive: %w", err)
			}
			defer archive.Detach()

			runs, err := archive.Runs()
			if err != nil {
				return err
			}
			if flags.jsonMode {
				out := make([]runJSON, 0, len(runs))
				for _, r := range runs {
					rj := runJSON{ID: r.ID, StartedAt: r.StartedAt, Steps: []stepJSON{}}
					for _, s := range r.Steps {
						rj.Steps = append(rj.Steps, stepJSON{Step: s.Step, Total: s.Total, Active: s.Active})
					}
					out = append(out, rj)
				}
				return writeJSON(cmd, out)
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs archived")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTARTED\tSTEPS\tACTIVE LINKS")
			for _, r := range runs {
				steps := make([]string, len(r.Steps))
				active := "-"
				for i, s := range r.Steps {
					steps[i] = fmt.Sprint(s.Step)
					active = fmt.Sprintf("%d/%d", s.Active, s.Total)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.StartedAt.Format(time.RFC3339), strings.Join(steps, ","), active)
			}
			return w.Flush()
		},
	}
}
