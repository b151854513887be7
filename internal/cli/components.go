package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/network"
)

// coreJSON is one core in the --json form of the components command.
type coreJSON struct {
	Core      int   `json:"core"`
	Component int   `json:"component"`
	Cluster   int   `json:"cluster"`
	Targets   []int `json:"targets"`
}

func newComponentsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "components <table.csv>",
		Short: "Label the connected components of a link table's active corridors",
		Long: `Components prints one row per core with the label of the component it
belongs to when only active corridors connect cores. Labels are numbered
from 0 in order of each component's smallest core id. Each row also carries
the cluster id the table records for the core and the cores it reaches by
a corridor link, separated by ';'.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := linktable.ReadFile(args[0])
			if err != nil {
				return err
			}
			t.Canonicalize()
			labels := network.Components(t.Cores(), t.ActivePairs())
			clusters := t.CoreClusters()

			cores := make([]int, 0, len(labels))
			for c := range labels {
				cores = append(cores, c)
			}
			slices.Sort(cores)

			rows := make([]coreJSON, 0, len(cores))
			for _, c := range cores {
				rows = append(rows, coreJSON{
					Core:      c,
					Component: labels[c],
					Cluster:   clusters[c],
					Targets:   t.CoreTargets(c),
				})
			}
			if flags.jsonMode {
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "core,component,cluster,targets")
			for _, r := range rows {
				targets := make([]string, len(r.Targets))
				for i, c := range r.Targets {
					targets[i] = strconv.Itoa(c)
				}
				fmt.Fprintf(out, "%d,%d,%d,%s\n", r.Core, r.Component, r.Cluster, strings.Join(targets, ";"))
			}
			return nil
		},
	}
}
