package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/network"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

func newAdjacencyCmd(flags *rootFlags) *cobra.Command {
	var out, field string
	cmd := &cobra.Command{
		Use:   "adjacency <list.csv>...",
		Short: "Combine adjacency lists into one canonical list",
		Long: `Adjacency merges adjacency lists produced by separate detection passes
(for example the four raster shift directions) into one list with each core
pair once, in canonical order, and without self pairs.

Example:
  linkmapper adjacency right.csv up.csv upright.csv upleft.csv -o eucAdj.csv`,
		Args: minimumArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lists := make([][]types.CorePair, 0, len(args))
			for _, path := range args {
				pairs, err := linktable.ReadAdjacencyFile(path)
				if err != nil {
					return err
				}
				lists = append(lists, pairs)
			}
			combined := network.CombineAdjacency(lists...)
			if out == "" {
				return linktable.WriteAdjacency(cmd.OutOrStdout(), field, combined)
			}
			if err := linktable.WriteAdjacencyFile(out, field, combined); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d core pairs to %s\n", len(combined), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&field, "field", types.DefaultConfig().CoreIDField, "core id field name for the header")
	return cmd
}
