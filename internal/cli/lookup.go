package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
)

func newLookupCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <table.csv> <link_id> | <table.csv> <core1> <core2>",
		Short: "Print the link table rows for a link id or a core pair",
		Long: `Lookup prints the rows of a link table selected either by link id or by
the pair of cores they connect, in either order. Output uses the table's own
header and width.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 && len(args) != 3 {
				return userError(fmt.Errorf("accepts 2 or 3 arg(s), received %d", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int, 0, 2)
			for _, a := range args[1:] {
				id, err := strconv.Atoi(a)
				if err != nil || id < 1 {
					return userError(fmt.Errorf("%q is not a positive id", a))
				}
				ids = append(ids, id)
			}

			t, err := linktable.ReadFile(args[0])
			if err != nil {
				return err
			}

			var rows []int
			if len(ids) == 1 {
				if i := t.RowForLinkID(ids[0]); i >= 0 {
					rows = []int{i}
				}
			} else {
				rows = t.RowsForPair(ids[0], ids[1])
			}
			if len(rows) == 0 {
				return userError(fmt.Errorf("no link matches %v", ids))
			}

			sel := linktable.New()
			if t.Wide() {
				sel.MarkWide()
			}
			for _, i := range rows {
				sel.Append(t.At(i))
			}
			if flags.jsonMode {
				return writeJSON(cmd, sel.Links())
			}
			return linktable.Write(cmd.OutOrStdout(), sel)
		},
	}
}
