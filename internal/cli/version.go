package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the linkmapper release. Overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/linkmapper/internal/cli.Version=...".
var Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/linkmapper"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the linkmapper version",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "linkmapper v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
