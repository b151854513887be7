// Package cli implements the linkmapper command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configFile string
	projectDir string
	logMode    string
	jsonMode   bool
}

// NewRootCmd creates the top-level "linkmapper" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "linkmapper",
		Short: "Build and prune corridor networks between habitat core areas",
		Long: "Linkmapper turns pairwise distances between habitat core areas into a\n" +
			"link table of candidate corridors, then filters and annotates it in\n" +
			"five steps: adjacency, network construction, cost-weighted distances,\n" +
			"network refinement, and path metrics.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return userError(err)
	})

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "configuration file (default: <project-dir>/linkmapper.yaml)")
	root.PersistentFlags().StringVar(&flags.projectDir, "project-dir", "", "project directory (default: $LINKMAPPER_PROJECT_DIR or the working directory)")
	root.PersistentFlags().StringVar(&flags.logMode, "log-mode", "", "log mode: dev or prod")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(flags))
	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newAdjacencyCmd(flags))
	root.AddCommand(newReportCmd(flags))
	root.AddCommand(newComponentsCmd(flags))
	root.AddCommand(newLookupCmd(flags))
	root.AddCommand(newHistoryCmd(flags))

	return root
}

// Run executes the command line args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitCode maps configuration and usage errors to exitUserError and
// everything else to exitSysError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrConfig):
		return exitUserError
	default:
		return exitSysError
	}
}

// userError marks a usage error so it maps to exitUserError.
func userError(err error) error {
	return fmt.Errorf("%w: %w", types.ErrConfig, err)
}

// exactArgs is cobra.ExactArgs with usage errors mapped to exitUserError.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return userError(err)
		}
		return nil
	}
}

// minimumArgs is cobra.MinimumNArgs with usage errors mapped to
// exitUserError.
func minimumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return userError(err)
		}
		return nil
	}
}
