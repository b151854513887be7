package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/linkmapper/internal/paths"
	"github.com/mesh-intelligence/linkmapper/internal/sqlite"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

const configHeader = "# linkmapper project configuration\n" +
	"# Keys may be overridden by LINKMAPPER_<KEY> environment variables.\n\n"

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a linkmapper project",
		Long: "Create the project directories, write a default linkmapper.yaml if\n" +
			"none exists, and create the run archive.",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	projectDir, err := paths.ResolveProjectDir(flags.projectDir, "")
	if err != nil {
		return fmt.Errorf("resolve project dir: %w", err)
	}
	layout, err := paths.NewLayout(projectDir)
	if err != nil {
		return err
	}
	if err := layout.Ensure(); err != nil {
		return err
	}

	path := configPath(flags, projectDir)
	written, err := writeConfigIfMissing(path)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	archive := sqlite.NewArchive()
	if err := archive.Attach(layout.ArchivePath()); err != nil {
		return fmt.Errorf("initialize archive: %w", err)
	}
	if err := archive.Detach(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}

	out := cmd.OutOrStdout()
	if written {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	fmt.Fprintf(out, "Project initialized in %s\n", projectDir)
	return nil
}

// writeConfigIfMissing creates the configuration file with default values
// if it does not exist. It reports whether a file was written.
func writeConfigIfMissing(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	data = append([]byte(configHeader), data...)
	return true, os.WriteFile(path, data, 0o644)
}
