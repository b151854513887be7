package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/linkmapper/internal/logger"
	"github.com/mesh-intelligence/linkmapper/internal/pipeline"
	"github.com/mesh-intelligence/linkmapper/internal/sqlite"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run pipeline steps",
		Long: `Run the selected pipeline steps in order. Steps may start and stop
anywhere, but only step 4 may be skipped in between. Link tables from the
first selected step on are removed before the run starts.

Example:
  linkmapper run
  linkmapper run --steps 3,4,5
  linkmapper run --steps 1,2,3,5 --project-dir ./study`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, v, flags)
		},
	}
	cmd.Flags().IntSlice(cfgKeySteps, nil, "steps to run, e.g. 2,3,4 (default: all)")
	cmd.Flags().Bool("connect-fragments", false, "merge nearby cores into clusters and stop after step 2")
	cmd.Flags().Bool("prune-network", false, "keep only each core's nearest neighbours in step 4")
	_ = v.BindPFlag(cfgKeySteps, cmd.Flags().Lookup(cfgKeySteps))
	_ = v.BindPFlag("connect_fragments", cmd.Flags().Lookup("connect-fragments"))
	_ = v.BindPFlag("prune_network", cmd.Flags().Lookup("prune-network"))
	return cmd
}

func runPipeline(cmd *cobra.Command, v *viper.Viper, flags *rootFlags) error {
	cfg, err := loadConfig(v, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	env, err := pipeline.NewFileEnv(cfg, log)
	if err != nil {
		return err
	}
	if err := env.Layout.Ensure(); err != nil {
		return err
	}

	archive := sqlite.NewArchive()
	if err := archive.Attach(env.Layout.ArchivePath()); err != nil {
		return fmt.Errorf("attach archive: %w", err)
	}
	defer archive.Detach()

	runID, err := archive.BeginRun(cfg)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	env.Archive = archive
	env.RunID = runID
	env.Log = log.With("run", runID)
	env.Out = cmd.OutOrStdout()

	env.Log.Info("starting run", "project_dir", cfg.ProjectDir, "steps", cfg.Steps)
	if err := pipeline.Run(cmd.Context(), env); err != nil {
		env.Log.Error("run failed", "error", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Run %s finished\n", runID)
	return nil
}
