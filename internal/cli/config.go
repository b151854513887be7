package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/linkmapper/internal/paths"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

const envPrefix = "LINKMAPPER"

// Config keys.
const (
	cfgKeyProjectDir = "project_dir"
	cfgKeySteps      = "steps"
	cfgKeyLogMode    = "log_mode"
)

// setDefaults registers every configuration key with its default so that
// LINKMAPPER_* environment variables apply to all of them.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault(cfgKeyProjectDir, d.ProjectDir)
	v.SetDefault("core_file", d.CoreFile)
	v.SetDefault("core_id_field", d.CoreIDField)
	v.SetDefault("distance_file", d.DistanceFile)
	v.SetDefault("euclidean_shift_files", d.EuclideanShiftFiles)
	v.SetDefault("cost_shift_files", d.CostShiftFiles)
	v.SetDefault("euclidean_adjacency_file", d.EuclideanAdjacencyFile)
	v.SetDefault("cost_adjacency_file", d.CostAdjacencyFile)
	v.SetDefault("cost_distance_file", d.CostDistanceFile)
	v.SetDefault("path_length_file", d.PathLengthFile)
	v.SetDefault(cfgKeySteps, d.Steps)
	v.SetDefault("use_max_euclidean_distance", d.UseMaxEuclideanDistance)
	v.SetDefault("max_euclidean_distance", d.MaxEuclideanDistance)
	v.SetDefault("use_min_euclidean_distance", d.UseMinEuclideanDistance)
	v.SetDefault("min_euclidean_distance", d.MinEuclideanDistance)
	v.SetDefault("use_max_cost_distance", d.UseMaxCostDistance)
	v.SetDefault("max_cost_distance", d.MaxCostDistance)
	v.SetDefault("use_min_cost_distance", d.UseMinCostDistance)
	v.SetDefault("min_cost_distance", d.MinCostDistance)
	v.SetDefault("disable_unknown_cost_distance", d.DisableUnknownCostDistance)
	v.SetDefault("use_cost_weighted_adjacency", d.UseCostWeightedAdjacency)
	v.SetDefault("use_euclidean_adjacency", d.UseEuclideanAdjacency)
	v.SetDefault("connect_fragments", d.ConnectFragments)
	v.SetDefault("cluster_merge_threshold", d.ClusterMergeThreshold)
	v.SetDefault("prune_network", d.PruneNetwork)
	v.SetDefault("max_nearest_neighbors", d.MaxNearestNeighbors)
	v.SetDefault("nn_unit", d.NearestNeighborUnit)
	v.SetDefault("keep_constellations", d.KeepConstellations)
	v.SetDefault(cfgKeyLogMode, d.LogMode)
	v.SetDefault("retry_max_tries", d.RetryMaxTries)
	v.SetDefault("retry_initial_interval", d.RetryInitialInterval)
}

// newViper returns a viper instance with defaults and environment
// overrides in place but no file read yet.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// configPath returns the configuration file to read: the --config flag, or
// linkmapper.yaml in projectDir.
func configPath(flags *rootFlags, projectDir string) string {
	if flags.configFile != "" {
		return flags.configFile
	}
	return paths.Layout{ProjectDir: projectDir}.ConfigPath()
}

// loadConfig resolves the project directory, reads its configuration file
// when present, and applies environment and flag overrides. An explicit
// --config that does not exist is a configuration error; a missing default
// file is not.
func loadConfig(v *viper.Viper, flags *rootFlags) (types.Config, error) {
	projectDir, err := paths.ResolveProjectDir(flags.projectDir, "")
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve project dir: %w", err)
	}

	path := configPath(flags, projectDir)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		switch {
		case missing && flags.configFile != "":
			return types.Config{}, fmt.Errorf("config file %s: %w", path, types.ErrMissingInput)
		case !missing:
			return types.Config{}, userError(fmt.Errorf("read config %s: %w", path, err))
		}
	}

	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, userError(fmt.Errorf("decode config: %w", err))
	}

	// Flag, then environment, then file, then the working directory.
	if flags.projectDir != "" {
		cfg.ProjectDir = projectDir
	} else if cfg.ProjectDir, err = paths.ResolveProjectDir("", cfg.ProjectDir); err != nil {
		return types.Config{}, fmt.Errorf("resolve project dir: %w", err)
	}
	if flags.logMode != "" {
		cfg.LogMode = flags.logMode
	}
	return cfg, nil
}
