// Step configuration bundle shared by every pipeline step.
package types

import (
	"slices"
	"time"
)

// Nearest neighbor distance units.
const (
	UnitEuclidean = "euclidean"
	UnitCost      = "cost"
)

// Log modes.
const (
	LogModeDev  = "dev"
	LogModeProd = "prod"
)

// Config holds the per-run configuration. Every threshold carries an
// explicit use_* switch: a disabled rule is a no-op, never a zero threshold.
type Config struct {
	ProjectDir  string `mapstructure:"project_dir" yaml:"project_dir" json:"project_dir"`
	CoreFile    string `mapstructure:"core_file" yaml:"core_file" json:"core_file"`
	CoreIDField string `mapstructure:"core_id_field" yaml:"core_id_field" json:"core_id_field"`

	// Collaborator outputs consumed by the steps.
	DistanceFile           string   `mapstructure:"distance_file" yaml:"distance_file,omitempty" json:"distance_file,omitempty"`
	EuclideanShiftFiles    []string `mapstructure:"euclidean_shift_files" yaml:"euclidean_shift_files,omitempty" json:"euclidean_shift_files,omitempty"`
	CostShiftFiles         []string `mapstructure:"cost_shift_files" yaml:"cost_shift_files,omitempty" json:"cost_shift_files,omitempty"`
	EuclideanAdjacencyFile string   `mapstructure:"euclidean_adjacency_file" yaml:"euclidean_adjacency_file,omitempty" json:"euclidean_adjacency_file,omitempty"`
	CostAdjacencyFile      string   `mapstructure:"cost_adjacency_file" yaml:"cost_adjacency_file,omitempty" json:"cost_adjacency_file,omitempty"`
	CostDistanceFile       string   `mapstructure:"cost_distance_file" yaml:"cost_distance_file,omitempty" json:"cost_distance_file,omitempty"`
	PathLengthFile         string   `mapstructure:"path_length_file" yaml:"path_length_file,omitempty" json:"path_length_file,omitempty"`

	Steps []int `mapstructure:"steps" yaml:"steps" json:"steps"`

	UseMaxEuclideanDistance    bool    `mapstructure:"use_max_euclidean_distance" yaml:"use_max_euclidean_distance" json:"use_max_euclidean_distance"`
	MaxEuclideanDistance       float64 `mapstructure:"max_euclidean_distance" yaml:"max_euclidean_distance" json:"max_euclidean_distance"`
	UseMinEuclideanDistance    bool    `mapstructure:"use_min_euclidean_distance" yaml:"use_min_euclidean_distance" json:"use_min_euclidean_distance"`
	MinEuclideanDistance       float64 `mapstructure:"min_euclidean_distance" yaml:"min_euclidean_distance" json:"min_euclidean_distance"`
	UseMaxCostDistance         bool    `mapstructure:"use_max_cost_distance" yaml:"use_max_cost_distance" json:"use_max_cost_distance"`
	MaxCostDistance            float64 `mapstructure:"max_cost_distance" yaml:"max_cost_distance" json:"max_cost_distance"`
	UseMinCostDistance         bool    `mapstructure:"use_min_cost_distance" yaml:"use_min_cost_distance" json:"use_min_cost_distance"`
	MinCostDistance            float64 `mapstructure:"min_cost_distance" yaml:"min_cost_distance" json:"min_cost_distance"`
	DisableUnknownCostDistance bool    `mapstructure:"disable_unknown_cost_distance" yaml:"disable_unknown_cost_distance" json:"disable_unknown_cost_distance"`

	UseCostWeightedAdjacency bool `mapstructure:"use_cost_weighted_adjacency" yaml:"use_cost_weighted_adjacency" json:"use_cost_weighted_adjacency"`
	UseEuclideanAdjacency    bool `mapstructure:"use_euclidean_adjacency" yaml:"use_euclidean_adjacency" json:"use_euclidean_adjacency"`

	ConnectFragments      bool    `mapstructure:"connect_fragments" yaml:"connect_fragments" json:"connect_fragments"`
	ClusterMergeThreshold float64 `mapstructure:"cluster_merge_threshold" yaml:"cluster_merge_threshold,omitempty" json:"cluster_merge_threshold,omitempty"`

	PruneNetwork        bool   `mapstructure:"prune_network" yaml:"prune_network" json:"prune_network"`
	MaxNearestNeighbors int    `mapstructure:"max_nearest_neighbors" yaml:"max_nearest_neighbors" json:"max_nearest_neighbors"`
	NearestNeighborUnit string `mapstructure:"nn_unit" yaml:"nn_unit" json:"nn_unit"`
	KeepConstellations  bool   `mapstructure:"keep_constellations" yaml:"keep_constellations" json:"keep_constellations"`

	LogMode              string        `mapstructure:"log_mode" yaml:"log_mode" json:"log_mode"`
	RetryMaxTries        uint          `mapstructure:"retry_max_tries" yaml:"retry_max_tries" json:"retry_max_tries"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval" yaml:"retry_initial_interval" json:"retry_initial_interval"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a key.
func DefaultConfig() Config {
	return Config{
		CoreIDField:              "core_id",
		Steps:                    []int{1, 2, 3, 4, 5},
		UseEuclideanAdjacency:    true,
		UseCostWeightedAdjacency: true,
		MaxNearestNeighbors:      1,
		NearestNeighborUnit:      UnitCost,
		KeepConstellations:       true,
		LogMode:                  LogModeDev,
		RetryMaxTries:            5,
		RetryInitialInterval:     time.Second,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.ProjectDir == "" {
		return ErrProjectDirEmpty
	}
	if c.CoreIDField == "ID" || c.CoreIDField == "id" {
		return ErrReservedField
	}
	for _, s := range c.Steps {
		if s < 1 || s > 5 {
			return ErrInvalidStep
		}
	}
	thresholds := []struct {
		use bool
		val float64
	}{
		{c.UseMaxEuclideanDistance, c.MaxEuclideanDistance},
		{c.UseMinEuclideanDistance, c.MinEuclideanDistance},
		{c.UseMaxCostDistance, c.MaxCostDistance},
		{c.UseMinCostDistance, c.MinCostDistance},
	}
	for _, th := range thresholds {
		if th.use && th.val < 0 {
			return ErrInvalidThreshold
		}
	}
	if c.ClusterMergeThreshold < 0 {
		return ErrInvalidThreshold
	}
	if c.ConnectFragments {
		if _, ok := c.MergeThreshold(); !ok {
			return ErrMergeThreshold
		}
	}
	if c.PruneNetwork {
		if c.MaxNearestNeighbors < 1 {
			return ErrInvalidThreshold
		}
		if c.NearestNeighborUnit != UnitEuclidean && c.NearestNeighborUnit != UnitCost {
			return ErrInvalidUnit
		}
	}
	return nil
}

// MergeThreshold returns the Euclidean distance below which fragments are
// merged into one cluster. An explicit cluster_merge_threshold wins; the
// maximum Euclidean corridor distance is the fallback.
func (c Config) MergeThreshold() (float64, bool) {
	if c.ClusterMergeThreshold > 0 {
		return c.ClusterMergeThreshold, true
	}
	if c.UseMaxEuclideanDistance && c.MaxEuclideanDistance > 0 {
		return c.MaxEuclideanDistance, true
	}
	return 0, false
}

// RunsStep reports whether step is among the configured steps. Connecting
// fragments runs steps 1 and 2 only.
func (c Config) RunsStep(step int) bool {
	if c.ConnectFragments && step > 2 {
		return false
	}
	return slices.Contains(c.Steps, step)
}
