// Package pipeline drives the five link table steps: adjacency, network
// construction, cost-weighted distances, network refinement, and path
// metrics. Each step reads the previous step's table, transforms it with
// the network package, and writes its own table plus a log copy and an
// archive snapshot.
package pipeline

import (
	"context"
	"io"
	"path/filepath"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/logger"
	"github.com/mesh-intelligence/linkmapper/internal/paths"
	"github.com/mesh-intelligence/linkmapper/internal/retry"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Source loads one collaborator product: a core list, a distance table, or
// an adjacency list.
type Source[T any] interface {
	Load(ctx context.Context) (T, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc[T any] func(ctx context.Context) (T, error)

func (f SourceFunc[T]) Load(ctx context.Context) (T, error) { return f(ctx) }

type (
	CoreSource      = Source[[]types.Core]
	PairSource      = Source[[]types.PairValue]
	AdjacencySource = Source[[]types.CorePair]
)

// Archiver stores step tables. *sqlite.Archive implements it.
type Archiver interface {
	SaveStep(runID string, step int, t *linktable.Table) error
}

// Env is everything a step needs. Nil sources mean the product is not
// available; steps that require it fail with a configuration error.
type Env struct {
	Config types.Config
	Log    *logger.Logger
	Layout paths.Layout
	Retry  retry.Policy

	Cores           CoreSource
	Distances       PairSource
	CostDistances   PairSource
	PathLengths     PairSource
	EuclideanShifts []AdjacencySource
	CostShifts      []AdjacencySource

	// Precombined adjacency lists step 1 reads when a method has no shift
	// lists.
	EuclideanInput AdjacencySource
	CostInput      AdjacencySource

	// Adjacency lists written by step 1 and read by step 2.
	EuclideanAdjacency AdjacencySource
	CostAdjacency      AdjacencySource

	Archive Archiver
	RunID   string
	// Out receives the human-readable summary after each step.
	Out io.Writer
}

func fileSource[T any](path string, read func(string) (T, error)) Source[T] {
	return SourceFunc[T](func(context.Context) (T, error) {
		return read(path)
	})
}

// FileCores reads a core list file.
func FileCores(path string) CoreSource {
	return fileSource(path, linktable.ReadCoresFile)
}

// FilePairs reads a (core1, core2, value) file.
func FilePairs(path string) PairSource {
	return fileSource(path, linktable.ReadPairValuesFile)
}

// FileAdjacency reads an adjacency file.
func FileAdjacency(path string) AdjacencySource {
	return fileSource(path, linktable.ReadAdjacencyFile)
}

// NewFileEnv builds an environment whose collaborator products are the
// files named in cfg. Relative names are resolved against the project
// directory. Step 2 always reads the adjacency files step 1 writes; a
// configured adjacency file is only an input to step 1.
func NewFileEnv(cfg types.Config, log *logger.Logger) (Env, error) {
	layout, err := paths.NewLayout(cfg.ProjectDir)
	if err != nil {
		return Env{}, err
	}
	resolve := func(name string) string {
		if name == "" || filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(cfg.ProjectDir, name)
	}

	env := Env{
		Config: cfg,
		Log:    log,
		Layout: layout,
		Retry:  retry.FromConfig(cfg),
	}
	if cfg.CoreFile != "" {
		env.Cores = FileCores(resolve(cfg.CoreFile))
	}
	if cfg.DistanceFile != "" {
		env.Distances = FilePairs(resolve(cfg.DistanceFile))
	}
	if cfg.CostDistanceFile != "" {
		env.CostDistances = FilePairs(resolve(cfg.CostDistanceFile))
	}
	if cfg.PathLengthFile != "" {
		env.PathLengths = FilePairs(resolve(cfg.PathLengthFile))
	}
	for _, f := range cfg.EuclideanShiftFiles {
		env.EuclideanShifts = append(env.EuclideanShifts, FileAdjacency(resolve(f)))
	}
	for _, f := range cfg.CostShiftFiles {
		env.CostShifts = append(env.CostShifts, FileAdjacency(resolve(f)))
	}
	if cfg.EuclideanAdjacencyFile != "" {
		env.EuclideanInput = FileAdjacency(resolve(cfg.EuclideanAdjacencyFile))
	}
	if cfg.CostAdjacencyFile != "" {
		env.CostInput = FileAdjacency(resolve(cfg.CostAdjacencyFile))
	}
	env.EuclideanAdjacency = FileAdjacency(layout.EuclideanAdjacencyFile())
	env.CostAdjacency = FileAdjacency(layout.CostAdjacencyFile())
	return env, nil
}
