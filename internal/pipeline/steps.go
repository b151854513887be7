package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/network"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

func policyOf(cfg types.Config) network.AdjacencyPolicy {
	return network.PolicyFor(cfg.UseCostWeightedAdjacency, cfg.UseEuclideanAdjacency)
}

// combineSources merges the shift-direction lists when any are given, and
// otherwise canonicalizes the single adjacency list.
func combineSources(ctx context.Context, env Env, name string, shifts []AdjacencySource, single AdjacencySource) ([]types.CorePair, error) {
	if len(shifts) == 0 {
		pairs, err := load(ctx, env, name+" adjacency", single)
		if err != nil {
			return nil, err
		}
		return network.CombineAdjacency(pairs), nil
	}
	lists := make([][]types.CorePair, 0, len(shifts))
	for i, src := range shifts {
		pairs, err := load(ctx, env, fmt.Sprintf("%s shift %d", name, i+1), src)
		if err != nil {
			return nil, err
		}
		lists = append(lists, pairs)
	}
	return network.CombineAdjacency(lists...), nil
}

// Step1 combines the adjacency lists of each enabled adjacency method,
// writes one adjacency file per method, and writes the candidate core pairs
// whose Euclidean distances step 2 needs.
func Step1(ctx context.Context, env Env) error {
	cfg := env.Config
	policy := policyOf(cfg)

	cores, err := load(ctx, env, "core list", env.Cores)
	if err != nil {
		return err
	}

	var euc, cwd []types.CorePair
	if policy.UsesEuclidean() {
		if euc, err = combineSources(ctx, env, "euclidean", env.EuclideanShifts, env.EuclideanInput); err != nil {
			return err
		}
		if err := linktable.WriteAdjacencyFile(env.Layout.EuclideanAdjacencyFile(), cfg.CoreIDField, euc); err != nil {
			return err
		}
		env.Log.Info("wrote adjacency", "method", "euclidean", "pairs", len(euc))
	}
	if policy.UsesCostWeighted() {
		if cwd, err = combineSources(ctx, env, "cost-weighted", env.CostShifts, env.CostInput); err != nil {
			return err
		}
		if err := linktable.WriteAdjacencyFile(env.Layout.CostAdjacencyFile(), cfg.CoreIDField, cwd); err != nil {
			return err
		}
		env.Log.Info("wrote adjacency", "method", "cost-weighted", "pairs", len(cwd))
	}

	candidates := network.CandidatePairs(cores, policy, cwd, euc)
	if err := linktable.WriteAdjacencyFile(env.Layout.CandidatePairsFile(), cfg.CoreIDField, candidates); err != nil {
		return err
	}
	env.Log.Info("wrote candidate pairs", "policy", policy.String(), "pairs", len(candidates))
	return nil
}

// Step2 builds the link table from Euclidean distances and adjacency, then
// either drops links outside the Euclidean bounds or, when connecting
// fragments, merges close cores into clusters.
func Step2(ctx context.Context, env Env) error {
	cfg := env.Config
	policy := policyOf(cfg)

	// The inputs are independent collaborator products; load them together.
	var (
		cores    []types.Core
		dists    []types.PairValue
		eucPairs []types.CorePair
		cwdPairs []types.CorePair
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cores, err = load(gctx, env, "core list", env.Cores)
		return err
	})
	g.Go(func() (err error) {
		dists, err = load(gctx, env, "euclidean distances", env.Distances)
		return err
	})
	if policy.UsesEuclidean() {
		g.Go(func() (err error) {
			eucPairs, err = load(gctx, env, "euclidean adjacency", env.EuclideanAdjacency)
			return err
		})
	}
	if policy.UsesCostWeighted() {
		g.Go(func() (err error) {
			cwdPairs, err = load(gctx, env, "cost-weighted adjacency", env.CostAdjacency)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	in := network.BuildInput{Cores: cores, Distances: dists, Policy: policy}
	if policy.UsesEuclidean() {
		in.EuclideanAdjacency = network.NewAdjacencySet(eucPairs)
	}
	if policy.UsesCostWeighted() {
		in.CostWeightedAdjacency = network.NewAdjacencySet(cwdPairs)
	}

	res, err := network.BuildNetwork(in, env.Log)
	if err != nil {
		return err
	}
	env.Log.Info("built link table",
		"links", res.Table.Len(), "duplicates_removed", res.DuplicatesRemoved,
		"not_adjacent", res.NotAdjacent, "policy", policy.String())
	t := res.Table

	if cfg.ConnectFragments {
		return connectFragments(env, t, cores)
	}

	report := network.DropLinks(t, network.ThresholdsFrom(cfg).EuclideanOnly(), env.Log)
	report.Log(env.Log)
	if err := network.CheckMappable(t); err != nil {
		return err
	}
	return finishStep(env, 2, t)
}

func connectFragments(env Env, t *linktable.Table, cores []types.Core) error {
	threshold, ok := env.Config.MergeThreshold()
	if !ok {
		return types.ErrMergeThreshold
	}
	frags := network.ConnectFragments(t, cores, threshold, env.Log)
	env.Log.Info("joined fragments", "merges", frags.Merges, "threshold", threshold)

	if err := linktable.WriteFile(env.Layout.ClusterTableFile(), t); err != nil {
		return err
	}
	if err := linktable.WriteFile(env.Layout.LogLinkTable(2), t); err != nil {
		return err
	}
	if err := linktable.WriteCoreClustersFile(env.Layout.CoreClustersFile(), env.Config.CoreIDField, frags.Clusters, frags.Areas); err != nil {
		return err
	}
	return archiveAndReport(env, 2, t)
}

// Step3 attaches cost-weighted distances to the links and drops links that
// violate any distance rule.
func Step3(ctx context.Context, env Env) error {
	t, err := readPrevTable(env, 3)
	if err != nil {
		return err
	}
	vals, err := load(ctx, env, "cost-weighted distances", env.CostDistances)
	if err != nil {
		return err
	}
	matched := network.JoinCostDistances(t, vals)
	env.Log.Info("joined cost-weighted distances", "matched", matched, "unknown", t.Len()-matched)

	report := network.DropLinks(t, network.ThresholdsFrom(env.Config), env.Log)
	report.Log(env.Log)
	if err := network.CheckMappable(t); err != nil {
		return err
	}
	return finishStep(env, 3, t)
}

// Step4 prunes the network to each core's nearest neighbours, reconnects
// the resulting constellations when asked to, and labels the components of
// the active network in the cluster columns.
func Step4(ctx context.Context, env Env) error {
	cfg := env.Config
	t, err := readPrevTable(env, 4)
	if err != nil {
		return err
	}
	if cfg.PruneNetwork {
		pruned := network.NearestNeighbors(t, cfg.MaxNearestNeighbors, cfg.NearestNeighborUnit, env.Log)
		env.Log.Info("pruned to nearest neighbours",
			"max_neighbors", cfg.MaxNearestNeighbors, "unit", cfg.NearestNeighborUnit, "pruned", pruned)
		if cfg.KeepConstellations {
			added := network.Constellations(t, cfg.NearestNeighborUnit, env.Log)
			env.Log.Info("connected constellations", "links", added)
		}
	}
	labels := network.LabelClusters(t)
	env.Log.Info("labelled components", "cores", len(labels))
	if err := network.CheckMappable(t); err != nil {
		return err
	}
	return finishStep(env, 4, t)
}

// Step5 adds least-cost path lengths and the derived ratios, then writes
// the final table to the output directory.
func Step5(ctx context.Context, env Env) error {
	t, err := readPrevTable(env, 5)
	if err != nil {
		return err
	}
	var lengths []types.PairValue
	if env.PathLengths != nil {
		if lengths, err = load(ctx, env, "path lengths", env.PathLengths); err != nil {
			return err
		}
	} else {
		env.Log.Warn("no path lengths available, path ratios will be unknown")
	}
	matched := network.ApplyPathMetrics(t, lengths)
	env.Log.Info("applied path metrics", "matched", matched)

	if err := finishStep(env, 5, t); err != nil {
		return err
	}
	if err := linktable.WriteFile(env.Layout.FinalTableFile(), t); err != nil {
		return err
	}
	env.Log.Info("wrote final link table", "path", env.Layout.FinalTableFile())
	return nil
}
