package network

import (
	"fmt"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/logger"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// BuildInput carries everything network construction consumes.
type BuildInput struct {
	Cores []types.Core
	// Distances are Euclidean distances between core pairs in either
	// orientation, possibly with duplicates.
	Distances             []types.PairValue
	CostWeightedAdjacency AdjacencySet
	EuclideanAdjacency    AdjacencySet
	Policy                AdjacencyPolicy
}

// BuildResult is a freshly built link table plus what was filtered on the
// way.
type BuildResult struct {
	Table             *linktable.Table
	DuplicatesRemoved int
	NotAdjacent       int
	SelfPairs         int
}

// BuildNetwork turns pairwise Euclidean distances into a link table: one
// corridor candidate per adjacent core pair, sorted by core pair with dense
// link ids. Cluster ids and cost-weighted distances start unknown. A
// distance that references a core missing from the core list is a data
// error.
func BuildNetwork(in BuildInput, log *logger.Logger) (BuildResult, error) {
	known := make(map[int]bool, len(in.Cores))
	for _, c := range in.Cores {
		known[c.ID] = true
	}
	if len(known) < 2 {
		return BuildResult{}, types.ErrTooFewCores
	}

	var res BuildResult
	dists := make([]types.PairValue, 0, len(in.Distances))
	for _, d := range in.Distances {
		for _, c := range []int{d.Core1, d.Core2} {
			if !known[c] {
				return BuildResult{}, fmt.Errorf("distance between cores %d and %d: core %d: %w", d.Core1, d.Core2, c, types.ErrUnknownCore)
			}
		}
		if d.Core1 == d.Core2 {
			res.SelfPairs++
			continue
		}
		dists = append(dists, d)
	}
	dists, res.DuplicatesRemoved = DedupDistances(dists)
	log.Debug("deduplicated distances", "kept", len(dists), "removed", res.DuplicatesRemoved)

	t := linktable.New()
	for _, d := range dists {
		inCwd := in.CostWeightedAdjacency.Contains(d.Core1, d.Core2)
		inEuc := in.EuclideanAdjacency.Contains(d.Core1, d.Core2)
		if !in.Policy.Keep(inCwd, inEuc) {
			res.NotAdjacent++
			continue
		}
		r := types.LinkRecord{
			Core1:    d.Core1,
			Core2:    d.Core2,
			Cluster1: types.Unevaluated,
			Cluster2: types.Unevaluated,
			Type:     types.LinkCorridor,
			EucDist:  d.Value,
			CwdDist:  types.Unknown,
			EucAdj:   types.AdjNotEvaluated,
			CwdAdj:   types.AdjNotEvaluated,
		}
		if in.Policy.UsesEuclidean() {
			r.EucAdj = types.AdjacencyOf(inEuc)
		}
		if in.Policy.UsesCostWeighted() {
			r.CwdAdj = types.AdjacencyOf(inCwd)
		}
		t.Append(r)
	}
	if t.Len() == 0 {
		return BuildResult{}, fmt.Errorf("%d distances, none between adjacent cores (%s): %w", len(dists), in.Policy, types.ErrNoCorePairs)
	}
	t.Sort(linktable.ByCore1, linktable.ByCore2)
	t.ReindexLinkIDs()
	res.Table = t
	return res, nil
}

// CandidatePairs lists the core pairs whose distances network construction
// needs: every pair of cores when adjacency is ignored, otherwise the union
// of the adjacency sets used by policy.
func CandidatePairs(cores []types.Core, policy AdjacencyPolicy, costWeighted, euclidean []types.CorePair) []types.CorePair {
	if policy == KeepAll {
		var all []types.CorePair
		for i := range cores {
			for j := i + 1; j < len(cores); j++ {
				all = append(all, types.CorePair{A: cores[i].ID, B: cores[j].ID})
			}
		}
		return CombineAdjacency(all)
	}
	var lists [][]types.CorePair
	if policy.UsesCostWeighted() {
		lists = append(lists, costWeighted)
	}
	if policy.UsesEuclidean() {
		lists = append(lists, euclidean)
	}
	return CombineAdjacency(lists...)
}
