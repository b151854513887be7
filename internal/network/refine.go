package network

import (
	"cmp"
	"math"
	"slices"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/logger"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// JoinCostDistances sets each link's cost-weighted distance from vals,
// matched by canonical pair. Links without a value get the unknown
// sentinel. Duplicate values for a pair collapse to the smallest. It
// returns the number of links that received a distance.
func JoinCostDistances(t *linktable.Table, vals []types.PairValue) int {
	byPair := pairIndex(vals)
	matched := 0
	for i := range t.Len() {
		r := t.Row(i)
		if v, ok := byPair[r.Pair()]; ok {
			r.CwdDist = v
			matched++
		} else {
			r.CwdDist = types.Unknown
		}
	}
	return matched
}

func pairIndex(vals []types.PairValue) map[types.CorePair]float64 {
	deduped, _ := DedupDistances(vals)
	out := make(map[types.CorePair]float64, len(deduped))
	for _, v := range deduped {
		out[v.Pair()] = v.Value
	}
	return out
}

// linkDistance returns the distance used to rank links in unit. Unknown
// cost-weighted distances rank after every known one.
func linkDistance(r types.LinkRecord, unit string) float64 {
	if unit == types.UnitEuclidean {
		return r.EucDist
	}
	if r.CwdDist < 0 {
		return math.Inf(1)
	}
	return r.CwdDist
}

func compareLinks(unit string) func(a, b types.LinkRecord) int {
	return func(a, b types.LinkRecord) int {
		return cmp.Or(
			cmp.Compare(linkDistance(a, unit), linkDistance(b, unit)),
			cmp.Compare(a.LinkID, b.LinkID),
		)
	}
}

// NearestNeighbors keeps an active link only when it is among the n
// nearest active links of at least one of its endpoints, ranked by unit.
// Other active links become not_nearest_neighbor. It returns the number of
// links pruned.
func NearestNeighbors(t *linktable.Table, n int, unit string, log *logger.Logger) int {
	byCore := make(map[int][]int)
	for i := range t.Len() {
		r := t.At(i)
		if !r.Type.Active() {
			continue
		}
		byCore[r.Core1] = append(byCore[r.Core1], i)
		byCore[r.Core2] = append(byCore[r.Core2], i)
	}

	less := compareLinks(unit)
	keep := make(map[int]bool)
	for _, rows := range byCore {
		slices.SortFunc(rows, func(a, b int) int { return less(t.At(a), t.At(b)) })
		for _, i := range rows[:min(n, len(rows))] {
			keep[i] = true
		}
	}

	pruned := 0
	for i := range t.Len() {
		r := t.Row(i)
		if !r.Type.Active() || keep[i] {
			continue
		}
		log.Debug("pruning link", "link", r.LinkID, "core1", r.Core1, "core2", r.Core2, "dist", linkDistance(*r, unit))
		r.Type = types.LinkNotNearestNeighbor
		pruned++
	}
	return pruned
}

// Constellations reconnects the components left by nearest neighbour
// pruning. While the active network has more than one component, every
// component reactivates its nearest pruned link to another component as a
// component link. It returns the number of links reactivated.
func Constellations(t *linktable.Table, unit string, log *logger.Logger) int {
	less := compareLinks(unit)
	total := 0
	for {
		labels := Components(t.Cores(), t.ActivePairs())
		if countLabels(labels) <= 1 {
			return total
		}

		best := make(map[int]int)
		for i := range t.Len() {
			r := t.At(i)
			if r.Type != types.LinkNotNearestNeighbor {
				continue
			}
			l1, l2 := labels[r.Core1], labels[r.Core2]
			if l1 == l2 {
				continue
			}
			for _, l := range []int{l1, l2} {
				if j, ok := best[l]; !ok || less(r, t.At(j)) < 0 {
					best[l] = i
				}
			}
		}
		if len(best) == 0 {
			log.Warn("network stays disconnected", "components", countLabels(labels))
			return total
		}

		rows := make([]int, 0, len(best))
		for _, i := range best {
			rows = append(rows, i)
		}
		slices.Sort(rows)
		for _, i := range slices.Compact(rows) {
			r := t.Row(i)
			log.Debug("connecting constellations", "link", r.LinkID, "core1", r.Core1, "core2", r.Core2)
			r.Type = types.LinkComponent
			total++
		}
	}
}

func countLabels(labels map[int]int) int {
	seen := make(map[int]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

// LabelClusters writes the component label of each endpoint, computed over
// the active links, into the cluster columns and returns the labels.
func LabelClusters(t *linktable.Table) map[int]int {
	labels := Components(t.Cores(), t.ActivePairs())
	for i := range t.Len() {
		r := t.Row(i)
		r.Cluster1 = labels[r.Core1]
		r.Cluster2 = labels[r.Core2]
	}
	return labels
}

// ApplyPathMetrics widens t and fills the least-cost path length of every
// link from lengths, then derives the cost-to-Euclidean and
// cost-to-path-length ratios. A ratio is unknown when either input is
// unknown or the denominator is zero. It returns the number of links that
// received a path length.
func ApplyPathMetrics(t *linktable.Table, lengths []types.PairValue) int {
	t.Widen()
	byPair := pairIndex(lengths)
	matched := 0
	for i := range t.Len() {
		r := t.Row(i)
		r.LcpLength = types.Unknown
		if v, ok := byPair[r.Pair()]; ok {
			r.LcpLength = v
			matched++
		}
		r.CwdToEuc = ratio(r.CwdDist, r.EucDist)
		r.CwdToPath = ratio(r.CwdDist, r.LcpLength)
	}
	return matched
}

func ratio(num, den float64) float64 {
	if num < 0 || den <= 0 {
		return types.Unknown
	}
	return num / den
}
