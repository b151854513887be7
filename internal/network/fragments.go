package network

import (
	"cmp"
	"slices"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/logger"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Fragments is the outcome of a fragment merge.
type Fragments struct {
	// Clusters maps every core to its cluster id. A cluster id is the core
	// id of one of its members.
	Clusters map[int]int
	// Areas sums the core areas of each cluster.
	Areas  map[int]float64
	Merges int
}

// ConnectFragments starts with every core in its own cluster and walks the
// links in link id order. When a link's endpoints are in different clusters
// and its Euclidean distance is below threshold, every occurrence of the
// second cluster id in the table is replaced by the first. The walk is a
// single pass; later links see the relabelling done by earlier ones.
// Cores lists every core, including ones no link touches.
func ConnectFragments(t *linktable.Table, cores []types.Core, threshold float64, log *logger.Logger) Fragments {
	res := Fragments{Clusters: make(map[int]int, len(cores))}
	for _, c := range cores {
		res.Clusters[c.ID] = c.ID
	}
	for i := range t.Len() {
		r := t.Row(i)
		r.Cluster1, r.Cluster2 = r.Core1, r.Core2
		res.Clusters[r.Core1] = r.Core1
		res.Clusters[r.Core2] = r.Core2
	}

	order := make([]int, t.Len())
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(t.At(a).LinkID, t.At(b).LinkID)
	})

	for _, i := range order {
		r := t.At(i)
		f1, f2 := r.Cluster1, r.Cluster2
		if f1 == f2 || r.EucDist >= threshold {
			continue
		}
		log.Info("joining fragments", "cluster1", f1, "cluster2", f2, "dist", r.EucDist)
		for j := range t.Len() {
			row := t.Row(j)
			if row.Cluster1 == f2 {
				row.Cluster1 = f1
			}
			if row.Cluster2 == f2 {
				row.Cluster2 = f1
			}
		}
		for core, cl := range res.Clusters {
			if cl == f2 {
				res.Clusters[core] = f1
			}
		}
		res.Merges++
	}

	res.Areas = make(map[int]float64)
	for _, c := range cores {
		res.Areas[res.Clusters[c.ID]] += c.Area
	}
	return res
}
