package linktable

import (
	"slices"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// RowForLinkID returns the row holding link id, or -1. Tables are normally
// dense and in order, so row id-1 is checked before scanning.
func (t *Table) RowForLinkID(id int) int {
	if id >= 1 && id <= len(t.links) && t.links[id-1].LinkID == id {
		return id - 1
	}
	for i, r := range t.links {
		if r.LinkID == id {
			return i
		}
	}
	return -1
}

// RowsForPair returns the rows linking cores a and b in either orientation.
func (t *Table) RowsForPair(a, b int) []int {
	want := types.Canonical(a, b)
	return t.Filter(func(r types.LinkRecord) bool {
		return r.Pair() == want
	})
}

// Cores returns the distinct core ids referenced by the table, ascending.
func (t *Table) Cores() []int {
	set := make(map[int]struct{})
	for _, r := range t.links {
		set[r.Core1] = struct{}{}
		set[r.Core2] = struct{}{}
	}
	cores := make([]int, 0, len(set))
	for c := range set {
		cores = append(cores, c)
	}
	slices.Sort(cores)
	return cores
}

// CoreTargets returns the cores connected to core by an active corridor,
// ascending.
func (t *Table) CoreTargets(core int) []int {
	set := make(map[int]struct{})
	for _, r := range t.links {
		if r.Type != types.LinkCorridor {
			continue
		}
		switch core {
		case r.Core1:
			set[r.Core2] = struct{}{}
		case r.Core2:
			set[r.Core1] = struct{}{}
		}
	}
	targets := make([]int, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	slices.Sort(targets)
	return targets
}

// CoreClusters maps each core to the cluster id recorded for it on the
// first row that references it.
func (t *Table) CoreClusters() map[int]int {
	out := make(map[int]int)
	for _, r := range t.links {
		if _, ok := out[r.Core1]; !ok {
			out[r.Core1] = r.Cluster1
		}
		if _, ok := out[r.Core2]; !ok {
			out[r.Core2] = r.Cluster2
		}
	}
	return out
}

// ActivePairs returns the canonical pairs of every active link in row order.
func (t *Table) ActivePairs() []types.CorePair {
	var pairs []types.CorePair
	for _, r := range t.links {
		if r.Type.Active() {
			pairs = append(pairs, r.Pair())
		}
	}
	return pairs
}
