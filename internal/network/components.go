package network

import (
	"slices"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Components labels the connected components of the undirected graph
// formed by vertices and edges. Endpoints of edges that are not listed in
// vertices are added. Labels are dense from 0 and ordered by the smallest
// vertex id of each component.
func Components(vertices []int, edges []types.CorePair) map[int]int {
	ids := slices.Clone(vertices)
	for _, e := range edges {
		ids = append(ids, e.A, e.B)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	index := make(map[int]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	u := make([]int, 0, 2*len(edges))
	v := make([]int, 0, 2*len(edges))
	for _, e := range edges {
		a, b := index[e.A], index[e.B]
		u = append(u, a, b)
		v = append(v, b, a)
	}

	labels := componentLabels(len(ids), u, v)
	out := make(map[int]int, len(ids))
	for i, id := range ids {
		out[id] = labels[i]
	}
	return out
}

// componentLabels runs hooking, star detection, and pointer jumping over
// parent arrays of n vertices until every tree is a star and no edge can
// hook two trees together. Edges must be listed in both orientations.
func componentLabels(n int, u, v []int) []int {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	for {
		next, hooked := conditionalHook(parent, u, v)
		if !hooked && allStars(starVertices(next)) {
			return relabel(next)
		}
		parent = pointerJump(next)
	}
}

// conditionalHook points the root of every star tree at the smaller parent
// of a neighbour. All conditions are read from parent; when several edges
// hook the same root the last one wins.
func conditionalHook(parent, u, v []int) ([]int, bool) {
	next := slices.Clone(parent)
	hooked := false
	for k := range u {
		pu, pv := parent[u[k]], parent[v[k]]
		if pu == parent[pu] && pv < pu {
			next[pu] = pv
			hooked = true
		}
	}
	return next, hooked
}

// starVertices reports for each vertex whether its tree has depth at most
// one.
func starVertices(parent []int) []bool {
	n := len(parent)
	star := make([]bool, n)
	for i := range star {
		star[i] = true
	}
	for i, p := range parent {
		if p != parent[p] {
			star[i] = false
			star[p] = false
			star[parent[p]] = false
		}
	}
	out := make([]bool, n)
	for i, p := range parent {
		out[i] = star[p]
	}
	return out
}

func allStars(star []bool) bool {
	for _, s := range star {
		if !s {
			return false
		}
	}
	return true
}

// pointerJump replaces each parent with its grandparent until nothing
// changes.
func pointerJump(parent []int) []int {
	cur := parent
	for {
		next := make([]int, len(cur))
		changed := false
		for i, p := range cur {
			next[i] = cur[p]
			if next[i] != p {
				changed = true
			}
		}
		if !changed {
			return next
		}
		cur = next
	}
}

// relabel maps root ids to their rank among the distinct roots.
func relabel(parent []int) []int {
	roots := slices.Clone(parent)
	slices.Sort(roots)
	roots = slices.Compact(roots)
	rank := make(map[int]int, len(roots))
	for i, r := range roots {
		rank[r] = i
	}
	out := make([]int, len(parent))
	for i, p := range parent {
		out[i] = rank[p]
	}
	return out
}
