package network

import (
	"slices"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// CombineAdjacency concatenates adjacency lists from any number of
// detection passes and returns the canonical, sorted, duplicate-free set of
// pairs. Self pairs are discarded.
func CombineAdjacency(lists ...[]types.CorePair) []types.CorePair {
	var all []types.CorePair
	for _, l := range lists {
		for _, p := range l {
			if p.A == p.B {
				continue
			}
			all = append(all, types.Canonical(p.A, p.B))
		}
	}
	slices.SortFunc(all, func(a, b types.CorePair) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return slices.Compact(all)
}

// AdjacencySet is a membership test over canonical core pairs.
type AdjacencySet map[types.CorePair]struct{}

// NewAdjacencySet indexes pairs in either orientation.
func NewAdjacencySet(pairs []types.CorePair) AdjacencySet {
	s := make(AdjacencySet, len(pairs))
	for _, p := range pairs {
		s[types.Canonical(p.A, p.B)] = struct{}{}
	}
	return s
}

// Contains reports whether cores a and b are adjacent. A nil set contains
// nothing.
func (s AdjacencySet) Contains(a, b int) bool {
	_, ok := s[types.Canonical(a, b)]
	return ok
}

// Len returns the number of pairs.
func (s AdjacencySet) Len() int { return len(s) }

// AdjacencyPolicy decides which candidate links survive network
// construction based on adjacency membership.
type AdjacencyPolicy int

const (
	KeepAll AdjacencyPolicy = iota
	KeepIfEither
	KeepIfCostWeighted
	KeepIfEuclidean
)

// PolicyFor maps the two adjacency switches to a policy.
func PolicyFor(useCostWeighted, useEuclidean bool) AdjacencyPolicy {
	switch {
	case useCostWeighted && useEuclidean:
		return KeepIfEither
	case useCostWeighted:
		return KeepIfCostWeighted
	case useEuclidean:
		return KeepIfEuclidean
	}
	return KeepAll
}

// Keep applies the policy to a link's membership in the two sets.
func (p AdjacencyPolicy) Keep(inCostWeighted, inEuclidean bool) bool {
	switch p {
	case KeepIfEither:
		return inCostWeighted || inEuclidean
	case KeepIfCostWeighted:
		return inCostWeighted
	case KeepIfEuclidean:
		return inEuclidean
	}
	return true
}

// UsesCostWeighted reports whether cost-weighted adjacency is evaluated.
func (p AdjacencyPolicy) UsesCostWeighted() bool {
	return p == KeepIfEither || p == KeepIfCostWeighted
}

// UsesEuclidean reports whether Euclidean adjacency is evaluated.
func (p AdjacencyPolicy) UsesEuclidean() bool {
	return p == KeepIfEither || p == KeepIfEuclidean
}

func (p AdjacencyPolicy) String() string {
	switch p {
	case KeepIfEither:
		return "keep-if-either"
	case KeepIfCostWeighted:
		return "keep-if-cost-weighted"
	case KeepIfEuclidean:
		return "keep-if-euclidean"
	}
	return "keep-all"
}
