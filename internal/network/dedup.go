package network

import (
	"cmp"
	"slices"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// DedupDistances canonicalizes every pair, sorts by (core1, core2, value),
// and keeps the smallest value of each pair. It returns the surviving
// records in sorted order and the number of duplicates removed. The input
// is not modified.
func DedupDistances(vals []types.PairValue) ([]types.PairValue, int) {
	sorted := make([]types.PairValue, len(vals))
	for i, v := range vals {
		p := v.Pair()
		sorted[i] = types.PairValue{Core1: p.A, Core2: p.B, Value: v.Value}
	}
	slices.SortStableFunc(sorted, func(a, b types.PairValue) int {
		return cmp.Or(
			cmp.Compare(a.Core1, b.Core1),
			cmp.Compare(a.Core2, b.Core2),
			cmp.Compare(a.Value, b.Value),
		)
	})

	var drop []int
	for i := len(sorted) - 1; i > 0; i-- {
		if sorted[i].Pair() == sorted[i-1].Pair() {
			drop = append(drop, i)
		}
	}
	if len(drop) == 0 {
		return sorted, 0
	}
	return linktable.DeleteRows(sorted, drop), len(drop)
}
