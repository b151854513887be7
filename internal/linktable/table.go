package linktable

import (
	"cmp"
	"slices"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Column counts of the two persisted table variants.
const (
	NarrowColumns = 10
	WideColumns   = 13
)

// Table is a mutable, row-major link table.
type Table struct {
	links []types.LinkRecord
	wide  bool
}

// New returns a narrow table holding copies of links in the given order.
func New(links ...types.LinkRecord) *Table {
	return &Table{links: slices.Clone(links)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.links) }

// At returns a copy of row i.
func (t *Table) At(i int) types.LinkRecord { return t.links[i] }

// Row returns a pointer to row i for in-place updates of non-structural
// columns (link type, distances, cluster ids).
func (t *Table) Row(i int) *types.LinkRecord { return &t.links[i] }

// Links returns a copy of all rows.
func (t *Table) Links() []types.LinkRecord { return slices.Clone(t.links) }

// Append adds r at the end. Link ids are not renumbered.
func (t *Table) Append(r types.LinkRecord) { t.links = append(t.links, r) }

// Wide reports whether the least-cost path metric columns are present.
func (t *Table) Wide() bool { return t.wide }

// Columns returns the persisted column count, 10 or 13.
func (t *Table) Columns() int {
	if t.wide {
		return WideColumns
	}
	return NarrowColumns
}

// Widen switches the table to the 13-column layout. Metric columns of rows
// that never had them are set to the unknown sentinel.
func (t *Table) Widen() {
	if t.wide {
		return
	}
	for i := range t.links {
		t.links[i].LcpLength = types.Unknown
		t.links[i].CwdToEuc = types.Unknown
		t.links[i].CwdToPath = types.Unknown
	}
	t.wide = true
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	return &Table{links: slices.Clone(t.links), wide: t.wide}
}

// ReindexLinkIDs overwrites every link id with the row's 1-based position.
func (t *Table) ReindexLinkIDs() {
	for i := range t.links {
		t.links[i].LinkID = i + 1
	}
}

// Canonicalize re-applies canonical pair order to every row.
func (t *Table) Canonicalize() {
	for i := range t.links {
		t.links[i].Canonicalize()
	}
}

// SortKey names a column usable as a sort key.
type SortKey int

// Sort keys.
const (
	ByCore1 SortKey = iota
	ByCore2
	ByEucDist
	ByCwdDist
	ByLinkID
)

func compareBy(k SortKey, a, b types.LinkRecord) int {
	switch k {
	case ByCore1:
		return cmp.Compare(a.Core1, b.Core1)
	case ByCore2:
		return cmp.Compare(a.Core2, b.Core2)
	case ByEucDist:
		return cmp.Compare(a.EucDist, b.EucDist)
	case ByCwdDist:
		return cmp.Compare(a.CwdDist, b.CwdDist)
	case ByLinkID:
		return cmp.Compare(a.LinkID, b.LinkID)
	}
	return 0
}

// Sort orders rows ascending by the given keys, earlier keys first. The
// sort is stable so rows equal on every key keep their relative order.
// With no keys the table is sorted by (core1, core2).
func (t *Table) Sort(keys ...SortKey) {
	if len(keys) == 0 {
		keys = []SortKey{ByCore1, ByCore2}
	}
	slices.SortStableFunc(t.links, func(a, b types.LinkRecord) int {
		for _, k := range keys {
			if c := compareBy(k, a, b); c != 0 {
				return c
			}
		}
		return 0
	})
}

// Filter returns the indices of rows matching pred, in row order.
func (t *Table) Filter(pred func(types.LinkRecord) bool) []int {
	var idx []int
	for i, r := range t.links {
		if pred(r) {
			idx = append(idx, i)
		}
	}
	return idx
}

// DeleteRows returns a new table without the given rows. The receiver is
// not modified and link ids are left as they were.
func (t *Table) DeleteRows(drop []int) *Table {
	return &Table{links: DeleteRows(t.links, drop), wide: t.wide}
}

// Validate checks every row's invariants, that no canonical pair appears
// twice, and that link ids are dense 1..N.
func (t *Table) Validate() error {
	seen := make(map[types.CorePair]int, len(t.links))
	for i, r := range t.links {
		if err := r.Validate(); err != nil {
			return err
		}
		if j, dup := seen[r.Pair()]; dup {
			return shapeErrorf("rows %d and %d both link cores %d and %d", j+1, i+1, r.Core1, r.Core2)
		}
		seen[r.Pair()] = i
	}
	ids := make([]int, len(t.links))
	for i, r := range t.links {
		ids[i] = r.LinkID
	}
	slices.Sort(ids)
	for i, id := range ids {
		if id != i+1 {
			return shapeErrorf("link ids are not dense: expected %d, found %d", i+1, id)
		}
	}
	return nil
}

// MarkWide flags the table as 13-column without touching the metric
// columns. Used when rows already carry path metrics.
func (t *Table) MarkWide() { t.wide = true }
