package types

// CorePair is an unordered pair of core area ids stored in canonical order
// (A <= B).
type CorePair struct {
	A int
	B int
}

// Canonical returns the pair (a, b) with the smaller id first.
func Canonical(a, b int) CorePair {
	if a > b {
		a, b = b, a
	}
	return CorePair{A: a, B: b}
}

// Less orders pairs by A then B.
func (p CorePair) Less(o CorePair) bool {
	if p.A != o.A {
		return p.A < o.A
	}
	return p.B < o.B
}

// PairValue is a value attached to a core pair: a Euclidean distance, a
// cost-weighted distance, or a least-cost path length, depending on the
// producer. Core1/Core2 may arrive in either order.
type PairValue struct {
	Core1 int
	Core2 int
	Value float64
}

// Pair returns the canonical pair.
func (v PairValue) Pair() CorePair {
	return Canonical(v.Core1, v.Core2)
}

// Core is a core area as seen by the link-table engine: its id and an
// optional area attribute (zero when absent). Geometry stays with the GIS
// layer.
type Core struct {
	ID   int
	Area float64
}
