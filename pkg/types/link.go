// Link record and link type codes for the link table.
package types

import "fmt"

// LinkType is the classification/status code stored in the linkType column.
// It encodes whether a link is an active corridor and, when inactive, why it
// was dropped.
type LinkType int

// Link type codes. The numeric values are part of the persisted table format.
const (
	LinkUserRemoved        LinkType = -20
	LinkNotNearestNeighbor LinkType = -2
	LinkWithinCore         LinkType = 1
	LinkCorridor           LinkType = 2
	LinkIntermediateCore   LinkType = 3
	LinkTooLongEuclidean   LinkType = 4
	LinkTooLongCost        LinkType = 5
	LinkTooShortEuclidean  LinkType = 6
	LinkTooShortCost       LinkType = 7
	LinkComponent          LinkType = 10
)

var linkTypeDescs = map[LinkType]string{
	LinkUserRemoved:        "User_removed",
	LinkNotNearestNeighbor: "Not_nearest_N_neighbors",
	LinkWithinCore:         "Within-core",
	LinkCorridor:           "Connects_cores",
	LinkIntermediateCore:   "Intermediate_core_detected",
	LinkTooLongEuclidean:   "Too_long_Euclidean_dist",
	LinkTooLongCost:        "Too_long_least_cost_dist",
	LinkTooShortEuclidean:  "Too_short_Euclidean_dist",
	LinkTooShortCost:       "Too_short_least_cost_dist",
	LinkComponent:          "Connects_constellations",
}

// Active reports whether the link is an active corridor: a plain corridor
// candidate or a component (merged-cluster) link.
func (lt LinkType) Active() bool {
	return lt == LinkCorridor || lt == LinkComponent
}

// Known reports whether lt is one of the defined codes.
func (lt LinkType) Known() bool {
	_, ok := linkTypeDescs[lt]
	return ok
}

// String returns the description used to attribute links in link maps.
// Unrecognized codes return "Unknown".
func (lt LinkType) String() string {
	if d, ok := linkTypeDescs[lt]; ok {
		return d
	}
	return "Unknown"
}

// Adjacency is a tri-state adjacency flag.
type Adjacency int

// Adjacency flag values.
const (
	AdjNotEvaluated Adjacency = -1
	AdjFalse        Adjacency = 0
	AdjTrue         Adjacency = 1
)

// AdjacencyOf converts a membership test result into an evaluated flag.
func AdjacencyOf(adjacent bool) Adjacency {
	if adjacent {
		return AdjTrue
	}
	return AdjFalse
}

// Unknown is the sentinel for distance and ratio fields that are not
// computed, unknown, beyond the search radius, or pass through no-data.
const Unknown = -1.0

// Unevaluated is the cluster id of a core whose cluster is not yet known.
const Unevaluated = -1

// LinkRecord is one row of the link table. Field order matches the
// persisted column order.
type LinkRecord struct {
	LinkID   int
	Core1    int
	Core2    int
	Cluster1 int
	Cluster2 int
	Type     LinkType
	EucDist  float64
	CwdDist  float64
	EucAdj   Adjacency
	CwdAdj   Adjacency

	// Populated only once least-cost path geometry is available.
	LcpLength float64
	CwdToEuc  float64
	CwdToPath float64
}

// Pair returns the canonical core pair of the link.
func (r LinkRecord) Pair() CorePair {
	return Canonical(r.Core1, r.Core2)
}

// Canonicalize reorders Core1/Core2 (and their cluster ids) so that
// Core1 <= Core2.
func (r *LinkRecord) Canonicalize() {
	if r.Core1 > r.Core2 {
		r.Core1, r.Core2 = r.Core2, r.Core1
		r.Cluster1, r.Cluster2 = r.Cluster2, r.Cluster1
	}
}

// Validate checks the per-record invariants. Unrecognized link type codes
// are accepted; they are inactive and describe themselves as "Unknown".
func (r LinkRecord) Validate() error {
	if r.Core1 == r.Core2 {
		return fmt.Errorf("link %d connects core %d to itself: %w", r.LinkID, r.Core1, ErrData)
	}
	if r.Core1 > r.Core2 {
		return fmt.Errorf("link %d has non-canonical pair (%d, %d): %w", r.LinkID, r.Core1, r.Core2, ErrData)
	}
	return nil
}

// LinkTypeDesc returns whether code marks an active corridor and its
// description.
func LinkTypeDesc(code int) (active bool, desc string) {
	lt := LinkType(code)
	return lt.Active(), lt.String()
}
