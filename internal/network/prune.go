package network

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/logger"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// Threshold is an optional distance bound. A disabled threshold never
// matches, whatever its value.
type Threshold struct {
	Enabled bool
	Value   float64
}

// Thresholds is the set of distance rules applied to active links.
type Thresholds struct {
	MaxEuclidean       Threshold
	MinEuclidean       Threshold
	MaxCost            Threshold
	MinCost            Threshold
	DisableUnknownCost bool
}

// ThresholdsFrom reads the distance rules from cfg.
func ThresholdsFrom(cfg types.Config) Thresholds {
	return Thresholds{
		MaxEuclidean:       Threshold{cfg.UseMaxEuclideanDistance, cfg.MaxEuclideanDistance},
		MinEuclidean:       Threshold{cfg.UseMinEuclideanDistance, cfg.MinEuclideanDistance},
		MaxCost:            Threshold{cfg.UseMaxCostDistance, cfg.MaxCostDistance},
		MinCost:            Threshold{cfg.UseMinCostDistance, cfg.MinCostDistance},
		DisableUnknownCost: cfg.DisableUnknownCostDistance,
	}
}

// EuclideanOnly drops the cost-weighted rules, for use before cost-weighted
// distances are known.
func (th Thresholds) EuclideanOnly() Thresholds {
	return Thresholds{MaxEuclidean: th.MaxEuclidean, MinEuclidean: th.MinEuclidean}
}

// Classify returns the drop code for r, or false when r stays as it is.
// Only active links are classified. The first applicable rule wins, in
// this order: unknown cost distance, maximum Euclidean, maximum cost,
// minimum Euclidean, minimum cost.
func (th Thresholds) Classify(r types.LinkRecord) (types.LinkType, bool) {
	if !r.Type.Active() {
		return r.Type, false
	}
	unknownCost := r.CwdDist < 0
	switch {
	case th.DisableUnknownCost && unknownCost:
		return types.LinkTooLongCost, true
	case th.MaxEuclidean.Enabled && r.EucDist > th.MaxEuclidean.Value:
		return types.LinkTooLongEuclidean, true
	case th.MaxCost.Enabled && r.CwdDist > th.MaxCost.Value:
		return types.LinkTooLongCost, true
	case th.MinEuclidean.Enabled && r.EucDist < th.MinEuclidean.Value:
		return types.LinkTooShortEuclidean, true
	case th.MinCost.Enabled && !unknownCost && r.CwdDist < th.MinCost.Value:
		return types.LinkTooShortCost, true
	}
	return r.Type, false
}

// DropReport counts the links recoded by a classification pass, by their
// new link type.
type DropReport map[types.LinkType]int

// Total returns the number of recoded links.
func (d DropReport) Total() int {
	n := 0
	for _, c := range d {
		n += c
	}
	return n
}

// Log writes one line per reason, in code order.
func (d DropReport) Log(log *logger.Logger) {
	codes := make([]types.LinkType, 0, len(d))
	for lt := range d {
		codes = append(codes, lt)
	}
	slices.Sort(codes)
	for _, lt := range codes {
		log.Info("links dropped", "reason", lt.String(), "count", d[lt])
	}
}

// DropLinks recodes every active link of t that violates a rule in th.
// Dropped links stay in the table. Each recoded link is logged.
func DropLinks(t *linktable.Table, th Thresholds, log *logger.Logger) DropReport {
	report := make(DropReport)
	for i := range t.Len() {
		r := t.Row(i)
		lt, drop := th.Classify(*r)
		if !drop {
			continue
		}
		dist := r.EucDist
		if lt == types.LinkTooLongCost || lt == types.LinkTooShortCost {
			dist = r.CwdDist
		}
		log.Info("dropping link",
			"link", r.LinkID, "core1", r.Core1, "core2", r.Core2,
			"reason", lt.String(), "dist", dist)
		r.Type = lt
		report[lt]++
	}
	return report
}

// CheckMappable returns a configuration error when t has fewer than two
// distinct cores or no active corridor is left.
func CheckMappable(t *linktable.Table) error {
	if len(t.Cores()) < 2 {
		return types.ErrTooFewCores
	}
	if len(t.Filter(func(r types.LinkRecord) bool { return r.Type.Active() })) == 0 {
		return fmt.Errorf("all %d links are inactive: %w", t.Len(), types.ErrNoCorridors)
	}
	return nil
}
