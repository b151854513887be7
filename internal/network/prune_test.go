package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/logger"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

func corridor(id, c1, c2 int, euc, cwd float64) types.LinkRecord {
	return types.LinkRecord{
		LinkID: id, Core1: c1, Core2: c2,
		Cluster1: types.Unevaluated, Cluster2: types.Unevaluated,
		Type: types.LinkCorridor, EucDist: euc, CwdDist: cwd,
		EucAdj: types.AdjTrue, CwdAdj: types.AdjNotEvaluated,
	}
}

func on(v float64) Threshold { return Threshold{Enabled: true, Value: v} }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		th       Thresholds
		rec      types.LinkRecord
		want     types.LinkType
		wantDrop bool
	}{
		{"no rules", Thresholds{}, corridor(1, 1, 2, 100, -1), types.LinkCorridor, false},
		{"disabled rule ignores value", Thresholds{MaxEuclidean: Threshold{Value: 1}}, corridor(1, 1, 2, 100, 5), types.LinkCorridor, false},
		{"unknown cost disabled", Thresholds{DisableUnknownCost: true, MaxEuclidean: on(1)}, corridor(1, 1, 2, 100, -1), types.LinkTooLongCost, true},
		{"too long euclidean", Thresholds{MaxEuclidean: on(50)}, corridor(1, 1, 2, 60, 10), types.LinkTooLongEuclidean, true},
		{"at max is kept", Thresholds{MaxEuclidean: on(60)}, corridor(1, 1, 2, 60, 10), types.LinkCorridor, false},
		{"too long cost without euclidean rule", Thresholds{MaxCost: on(5)}, corridor(1, 1, 2, 60, 10), types.LinkTooLongCost, true},
		{"max euclidean before max cost", Thresholds{MaxEuclidean: on(50), MaxCost: on(5)}, corridor(1, 1, 2, 60, 10), types.LinkTooLongEuclidean, true},
		{"too short euclidean", Thresholds{MinEuclidean: on(10)}, corridor(1, 1, 2, 5, 10), types.LinkTooShortEuclidean, true},
		{"too short cost", Thresholds{MinCost: on(20)}, corridor(1, 1, 2, 5, 10), types.LinkTooShortCost, true},
		{"unknown cost is never too short", Thresholds{MinCost: on(20)}, corridor(1, 1, 2, 5, -1), types.LinkCorridor, false},
		{"zero cost is too short", Thresholds{MinCost: on(1)}, corridor(1, 1, 2, 5, 0), types.LinkTooShortCost, true},
		{
			"contradictory euclidean bounds end too long",
			Thresholds{MaxEuclidean: on(10), MinEuclidean: on(100)},
			corridor(1, 1, 2, 50, 10),
			types.LinkTooLongEuclidean, true,
		},
		{
			"component links are classified",
			Thresholds{MaxEuclidean: on(10)},
			types.LinkRecord{LinkID: 1, Core1: 1, Core2: 2, Type: types.LinkComponent, EucDist: 50},
			types.LinkTooLongEuclidean, true,
		},
		{
			"inactive links are inert",
			Thresholds{MaxEuclidean: on(10)},
			types.LinkRecord{LinkID: 1, Core1: 1, Core2: 2, Type: types.LinkNotNearestNeighbor, EucDist: 50},
			types.LinkNotNearestNeighbor, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, drop := tt.th.Classify(tt.rec)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDrop, drop)
		})
	}
}

func TestThresholdsFrom(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.UseMaxEuclideanDistance = true
	cfg.MaxEuclideanDistance = 1000
	cfg.MinCostDistance = 5
	cfg.DisableUnknownCostDistance = true

	th := ThresholdsFrom(cfg)
	assert.Equal(t, on(1000), th.MaxEuclidean)
	assert.False(t, th.MinCost.Enabled)
	assert.True(t, th.DisableUnknownCost)

	euc := th.EuclideanOnly()
	assert.Equal(t, on(1000), euc.MaxEuclidean)
	assert.False(t, euc.DisableUnknownCost)
}

func TestDropLinksReportsAndLogs(t *testing.T) {
	tbl := linktable.New(
		corridor(1, 1, 2, 5, 10),
		corridor(2, 1, 3, 500, 10),
		corridor(3, 2, 3, 600, -1),
		corridor(4, 3, 4, 1, 10),
	)
	tbl.Row(3).Type = types.LinkUserRemoved

	core, logs := observer.New(zap.InfoLevel)
	report := DropLinks(tbl, Thresholds{MaxEuclidean: on(100), MinEuclidean: on(2)}, logger.FromCore(core))

	assert.Equal(t, DropReport{types.LinkTooLongEuclidean: 2}, report)
	assert.Equal(t, 2, report.Total())
	assert.Equal(t, 4, tbl.Len(), "dropped links stay in the table")
	assert.Equal(t, types.LinkCorridor, tbl.At(0).Type)
	assert.Equal(t, types.LinkTooLongEuclidean, tbl.At(1).Type)
	assert.Equal(t, types.LinkUserRemoved, tbl.At(3).Type)
	assert.Equal(t, 2, logs.FilterMessage("dropping link").Len())

	report.Log(logger.FromCore(core))
	assert.Equal(t, 1, logs.FilterMessage("links dropped").Len())
}

func TestCheckMappable(t *testing.T) {
	ok := linktable.New(corridor(1, 1, 2, 1, 1))
	require.NoError(t, CheckMappable(ok))

	dropped := linktable.New(corridor(1, 1, 2, 1, 1))
	dropped.Row(0).Type = types.LinkTooLongCost
	err := CheckMappable(dropped)
	assert.ErrorIs(t, err, types.ErrNoCorridors)
	assert.True(t, types.IsConfigError(err))

	assert.ErrorIs(t, CheckMappable(linktable.New()), types.ErrTooFewCores)
}
