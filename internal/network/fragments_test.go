package network

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/internal/logger"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

func TestConnectFragmentsTransitiveInOnePass(t *testing.T) {
	tbl := linktable.New(
		corridor(1, 1, 2, 1, -1),
		corridor(2, 2, 3, 1, -1),
	)
	cores := []types.Core{{ID: 1, Area: 10}, {ID: 2, Area: 5}, {ID: 3, Area: 1}}

	res := ConnectFragments(tbl, cores, 2, logger.Nop())

	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, res.Clusters)
	assert.Equal(t, 2, res.Merges)
	assert.Equal(t, map[int]float64{1: 16}, res.Areas)
	for _, r := range tbl.Links() {
		assert.Equal(t, 1, r.Cluster1)
		assert.Equal(t, 1, r.Cluster2)
	}
}

func TestConnectFragments(t *testing.T) {
	tests := []struct {
		name      string
		links     []types.LinkRecord
		threshold float64
		want      map[int]int
		merges    int
	}{
		{
			name:      "distance at threshold does not merge",
			links:     []types.LinkRecord{corridor(1, 1, 2, 2, -1)},
			threshold: 2,
			want:      map[int]int{1: 1, 2: 2, 3: 3},
		},
		{
			name: "same cluster link is skipped",
			links: []types.LinkRecord{
				corridor(1, 1, 2, 1, -1),
				corridor(2, 1, 3, 1, -1),
				corridor(3, 2, 3, 1, -1),
			},
			threshold: 5,
			want:      map[int]int{1: 1, 2: 1, 3: 1},
			merges:    2,
		},
		{
			name: "processed in link id order",
			links: []types.LinkRecord{
				corridor(2, 1, 2, 1, -1),
				corridor(1, 2, 3, 1, -1),
			},
			threshold: 5,
			want:      map[int]int{1: 1, 2: 1, 3: 1},
			merges:    2,
		},
		{
			name: "dropped links still merge",
			links: []types.LinkRecord{
				{LinkID: 1, Core1: 2, Core2: 3, Type: types.LinkTooLongCost, EucDist: 1},
			},
			threshold: 5,
			want:      map[int]int{1: 1, 2: 2, 3: 2},
			merges:    1,
		},
	}
	cores := []types.Core{{ID: 1}, {ID: 2}, {ID: 3}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := linktable.New(tt.links...)
			res := ConnectFragments(tbl, cores, tt.threshold, logger.Nop())
			assert.Equal(t, tt.want, res.Clusters)
			assert.Equal(t, tt.merges, res.Merges)
			for _, r := range tbl.Links() {
				assert.Equal(t, tt.want[r.Core1], r.Cluster1)
				assert.Equal(t, tt.want[r.Core2], r.Cluster2)
			}
		})
	}
}
