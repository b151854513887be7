package network

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

func TestDedupDistances(t *testing.T) {
	tests := []struct {
		name        string
		in          []types.PairValue
		want        []types.PairValue
		wantRemoved int
	}{
		{
			name:        "keeps minimum of reversed duplicate",
			in:          []types.PairValue{{Core1: 1, Core2: 2, Value: 5}, {Core1: 2, Core2: 1, Value: 3}},
			want:        []types.PairValue{{Core1: 1, Core2: 2, Value: 3}},
			wantRemoved: 1,
		},
		{
			name:        "single row",
			in:          []types.PairValue{{Core1: 9, Core2: 4, Value: 2}},
			want:        []types.PairValue{{Core1: 4, Core2: 9, Value: 2}},
			wantRemoved: 0,
		},
		{
			name: "sorted by pair",
			in: []types.PairValue{
				{Core1: 3, Core2: 2, Value: 1},
				{Core1: 1, Core2: 3, Value: 7},
				{Core1: 1, Core2: 2, Value: 4},
				{Core1: 2, Core2: 3, Value: 0.5},
				{Core1: 3, Core2: 1, Value: 7},
			},
			want: []types.PairValue{
				{Core1: 1, Core2: 2, Value: 4},
				{Core1: 1, Core2: 3, Value: 7},
				{Core1: 2, Core2: 3, Value: 0.5},
			},
			wantRemoved: 2,
		},
		{
			name:        "empty",
			in:          nil,
			want:        []types.PairValue{},
			wantRemoved: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := DedupDistances(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRemoved, removed)
			for _, v := range got {
				assert.LessOrEqual(t, v.Core1, v.Core2)
			}
		})
	}
}

func TestDedupDistancesIdempotent(t *testing.T) {
	in := []types.PairValue{
		{Core1: 5, Core2: 1, Value: 2}, {Core1: 1, Core2: 5, Value: 1},
		{Core1: 2, Core2: 3, Value: 4}, {Core1: 3, Core2: 2, Value: 4},
		{Core1: 4, Core2: 2, Value: 9},
	}
	once, _ := DedupDistances(in)
	twice, removed := DedupDistances(once)
	assert.Equal(t, once, twice)
	assert.Zero(t, removed)
}

func TestDedupDistancesDoesNotMutateInput(t *testing.T) {
	in := []types.PairValue{{Core1: 2, Core2: 1, Value: 1}}
	DedupDistances(in)
	assert.Equal(t, 2, in[0].Core1)
}
