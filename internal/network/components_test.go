package network

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

func pairs(edges ...[2]int) []types.CorePair {
	out := make([]types.CorePair, len(edges))
	for i, e := range edges {
		out[i] = types.CorePair{A: e[0], B: e[1]}
	}
	return out
}

func TestComponents(t *testing.T) {
	tests := []struct {
		name     string
		vertices []int
		edges    []types.CorePair
		want     map[int]int
	}{
		{
			name:     "two components",
			vertices: []int{1, 2, 3, 4, 5},
			edges:    pairs([2]int{1, 2}, [2]int{2, 3}, [2]int{4, 5}),
			want:     map[int]int{1: 0, 2: 0, 3: 0, 4: 1, 5: 1},
		},
		{
			name:     "no edges",
			vertices: []int{1, 2, 3, 4, 5},
			want:     map[int]int{1: 0, 2: 1, 3: 2, 4: 3, 5: 4},
		},
		{
			name:     "hub with two smaller neighbours",
			vertices: []int{1, 2, 3},
			edges:    pairs([2]int{3, 1}, [2]int{3, 2}),
			want:     map[int]int{1: 0, 2: 0, 3: 0},
		},
		{
			name:     "long path in reverse order",
			vertices: []int{10, 20, 30, 40, 50, 60},
			edges:    pairs([2]int{60, 50}, [2]int{50, 40}, [2]int{40, 30}, [2]int{30, 20}, [2]int{20, 10}),
			want:     map[int]int{10: 0, 20: 0, 30: 0, 40: 0, 50: 0, 60: 0},
		},
		{
			name:     "edge endpoints added as vertices",
			vertices: []int{7},
			edges:    pairs([2]int{2, 3}),
			want:     map[int]int{2: 0, 3: 0, 7: 1},
		},
		{
			name: "empty",
			want: map[int]int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Components(tt.vertices, tt.edges))
		})
	}
}

func TestComponentsMatchesGonum(t *testing.T) {
	if testing.Short() {
		t.Skip("randomized trials")
	}
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 50 {
		n := 2 + rng.IntN(40)
		m := rng.IntN(2 * n)

		g := simple.NewUndirectedGraph()
		vertices := make([]int, n)
		for i := range n {
			vertices[i] = (i + 1) * 3
			g.AddNode(simple.Node(vertices[i]))
		}
		var edges []types.CorePair
		for range m {
			a, b := vertices[rng.IntN(n)], vertices[rng.IntN(n)]
			if a == b {
				continue
			}
			edges = append(edges, types.CorePair{A: a, B: b})
			g.SetEdge(g.NewEdge(simple.Node(a), simple.Node(b)))
		}

		got := Components(vertices, edges)
		oracle := topo.ConnectedComponents(g)
		require.Equal(t, len(oracle), countLabels(got), "trial %d", trial)
		for _, comp := range oracle {
			want := got[int(comp[0].ID())]
			for _, node := range comp {
				assert.Equal(t, want, got[int(node.ID())], "trial %d node %d", trial, node.ID())
			}
		}
	}
}

func TestConditionalHookReadsPriorState(t *testing.T) {
	parent := []int{0, 1, 2, 3}
	// 3-2 and 2-1: in one pass only the roots of 3 and 2 are re-pointed,
	// each to its neighbour's original parent.
	u := []int{3, 2, 2, 1}
	v := []int{2, 3, 1, 2}
	next, hooked := conditionalHook(parent, u, v)
	assert.True(t, hooked)
	assert.Equal(t, []int{0, 1, 1, 2}, next)
	assert.Equal(t, []int{0, 1, 2, 3}, parent, "input is not mutated")
}

func TestPointerJump(t *testing.T) {
	assert.Equal(t, []int{0, 0, 0, 0}, pointerJump([]int{0, 0, 1, 2}))
}

func TestRelabel(t *testing.T) {
	assert.Equal(t, []int{0, 0, 1, 2, 1}, relabel([]int{3, 3, 5, 9, 5}))
}
