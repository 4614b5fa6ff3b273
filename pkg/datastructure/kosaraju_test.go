package datastructure

import (
	"testing"

	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStronglyConnectedComponents(t *testing.T) {
	nodes := []Node{
		NewNode("A", "", pkg.UNTIERED),
		NewNode("B", "", pkg.UNTIERED),
		NewNode("C", "", pkg.UNTIERED),
		NewNode("D", "", pkg.UNTIERED),
		NewNode("E", "", pkg.UNTIERED),
	}

	testCases := []struct {
		name        string
		edges       []Edge
		wantComp    []Index
		wantCount   int
		wantLargest []bool
	}{
		{
			name: "two cycles and a sink",
			edges: []Edge{
				NewEdge(0, 1, 1, ""), NewEdge(1, 0, 1, ""),
				NewEdge(1, 2, 1, ""),
				NewEdge(2, 3, 1, ""), NewEdge(3, 2, 1, ""),
				NewEdge(3, 4, 1, ""),
			},
			wantComp:    []Index{0, 0, 1, 1, 2},
			wantCount:   3,
			wantLargest: []bool{true, true, false, false, false},
		},
		{
			name: "one ring",
			edges: []Edge{
				NewEdge(0, 1, 1, ""), NewEdge(1, 2, 1, ""), NewEdge(2, 3, 1, ""),
				NewEdge(3, 4, 1, ""), NewEdge(4, 0, 1, ""),
			},
			wantComp:    []Index{0, 0, 0, 0, 0},
			wantCount:   1,
			wantLargest: []bool{true, true, true, true, true},
		},
		{
			name:        "no edges",
			edges:       nil,
			wantComp:    []Index{4, 3, 2, 1, 0},
			wantCount:   5,
			wantLargest: []bool{false, false, false, false, true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			top, err := NewTopologyFromEdges(nodes, tc.edges)
			require.NoError(t, err)

			comp, count := top.StronglyConnectedComponents()
			assert.Equal(t, tc.wantComp, comp)
			assert.Equal(t, tc.wantCount, count)
			assert.Equal(t, tc.wantLargest, top.LargestComponent())
		})
	}
}
