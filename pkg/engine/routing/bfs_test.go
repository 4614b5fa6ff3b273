package routing

import (
	"testing"

	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBfsTreeRing(t *testing.T) {
	tests := []struct {
		name     string
		status   pkg.RoadStatus
		wantHops []float64
		wantPath []da.Index
	}{
		{"all open", pkg.OPEN, []float64{0, 1, 2, 2, 1}, []da.Index{0, 1, 2}},
		{"0-1 flooded keeps the hop", pkg.FLOODED, []float64{0, 1, 2, 2, 1}, []da.Index{0, 1, 2}},
		{"0-1 blocked", pkg.BLOCKED, []float64{0, 4, 3, 2, 1}, []da.Index{0, 4, 3, 2}},
	}

	top := ringTopology(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overlay := da.NewConditionOverlay()
			overlay.SetStatus(0, 1, tt.status)

			tree, err := BfsTree(top, overlay.Snapshot(), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHops, tree.Distances())

			path, ok := Reconstruct(tree, 2)
			require.True(t, ok)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestBfsTreeSurabaya(t *testing.T) {
	top := surabaya(t)
	tree, err := BfsTree(top, nil, index(t, top, "UNA"))
	require.NoError(t, err)

	path, ok := Reconstruct(tree, index(t, top, "ADH"))
	require.True(t, ok)
	assert.Equal(t, []string{"UNA", "BHY", "AUS", "RKZ", "BDH", "ADH"}, codes(t, top, path))
	assert.Equal(t, 5.0, tree.Distance(index(t, top, "ADH")))

	cost, err := PathCost(top, nil, path)
	require.NoError(t, err)
	assert.Equal(t, 106.0, cost, "fewest hops, not cheapest")

	path, ok = Reconstruct(tree, index(t, top, "MTK"))
	require.True(t, ok)
	assert.Equal(t, []string{"UNA", "NHS", "PRS", "PHC", "ALR", "RYL", "MTK"}, codes(t, top, path))
}

func TestBfsTreeBlockedIsolates(t *testing.T) {
	top := roadTopology(t)
	overlay := da.NewConditionOverlay()
	overlay.SetStatus(1, 2, pkg.BLOCKED)

	tree, err := BfsTree(top, overlay.Snapshot(), 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, inf, inf, inf}, tree.Distances())
	_, ok := Reconstruct(tree, 4)
	assert.False(t, ok)
}
