package datastructure

import (
	"errors"
	"math"
	"testing"

	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/lintang-b-s/evacroute/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inf = math.Inf(1)

func threeNodes() []Node {
	return []Node{
		NewNode("A", "Alpha", pkg.TOP_TIER),
		NewNode("B", "Bravo", pkg.UPPER_TIER),
		NewNode("C", "Charlie", pkg.UNTIERED),
	}
}

func TestNewTopologyFromMatrix(t *testing.T) {
	top, err := NewTopologyFromMatrix(threeNodes(), [][]float64{
		{0, 5, inf},
		{5, 0, 7},
		{inf, 7, 0},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, top.NodeCount())
	assert.Equal(t, 4, top.EdgeCount())

	testCases := []struct {
		name string
		i, j Index
		want float64
	}{
		{name: "direct edge", i: 0, j: 1, want: 5},
		{name: "reverse edge", i: 2, j: 1, want: 7},
		{name: "no edge", i: 0, j: 2, want: inf},
		{name: "self", i: 1, j: 1, want: 0},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := top.BaseCost(tt.i, tt.j)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTopologyFromMatrixMalformed(t *testing.T) {
	testCases := []struct {
		name   string
		nodes  []Node
		matrix [][]float64
	}{
		{
			name:   "row count differs from catalog",
			nodes:  threeNodes(),
			matrix: [][]float64{{0, 1}, {1, 0}},
		},
		{
			name:   "not square",
			nodes:  threeNodes(),
			matrix: [][]float64{{0, 1, 1}, {1, 0}, {1, 1, 0}},
		},
		{
			name:   "negative cost",
			nodes:  threeNodes(),
			matrix: [][]float64{{0, -1, inf}, {1, 0, inf}, {inf, inf, 0}},
		},
		{
			name:   "negative infinity",
			nodes:  threeNodes(),
			matrix: [][]float64{{0, math.Inf(-1), inf}, {1, 0, inf}, {inf, inf, 0}},
		},
		{
			name:   "NaN cost",
			nodes:  threeNodes(),
			matrix: [][]float64{{0, math.NaN(), inf}, {1, 0, inf}, {inf, inf, 0}},
		},
		{
			name:   "non zero diagonal",
			nodes:  threeNodes(),
			matrix: [][]float64{{0, 1, inf}, {1, 2, inf}, {inf, inf, 0}},
		},
		{
			name:   "zero off diagonal",
			nodes:  threeNodes(),
			matrix: [][]float64{{0, 0, inf}, {1, 0, inf}, {inf, inf, 0}},
		},
		{
			name: "duplicate code",
			nodes: []Node{
				NewNode("A", "Alpha", pkg.TOP_TIER),
				NewNode("A", "Again", pkg.TOP_TIER),
			},
			matrix: [][]float64{{0, 1}, {1, 0}},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTopologyFromMatrix(tt.nodes, tt.matrix)
			require.Error(t, err)
			assert.True(t, errors.Is(err, util.ErrMalformedTopology), "got %v", err)
		})
	}
}

func TestRequireSymmetric(t *testing.T) {
	matrix := [][]float64{
		{0, 5, inf},
		{6, 0, 7},
		{inf, 7, 0},
	}
	_, err := NewTopologyFromMatrix(threeNodes(), matrix)
	require.NoError(t, err, "directed costs are allowed by default")

	_, err = NewTopologyFromMatrix(threeNodes(), matrix, RequireSymmetric())
	assert.ErrorIs(t, err, util.ErrMalformedTopology)
}

func TestTopologyAccessors(t *testing.T) {
	top, err := NewTopologyFromMatrix(threeNodes(), [][]float64{
		{0, 5, inf},
		{5, 0, 7},
		{inf, 7, 0},
	})
	require.NoError(t, err)

	idx, err := top.IndexOf("B")
	require.NoError(t, err)
	assert.Equal(t, Index(1), idx)

	_, err = top.IndexOf("ZZZ")
	assert.ErrorIs(t, err, util.ErrUnknownNode)

	name, err := top.Name(0)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", name)

	tier, err := top.Tier(1)
	require.NoError(t, err)
	assert.Equal(t, pkg.UPPER_TIER, tier)

	_, err = top.Name(3)
	assert.ErrorIs(t, err, util.ErrOutOfRange)
	_, err = top.Tier(99)
	assert.ErrorIs(t, err, util.ErrOutOfRange)
	_, err = top.BaseCost(0, 3)
	assert.ErrorIs(t, err, util.ErrOutOfRange)
	_, _, _, err = top.Coordinates(3)
	assert.ErrorIs(t, err, util.ErrOutOfRange)

	assert.Equal(t, []Index{0, 1}, top.Facilities())
	assert.False(t, top.HasCoordinates())
}

func TestTopologyFromEdges(t *testing.T) {
	nodes := threeNodes()
	edges := []Edge{
		NewEdge(2, 0, 4, "Jalan Dharmahusada"),
		NewEdge(0, 2, 9, "Jalan Mulyorejo"),
		NewEdge(0, 2, 3, "Jalan Kertajaya"),
		NewEdge(0, 1, 2, ""),
		NewEdge(1, 1, 8, "loop"),
	}
	top, err := NewTopologyFromEdges(nodes, edges)
	require.NoError(t, err)

	assert.Equal(t, 3, top.EdgeCount(), "parallel edge collapsed and self loop dropped")

	cost, err := top.BaseCost(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cost, "cheapest parallel edge wins")
	assert.Equal(t, "Jalan Kertajaya", top.EdgeRoadName(0, 2))
	assert.Equal(t, "", top.EdgeRoadName(0, 1))
	assert.Equal(t, "", top.EdgeRoadName(1, 2))

	var heads []Index
	top.ForOutEdges(0, func(v Index, cost float64) {
		heads = append(heads, v)
	})
	assert.Equal(t, []Index{1, 2}, heads)

	var tails []Index
	top.ForInEdges(0, func(u Index, cost float64) {
		tails = append(tails, u)
		assert.Equal(t, 4.0, cost)
	})
	assert.Equal(t, []Index{2}, tails)
}

func TestTopologyFromEdgesMalformed(t *testing.T) {
	testCases := []struct {
		name string
		edge Edge
	}{
		{name: "out of range", edge: NewEdge(0, 7, 1, "")},
		{name: "zero cost", edge: NewEdge(0, 1, 0, "")},
		{name: "negative cost", edge: NewEdge(0, 1, -2, "")},
		{name: "infinite cost", edge: NewEdge(0, 1, inf, "")},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTopologyFromEdges(threeNodes(), []Edge{tt.edge})
			assert.ErrorIs(t, err, util.ErrMalformedTopology)
		})
	}
}

func TestFloatHelpers(t *testing.T) {
	assert.True(t, Eq(0.1+0.2, 0.3))
	assert.True(t, Eq(inf, inf))
	assert.False(t, Eq(inf, 1e300))
	assert.True(t, Lt(1.0, 2.0))
	assert.False(t, Lt(0.3, 0.1+0.2))
	assert.True(t, Le(0.3, 0.1+0.2))
	assert.False(t, IsFinite(inf))
	assert.True(t, IsFinite(3.0))
}
