package landmark

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// grid of w*h vertices, right/down edges one way cheaper than the way back, plus one vertex
// that nothing can reach.
func gridTopology(t *testing.T, w, h int) *da.Topology {
	t.Helper()
	nodes := make([]da.Node, 0, w*h+1)
	for i := 0; i < w*h; i++ {
		nodes = append(nodes, da.NewNode(fmt.Sprintf("V%d", i), "", pkg.UNTIERED))
	}
	nodes = append(nodes, da.NewNode("ISOLATED", "", pkg.UNTIERED))

	edges := make([]da.Edge, 0)
	id := func(x, y int) da.Index { return da.Index(y*w + x) }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cost := float64(1 + (x*7+y*3)%5)
			if x+1 < w {
				edges = append(edges, da.NewEdge(id(x, y), id(x+1, y), cost, ""))
				edges = append(edges, da.NewEdge(id(x+1, y), id(x, y), cost+2, ""))
			}
			if y+1 < h {
				edges = append(edges, da.NewEdge(id(x, y), id(x, y+1), cost+1, ""))
				edges = append(edges, da.NewEdge(id(x, y+1), id(x, y), cost, ""))
			}
		}
	}
	top, err := da.NewTopologyFromEdges(nodes, edges)
	require.NoError(t, err)
	return top
}

func TestDijkstraReverse(t *testing.T) {
	top := gridTopology(t, 3, 3)
	n := top.NodeCount()

	for s := 0; s < n; s++ {
		fw, err := NewDijkstra(top, false).ShortestPath(da.Index(s))
		require.NoError(t, err)
		for v := 0; v < n; v++ {
			bw, err := NewDijkstra(top, true).ShortestPath(da.Index(v))
			require.NoError(t, err)
			assert.Equal(t, fw[v], bw[s], "dist(%d,%d) forward vs reverse", s, v)
		}
	}
}

func TestPreprocessALTLowerBounds(t *testing.T) {
	top := gridTopology(t, 5, 4)
	n := top.NodeCount()

	lm := NewLandmark()
	require.NoError(t, lm.PreprocessALT(4, top, zap.NewNop()))
	require.Len(t, lm.GetLandmarks(), 4)
	assert.Equal(t, n, lm.NumberOfVertices())

	seen := map[da.Index]bool{}
	for _, l := range lm.GetLandmarks() {
		assert.False(t, seen[l], "landmarks are distinct")
		seen[l] = true
		assert.NotEqual(t, da.Index(n-1), l, "the isolated vertex is never a landmark")
	}

	for u := 0; u < n; u++ {
		dist, err := NewDijkstra(top, false).ShortestPath(da.Index(u))
		require.NoError(t, err)
		for v := 0; v < n; v++ {
			lb := lm.FindTighestLowerBound(da.Index(u), da.Index(v))
			assert.GreaterOrEqual(t, lb, 0.0)
			if !math.IsInf(dist[v], 1) {
				assert.LessOrEqual(t, lb, dist[v]+1e-9, "bound %d->%d must be admissible", u, v)
				assert.False(t, lm.Unreachable(da.Index(u), da.Index(v)))
			}
		}
	}

	assert.True(t, lm.Unreachable(0, da.Index(n-1)))
}

func TestPreprocessALTTooManyLandmarks(t *testing.T) {
	top := gridTopology(t, 2, 2)
	lm := NewLandmark()
	assert.Error(t, lm.PreprocessALT(pkg.MAX_LANDMARKS+1, top, zap.NewNop()))

	require.NoError(t, lm.PreprocessALT(10, top, zap.NewNop()))
	assert.Len(t, lm.GetLandmarks(), 4, "selection stops when every reachable vertex is a landmark")
}

func TestWriteReadLandmark(t *testing.T) {
	top := gridTopology(t, 3, 3)
	lm := NewLandmark()
	require.NoError(t, lm.PreprocessALT(3, top, zap.NewNop()))

	filename := filepath.Join(t.TempDir(), "landmark.lm")
	require.NoError(t, lm.WriteLandmark(filename))

	got, err := ReadLandmark(filename)
	require.NoError(t, err)
	assert.Equal(t, lm.GetLandmarks(), got.GetLandmarks())
	assert.Equal(t, lm.lw, got.lw)
	assert.Equal(t, lm.vlw, got.vlw)
}
