package routing

import (
	"math"

	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
)

// ShortestPathTree is the output of one single-source run: the distance table and the
// predecessor table. it is never mutated after the run returns.
type ShortestPathTree struct {
	source da.Index
	dist   []float64
	pred   []da.Index
}

func newShortestPathTree(n int, source da.Index) *ShortestPathTree {
	tree := &ShortestPathTree{
		source: source,
		dist:   make([]float64, n),
		pred:   make([]da.Index, n),
	}
	for v := 0; v < n; v++ {
		tree.dist[v] = pkg.INF_WEIGHT
		tree.pred[v] = da.INVALID_VERTEX_ID
	}
	tree.dist[source] = 0
	return tree
}

func (t *ShortestPathTree) GetSource() da.Index {
	return t.source
}

func (t *ShortestPathTree) NodeCount() int {
	return len(t.dist)
}

// Distance returns +Inf for unreachable or out of range vertices.
func (t *ShortestPathTree) Distance(v da.Index) float64 {
	if int(v) >= len(t.dist) {
		return pkg.INF_WEIGHT
	}
	return t.dist[v]
}

// Predecessor returns INVALID_VERTEX_ID for the source, unreachable and out of range vertices.
func (t *ShortestPathTree) Predecessor(v da.Index) da.Index {
	if int(v) >= len(t.pred) {
		return da.INVALID_VERTEX_ID
	}
	return t.pred[v]
}

func (t *ShortestPathTree) Reachable(v da.Index) bool {
	return !math.IsInf(t.Distance(v), 1)
}

// Distances returns a copy of the distance table.
func (t *ShortestPathTree) Distances() []float64 {
	return append([]float64(nil), t.dist...)
}

// Predecessors returns a copy of the predecessor table.
func (t *ShortestPathTree) Predecessors() []da.Index {
	return append([]da.Index(nil), t.pred...)
}

// Route is a point-to-point answer. an unreachable target is a Route with reachable == false,
// infinite distance and no path.
type Route struct {
	source          da.Index
	target          da.Index
	distance        float64
	path            []da.Index
	reachable       bool
	algorithm       Algorithm
	numSettledNodes int
}

func NewRoute(source, target da.Index, distance float64, path []da.Index, reachable bool,
	algorithm Algorithm, numSettledNodes int) *Route {
	if !reachable {
		distance = pkg.INF_WEIGHT
		path = nil
	}
	return &Route{
		source:          source,
		target:          target,
		distance:        distance,
		path:            path,
		reachable:       reachable,
		algorithm:       algorithm,
		numSettledNodes: numSettledNodes,
	}
}

func (r *Route) GetSource() da.Index {
	return r.source
}

func (r *Route) GetTarget() da.Index {
	return r.target
}

func (r *Route) GetDistance() float64 {
	return r.distance
}

func (r *Route) GetPath() []da.Index {
	return r.path
}

func (r *Route) IsReachable() bool {
	return r.reachable
}

func (r *Route) GetAlgorithm() Algorithm {
	return r.algorithm
}

// GetHops is the number of edges on the path, -1 when unreachable.
func (r *Route) GetHops() int {
	if !r.reachable {
		return -1
	}
	return len(r.path) - 1
}

func (r *Route) GetNumSettledNodes() int {
	return r.numSettledNodes
}
