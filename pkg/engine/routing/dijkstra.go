package routing

import (
	"math"

	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/util"
)

// RelaxObserver is called on every distance update, before the table is written.
type RelaxObserver func(v da.Index, oldDist, newDist float64)

type searchOptions struct {
	observer RelaxObserver
}

type SearchOption func(*searchOptions)

func WithRelaxObserver(observer RelaxObserver) SearchOption {
	return func(o *searchOptions) {
		o.observer = observer
	}
}

func newSearchOptions(opts []SearchOption) searchOptions {
	so := searchOptions{}
	for _, opt := range opts {
		opt(&so)
	}
	return so
}

func checkSource(topology *da.Topology, source da.Index) error {
	if !topology.ValidIndex(source) {
		return util.WrapErrorf(nil, util.ErrOutOfRange, "source index %d out of range [0, %d)", source,
			topology.NodeCount())
	}
	return nil
}

/*
ShortestPaths. single-source dijkstra with linear-scan selection, O(n^2).

each step selects the unvisited vertex with the smallest finite distance, lowest index on ties,
freezes it and relaxes its out-edges under the overlay's effective cost. a candidate replaces the
current distance only when strictly smaller. the run stops when no unvisited vertex has a finite
distance left.

a nil overlay means no conditions.
*/
func ShortestPaths(topology *da.Topology, overlay da.CostOverlay, source da.Index,
	opts ...SearchOption) (*ShortestPathTree, error) {
	if err := checkSource(topology, source); err != nil {
		return nil, err
	}
	if overlay == nil {
		overlay = da.NoConditions()
	}
	so := newSearchOptions(opts)

	n := topology.NodeCount()
	tree := newShortestPathTree(n, source)
	visited := make([]bool, n)

	for step := 0; step < n; step++ {
		u := da.INVALID_VERTEX_ID
		minDist := math.Inf(1)
		for v := 0; v < n; v++ {
			if !visited[v] && tree.dist[v] < minDist {
				u = da.Index(v)
				minDist = tree.dist[v]
			}
		}
		if u == da.INVALID_VERTEX_ID {
			break
		}

		visited[u] = true
		topology.ForOutEdges(u, func(v da.Index, baseCost float64) {
			if visited[v] {
				return
			}
			relax(tree, overlay, so.observer, u, v, baseCost)
		})
	}

	return tree, nil
}

// relax. returns true when v got a strictly smaller distance through u.
func relax(tree *ShortestPathTree, overlay da.CostOverlay, observer RelaxObserver, u, v da.Index,
	baseCost float64) bool {
	cost := overlay.EffectiveCost(u, v, baseCost)
	if math.IsInf(cost, 1) {
		return false
	}
	candidate := tree.dist[u] + cost
	if candidate >= tree.dist[v] {
		return false
	}
	if observer != nil {
		observer(v, tree.dist[v], candidate)
	}
	tree.dist[v] = candidate
	tree.pred[v] = u
	return true
}

/*
ShortestPathsHeap. same contract and same tables as ShortestPaths, but selection uses a 4-ary heap keyed by
(distance, index) with decrease-key: O((n+m) log n).

every unvisited vertex with a finite distance sits in the heap under its current distance, so extracting the
(distance, index) minimum selects exactly the vertex the linear scan would.
*/
func ShortestPathsHeap(topology *da.Topology, overlay da.CostOverlay, source da.Index,
	opts ...SearchOption) (*ShortestPathTree, error) {
	if err := checkSource(topology, source); err != nil {
		return nil, err
	}
	if overlay == nil {
		overlay = da.NoConditions()
	}
	so := newSearchOptions(opts)

	n := topology.NodeCount()
	tree := newShortestPathTree(n, source)
	visited := make([]bool, n)
	heapNodes := make([]*da.PriorityQueueNode[da.Index], n)

	pq := da.NewFourAryHeap[da.Index]()
	heapNodes[source] = da.NewPriorityQueueNode(0, source, source)
	pq.Insert(heapNodes[source])

	for !pq.IsEmpty() {
		node, err := pq.ExtractMin()
		if err != nil {
			return nil, err
		}
		u := node.GetItem()
		visited[u] = true

		var heapErr error
		topology.ForOutEdges(u, func(v da.Index, baseCost float64) {
			if heapErr != nil || visited[v] || !relax(tree, overlay, so.observer, u, v, baseCost) {
				return
			}
			if heapNodes[v] == nil {
				heapNodes[v] = da.NewPriorityQueueNode(tree.dist[v], v, v)
				pq.Insert(heapNodes[v])
				return
			}
			if err := pq.DecreaseKey(heapNodes[v], tree.dist[v]); err != nil {
				heapErr = util.WrapErrorf(err, util.ErrInternalServerError, "decrease key of vertex %d", v)
			}
		})
		if heapErr != nil {
			return nil, heapErr
		}
	}

	return tree, nil
}
