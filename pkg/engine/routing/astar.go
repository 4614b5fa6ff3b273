package routing

import (
	"math"

	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/geo"
	"github.com/lintang-b-s/evacroute/pkg/landmark"
	"github.com/lintang-b-s/evacroute/pkg/util"
)

/*
Astar. point-to-point A* search, potential = max(ALT landmark bound, straight-line bound).

[1] Goldberg, A.V. and Harrelson, C. (2005) 'Computing the shortest path: A search meets graph theory', SODA '05.

both bounds are computed on base costs. a road condition only multiplies a cost by 1, 3 or infinity, so
they remain lower bounds under every overlay. the straight-line bound is haversine(u, t) / MAX_SPEED_MPS
converted into the graph's cost unit by costPerSecond, and is 0 when either vertex has no coordinates.

a settled vertex is reopened when a shorter path to it shows up, so the result is optimal even when the
bound is admissible but not consistent.
*/
type Astar struct {
	topology      *da.Topology
	overlay       da.CostOverlay
	lm            *landmark.Landmark
	costPerSecond float64

	dist      []float64
	pred      []da.Index
	heapNodes []*da.PriorityQueueNode[da.Index]
	pq        *da.MinHeap[da.Index]

	numSettledNodes int
}

func NewAstar(topology *da.Topology, overlay da.CostOverlay, lm *landmark.Landmark, costPerSecond float64) *Astar {
	if overlay == nil {
		overlay = da.NoConditions()
	}
	if lm != nil && lm.NumberOfVertices() != topology.NodeCount() {
		lm = nil
	}
	return &Astar{
		topology:      topology,
		overlay:       overlay,
		lm:            lm,
		costPerSecond: costPerSecond,
		pq:            da.NewFourAryHeap[da.Index](),
	}
}

func (as *Astar) heuristic(u, t da.Index) float64 {
	h := 0.0
	if as.lm != nil {
		h = as.lm.FindTighestLowerBound(u, t)
	}
	if as.costPerSecond > 0 {
		uNode, tNode := as.topology.GetNode(u), as.topology.GetNode(t)
		if uNode.HasCoordinates() && tNode.HasCoordinates() {
			distM := geo.CalculateHaversineDistance(uNode.GetLat(), uNode.GetLon(), tNode.GetLat(),
				tNode.GetLon()) * 1000
			h = math.Max(h, distM/pkg.MAX_SPEED_MPS*as.costPerSecond)
		}
	}
	return h
}

// ShortestPath returns the path s -> t and its effective cost, or (nil, +Inf, false) when t cannot be
// reached.
func (as *Astar) ShortestPath(s, t da.Index) ([]da.Index, float64, bool, error) {
	if err := checkSource(as.topology, s); err != nil {
		return nil, pkg.INF_WEIGHT, false, err
	}
	if err := checkSource(as.topology, t); err != nil {
		return nil, pkg.INF_WEIGHT, false, err
	}

	n := as.topology.NodeCount()
	as.dist = make([]float64, n)
	as.pred = make([]da.Index, n)
	as.heapNodes = make([]*da.PriorityQueueNode[da.Index], n)
	as.pq.Clear()
	as.numSettledNodes = 0

	if as.lm != nil && as.lm.Unreachable(s, t) {
		return nil, pkg.INF_WEIGHT, false, nil
	}

	for v := 0; v < n; v++ {
		as.dist[v] = pkg.INF_WEIGHT
		as.pred[v] = da.INVALID_VERTEX_ID
	}
	as.dist[s] = 0
	if err := as.push(s, as.heuristic(s, t)); err != nil {
		return nil, pkg.INF_WEIGHT, false, err
	}

	for !as.pq.IsEmpty() {
		node, err := as.pq.ExtractMin()
		if err != nil {
			return nil, pkg.INF_WEIGHT, false, err
		}
		u := node.GetItem()
		as.numSettledNodes++

		if u == t {
			path := make([]da.Index, 0)
			for cur := t; cur != da.INVALID_VERTEX_ID; cur = as.pred[cur] {
				path = append(path, cur)
			}
			return util.ReverseG(path), as.dist[t], true, nil
		}

		var heapErr error
		as.topology.ForOutEdges(u, func(v da.Index, baseCost float64) {
			cost := as.overlay.EffectiveCost(u, v, baseCost)
			if heapErr != nil || math.IsInf(cost, 1) {
				return
			}
			newDist := as.dist[u] + cost
			if newDist >= as.dist[v] {
				return
			}
			as.dist[v] = newDist
			as.pred[v] = u
			heapErr = as.push(v, newDist+as.heuristic(v, t))
		})
		if heapErr != nil {
			return nil, pkg.INF_WEIGHT, false, heapErr
		}
	}

	return nil, pkg.INF_WEIGHT, false, nil
}

// push inserts v, lowers its key when queued, or reopens it when already settled.
func (as *Astar) push(v da.Index, key float64) error {
	hn := as.heapNodes[v]
	if hn != nil && hn.GetPos() >= 0 && hn.GetRank() >= key {
		if err := as.pq.DecreaseKey(hn, key); err != nil {
			return util.WrapErrorf(err, util.ErrInternalServerError, "decrease key of vertex %d", v)
		}
		return nil
	}
	as.heapNodes[v] = da.NewPriorityQueueNode(key, v, v)
	as.pq.Insert(as.heapNodes[v])
	return nil
}

func (as *Astar) GetNumSettledNodes() int {
	return as.numSettledNodes
}
