package landmark

import (
	"fmt"

	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
)

// Dijkstra is a one-to-all search on base costs, used only for landmark preprocessing.
// with useReverseGraph it follows in-edges, giving distances from every vertex to the source.
type Dijkstra struct {
	topology        *da.Topology
	dist            []float64
	heapNodes       []*da.PriorityQueueNode[da.Index]
	pq              *da.MinHeap[da.Index]
	useReverseGraph bool
	numSettledNodes int
}

func NewDijkstra(topology *da.Topology, useReverseGraph bool) *Dijkstra {
	return &Dijkstra{
		topology:        topology,
		pq:              da.NewFourAryHeap[da.Index](),
		useReverseGraph: useReverseGraph,
	}
}

func (us *Dijkstra) ShortestPath(s da.Index) ([]float64, error) {
	n := us.topology.NodeCount()
	us.dist = make([]float64, n)
	us.heapNodes = make([]*da.PriorityQueueNode[da.Index], n)
	us.pq.Clear()
	us.numSettledNodes = 0

	for v := 0; v < n; v++ {
		us.dist[v] = pkg.INF_WEIGHT
	}
	us.dist[s] = 0
	us.heapNodes[s] = da.NewPriorityQueueNode(0, s, s)
	us.pq.Insert(us.heapNodes[s])

	for !us.pq.IsEmpty() {
		node, err := us.pq.ExtractMin()
		if err != nil {
			return nil, err
		}
		u := node.GetItem()
		us.numSettledNodes++

		var heapErr error
		relax := func(v da.Index, cost float64) {
			newDist := us.dist[u] + cost
			if heapErr != nil || newDist >= us.dist[v] {
				return
			}
			us.dist[v] = newDist
			if us.heapNodes[v] == nil {
				us.heapNodes[v] = da.NewPriorityQueueNode(newDist, v, v)
				us.pq.Insert(us.heapNodes[v])
			} else if err := us.pq.DecreaseKey(us.heapNodes[v], newDist); err != nil {
				heapErr = fmt.Errorf("landmark dijkstra: decrease key of vertex %d: %w", v, err)
			}
		}

		if us.useReverseGraph {
			us.topology.ForInEdges(u, relax)
		} else {
			us.topology.ForOutEdges(u, relax)
		}
		if heapErr != nil {
			return nil, heapErr
		}
	}

	return us.dist, nil
}

func (us *Dijkstra) GetNumSettledNodes() int {
	return us.numSettledNodes
}
