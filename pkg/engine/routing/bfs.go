package routing

import (
	"math"

	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
)

/*
BfsTree. fewest-hop tree from source. distances in the returned tree are hop counts.

BLOCKED edges are removed, FLOODED edges stay: a flood slows a road down but does not add hops.
neighbours are enqueued in ascending index order, so among equal-hop paths the first discovered
(lowest index at every level) wins.
*/
func BfsTree(topology *da.Topology, overlay da.CostOverlay, source da.Index) (*ShortestPathTree, error) {
	if err := checkSource(topology, source); err != nil {
		return nil, err
	}
	if overlay == nil {
		overlay = da.NoConditions()
	}

	n := topology.NodeCount()
	tree := newShortestPathTree(n, source)

	queue := make([]da.Index, 0, n)
	queue = append(queue, source)
	for head := 0; head < len(queue); head++ {
		u := queue[head]
		topology.ForOutEdges(u, func(v da.Index, baseCost float64) {
			if !math.IsInf(tree.dist[v], 1) {
				return
			}
			if math.IsInf(overlay.EffectiveCost(u, v, baseCost), 1) {
				return
			}
			tree.dist[v] = tree.dist[u] + 1
			tree.pred[v] = u
			queue = append(queue, v)
		})
	}

	return tree, nil
}
