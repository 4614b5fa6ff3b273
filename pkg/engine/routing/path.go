package routing

import (
	"math"

	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/geo"
	"github.com/lintang-b-s/evacroute/pkg/util"
)

/*
Reconstruct. walks predecessor links back from target and returns the path source -> target.

the path is accepted only when its first vertex is the tree's source, otherwise target was never
reached and the result is (nil, false). the tree is not modified.
*/
func Reconstruct(tree *ShortestPathTree, target da.Index) ([]da.Index, bool) {
	n := tree.NodeCount()
	if int(target) >= n {
		return nil, false
	}

	path := make([]da.Index, 0)
	for cur := target; cur != da.INVALID_VERTEX_ID; cur = tree.pred[cur] {
		path = append(path, cur)
		if len(path) > n {
			// a predecessor cycle, only possible on a corrupted tree
			return nil, false
		}
	}

	path = util.ReverseG(path)
	if path[0] != tree.source {
		return nil, false
	}
	return path, true
}

// PathCost sums effective costs along path. a missing or blocked edge gives +Inf.
func PathCost(topology *da.Topology, overlay da.CostOverlay, path []da.Index) (float64, error) {
	if overlay == nil {
		overlay = da.NoConditions()
	}
	total := 0.0
	for i := 0; i < len(path); i++ {
		if !topology.ValidIndex(path[i]) {
			return 0, util.WrapErrorf(nil, util.ErrOutOfRange, "path vertex %d out of range [0, %d)", path[i],
				topology.NodeCount())
		}
		if i == 0 {
			continue
		}
		base, _ := topology.BaseCost(path[i-1], path[i])
		cost := overlay.EffectiveCost(path[i-1], path[i], base)
		if math.IsInf(cost, 1) {
			return cost, nil
		}
		total += cost
	}
	return total, nil
}

// RoadNames returns the road names along path, unnamed edges skipped and consecutive repeats
// collapsed into one.
func RoadNames(topology *da.Topology, path []da.Index) []string {
	names := make([]string, 0)
	for i := 1; i < len(path); i++ {
		name := topology.EdgeRoadName(path[i-1], path[i])
		if name == "" {
			continue
		}
		if len(names) > 0 && names[len(names)-1] == name {
			continue
		}
		names = append(names, name)
	}
	return names
}

// PathCoordinates returns the coordinates of every path vertex, false when any vertex has none.
func PathCoordinates(topology *da.Topology, path []da.Index) ([]geo.Coordinate, bool) {
	coords := make([]geo.Coordinate, 0, len(path))
	for _, v := range path {
		lat, lon, ok, err := topology.Coordinates(v)
		if err != nil || !ok {
			return nil, false
		}
		coords = append(coords, geo.NewCoordinate(lat, lon))
	}
	return coords, true
}
