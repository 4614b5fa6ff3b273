package usecases

import (
	"context"

	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/engine/routing"
	"github.com/lintang-b-s/evacroute/pkg/spatialindex"
)

type RoutingEngine interface {
	GetTopology() *da.Topology
	ShortestPathTree(source da.Index, overlay da.CostOverlay, algorithm routing.Algorithm) (*routing.ShortestPathTree, error)
	Route(source, target da.Index, overlay da.CostOverlay, algorithm routing.Algorithm) (*routing.Route, error)
	Routes(ctx context.Context, source da.Index, targets []da.Index, overlay da.CostOverlay,
		algorithm routing.Algorithm) ([]*routing.Route, error)
	MultiSourceTrees(ctx context.Context, sources []da.Index, overlay da.CostOverlay,
		algorithm routing.Algorithm) ([]*routing.ShortestPathTree, error)
}

type SpatialIndex interface {
	Nearest(qLat, qLon, radius float64) (spatialindex.VertexPoint, float64, bool)
}
