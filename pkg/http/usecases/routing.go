package usecases

import (
	"context"
	"math"

	"github.com/lintang-b-s/evacroute/pkg/catalog"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/engine/routing"
	"github.com/lintang-b-s/evacroute/pkg/geo"
	"github.com/lintang-b-s/evacroute/pkg/ranker"
	"github.com/lintang-b-s/evacroute/pkg/util"
	"go.uber.org/zap"
)

type RouteResult struct {
	Route    *routing.Route
	Codes    []string
	Roads    []string
	Polyline string
}

type QueryParams struct {
	Source  string
	Targets []string
	// Sources are more evacuation origins, each ranked like Source.
	Sources        []string
	K              int
	Algorithm      string
	Conditions     []da.ConditionDirective
	RoadConditions []catalog.RoadCondition
}

type QueryResult struct {
	Routes          []RouteResult
	Recommendations *ranker.Recommendations
	// SourceRecommendations follows the order of QueryParams.Sources.
	SourceRecommendations []*ranker.Recommendations
}

type NearestResult struct {
	Index     da.Index
	Node      da.Node
	DistanceM float64
	// EdgeDistanceM is the distance to the closest road edge leaving the vertex, when there is one.
	EdgeDistanceM float64
	HasEdge       bool
}

type RoutingService struct {
	log          *zap.Logger
	engine       RoutingEngine
	spatialIndex SpatialIndex
	conditions   *ConditionService
	searchRadius float64
	defaultK     int
}

func NewRoutingService(log *zap.Logger, engine RoutingEngine, spatialIndex SpatialIndex,
	conditions *ConditionService, searchRadius float64, defaultK int) *RoutingService {
	return &RoutingService{
		log:          log,
		engine:       engine,
		spatialIndex: spatialIndex,
		conditions:   conditions,
		searchRadius: searchRadius,
		defaultK:     defaultK,
	}
}

func (rs *RoutingService) Topology() *da.Topology {
	return rs.engine.GetTopology()
}

// Facilities returns every node that is not a plain road vertex, in index order.
func (rs *RoutingService) Facilities() []da.Node {
	nodes := rs.Topology().GetNodes()
	facilities := make([]da.Node, 0, len(nodes))
	for _, n := range nodes {
		if !n.IsRoadVertex() {
			facilities = append(facilities, n)
		}
	}
	return facilities
}

func (rs *RoutingService) codes(path []da.Index) []string {
	top := rs.Topology()
	codes := make([]string, len(path))
	for i, v := range path {
		codes[i] = top.GetNode(v).GetCode()
	}
	return codes
}

func (rs *RoutingService) routeResult(route *routing.Route) RouteResult {
	res := RouteResult{Route: route}
	if !route.IsReachable() {
		return res
	}
	top := rs.Topology()
	res.Codes = rs.codes(route.GetPath())
	res.Roads = routing.RoadNames(top, route.GetPath())
	if coords, ok := routing.PathCoordinates(top, route.GetPath()); ok {
		res.Polyline = geo.PolylineFromCoords(coords)
	}
	return res
}

// Route answers source -> target under the current session conditions.
func (rs *RoutingService) Route(ctx context.Context, source, target, algorithm string) (RouteResult, error) {
	alg, err := routing.ParseAlgorithm(algorithm)
	if err != nil {
		return RouteResult{}, err
	}
	top := rs.Topology()
	s, err := top.IndexOf(source)
	if err != nil {
		return RouteResult{}, err
	}
	t, err := top.IndexOf(target)
	if err != nil {
		return RouteResult{}, err
	}

	route, err := rs.engine.Route(s, t, rs.conditions.Snapshot(), alg)
	if err != nil {
		return RouteResult{}, err
	}
	rs.log.Debug("route computed", zap.String("source", source), zap.String("target", target),
		zap.String("algorithm", alg.String()), zap.Bool("reachable", route.IsReachable()))
	return rs.routeResult(route), nil
}

func (rs *RoutingService) recommend(source da.Index, overlay da.CostOverlay, k int, alg routing.Algorithm) (*ranker.Recommendations, error) {
	if k <= 0 {
		k = rs.defaultK
	}
	tree, err := rs.engine.ShortestPathTree(source, overlay, alg)
	if err != nil {
		return nil, err
	}
	return ranker.Rank(rs.Topology(), tree, k)
}

// Recommendations ranks the k nearest facilities of every tier under the current session conditions.
func (rs *RoutingService) Recommendations(ctx context.Context, source string, k int) (*ranker.Recommendations, error) {
	s, err := rs.Topology().IndexOf(source)
	if err != nil {
		return nil, err
	}
	return rs.recommend(s, rs.conditions.Snapshot(), k, routing.DIJKSTRA)
}

// Query runs against its own conditions only, the session overlay is neither read nor changed.
func (rs *RoutingService) Query(ctx context.Context, params QueryParams) (QueryResult, error) {
	alg, err := routing.ParseAlgorithm(params.Algorithm)
	if err != nil {
		return QueryResult{}, err
	}
	top := rs.Topology()
	s, err := top.IndexOf(params.Source)
	if err != nil {
		return QueryResult{}, err
	}
	targets, err := rs.indexes(params.Targets)
	if err != nil {
		return QueryResult{}, err
	}
	sources, err := rs.indexes(params.Sources)
	if err != nil {
		return QueryResult{}, err
	}

	overlay := da.NewConditionOverlay()
	if err := overlay.ApplyDirectives(top, params.Conditions); err != nil {
		return QueryResult{}, err
	}
	for _, rc := range params.RoadConditions {
		if _, err := overlay.ApplyRoadCondition(top, rc.Fragment, rc.Status); err != nil {
			return QueryResult{}, err
		}
	}
	snapshot := overlay.Snapshot()

	recs, err := rs.recommend(s, snapshot, params.K, alg)
	if err != nil {
		return QueryResult{}, err
	}

	routes, err := rs.engine.Routes(ctx, s, targets, snapshot, alg)
	if err != nil {
		return QueryResult{}, err
	}
	results := make([]RouteResult, len(routes))
	for i, r := range routes {
		results[i] = rs.routeResult(r)
	}

	res := QueryResult{Routes: results, Recommendations: recs}
	if len(sources) > 0 {
		if res.SourceRecommendations, err = rs.recommendAll(ctx, sources, snapshot, params.K, alg); err != nil {
			return QueryResult{}, err
		}
	}
	return res, nil
}

func (rs *RoutingService) indexes(codes []string) ([]da.Index, error) {
	top := rs.Topology()
	out := make([]da.Index, len(codes))
	for i, code := range codes {
		v, err := top.IndexOf(code)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// recommendAll builds the trees of every source on the engine worker pool, then ranks each of them.
func (rs *RoutingService) recommendAll(ctx context.Context, sources []da.Index, overlay da.CostOverlay, k int,
	alg routing.Algorithm) ([]*ranker.Recommendations, error) {
	if k <= 0 {
		k = rs.defaultK
	}
	trees, err := rs.engine.MultiSourceTrees(ctx, sources, overlay, alg)
	if err != nil {
		return nil, err
	}
	out := make([]*ranker.Recommendations, len(trees))
	for i, tree := range trees {
		if out[i], err = ranker.Rank(rs.Topology(), tree, k); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Nearest snaps a gps position to the closest vertex within the search radius.
func (rs *RoutingService) Nearest(lat, lon float64) (NearestResult, error) {
	vp, distKm, ok := rs.spatialIndex.Nearest(lat, lon, rs.searchRadius)
	if !ok {
		return NearestResult{}, util.WrapErrorf(nil, util.ErrUnknownNode,
			"no node within %v km of %v,%v", rs.searchRadius, lat, lon)
	}

	top := rs.Topology()
	res := NearestResult{
		Index:     vp.GetId(),
		Node:      top.GetNode(vp.GetId()),
		DistanceM: distKm * 1000,
	}

	snap := geo.NewCoordinate(lat, lon)
	from := geo.NewCoordinate(vp.GetLat(), vp.GetLon())
	best := math.Inf(1)
	top.ForOutEdges(vp.GetId(), func(v da.Index, cost float64) {
		head := top.GetNode(v)
		if !head.HasCoordinates() {
			return
		}
		d := geo.PointLinePerpendicularDistance(from, geo.NewCoordinate(head.GetLat(), head.GetLon()), snap)
		if d < best {
			best = d
		}
	})
	if !math.IsInf(best, 1) {
		res.EdgeDistanceM = best
		res.HasEdge = true
	}
	return res, nil
}
