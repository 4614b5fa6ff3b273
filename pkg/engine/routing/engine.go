package routing

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/evacroute/pkg/concurrent"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/landmark"
	"github.com/lintang-b-s/evacroute/pkg/metrics"
	"github.com/lintang-b-s/evacroute/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type treeCacheKey struct {
	source     da.Index
	overlayKey string
	algorithm  Algorithm
}

func (k treeCacheKey) String() string {
	return fmt.Sprintf("%d|%d|%s", k.algorithm, k.source, k.overlayKey)
}

// RoutingEngine answers queries over one immutable topology. shortest path trees are cached by
// (source, overlay key, algorithm), so callers must pass overlays that do not change while
// in use, i.e. snapshots.
type RoutingEngine struct {
	topology      *da.Topology
	lm            *landmark.Landmark
	logger        *zap.Logger
	treeCache     *lru.Cache[treeCacheKey, *ShortestPathTree]
	group         singleflight.Group
	numWorkers    int
	costPerSecond float64
}

// NewRoutingEngine. lm may be nil, cacheSize <= 0 disables the tree cache.
func NewRoutingEngine(topology *da.Topology, lm *landmark.Landmark, logger *zap.Logger, cacheSize, numWorkers int,
	costPerSecond float64) (*RoutingEngine, error) {
	e := &RoutingEngine{
		topology:      topology,
		logger:        logger,
		numWorkers:    numWorkers,
		costPerSecond: costPerSecond,
	}
	if lm != nil {
		if lm.NumberOfVertices() != topology.NodeCount() {
			return nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
				"landmarks cover %d vertices, topology has %d", lm.NumberOfVertices(), topology.NodeCount())
		}
		e.lm = lm
	}
	if cacheSize > 0 {
		cache, err := lru.New[treeCacheKey, *ShortestPathTree](cacheSize)
		if err != nil {
			return nil, err
		}
		e.treeCache = cache
	}
	if e.numWorkers < 1 {
		e.numWorkers = 1
	}
	return e, nil
}

func (e *RoutingEngine) GetTopology() *da.Topology {
	return e.topology
}

func (e *RoutingEngine) GetLandmark() *landmark.Landmark {
	return e.lm
}

func overlayKey(overlay da.CostOverlay) string {
	if overlay == nil {
		return ""
	}
	return overlay.Key()
}

func overlayFingerprint(overlay da.CostOverlay) string {
	if overlay == nil {
		return ""
	}
	return overlay.Fingerprint()
}

// ShortestPathTree returns the single-source tree of source under overlay. ASTAR has no tree of its own and
// is answered with the dijkstra tree.
func (e *RoutingEngine) ShortestPathTree(source da.Index, overlay da.CostOverlay,
	algorithm Algorithm) (*ShortestPathTree, error) {
	if algorithm == ASTAR {
		algorithm = DIJKSTRA
	}
	if err := checkSource(e.topology, source); err != nil {
		return nil, err
	}

	key := treeCacheKey{source: source, overlayKey: overlayKey(overlay), algorithm: algorithm}
	if e.treeCache != nil {
		if tree, ok := e.treeCache.Get(key); ok {
			metrics.CacheHit(metrics.CACHE_TREE)
			return tree, nil
		}
		metrics.CacheMiss(metrics.CACHE_TREE)
	}

	v, err, shared := e.group.Do(key.String(), func() (interface{}, error) {
		start := time.Now()
		tree, err := e.buildTree(source, overlay, algorithm)
		if err != nil {
			metrics.ObserveQuery(algorithm.String(), metrics.RESULT_ERROR, start)
			return nil, err
		}
		metrics.ObserveQuery(algorithm.String(), metrics.RESULT_REACHABLE, start)
		if e.treeCache != nil {
			e.treeCache.Add(key, tree)
		}
		return tree, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		e.logger.Debug("shared shortest path tree computation", zap.Uint32("source", uint32(source)),
			zap.String("algorithm", algorithm.String()), zap.String("overlay", overlayFingerprint(overlay)))
	}
	return v.(*ShortestPathTree), nil
}

func (e *RoutingEngine) buildTree(source da.Index, overlay da.CostOverlay, algorithm Algorithm) (*ShortestPathTree,
	error) {
	switch {
	case algorithm == BFS:
		return BfsTree(e.topology, overlay, source)
	case e.topology.NodeCount() <= LINEAR_SCAN_MAX_NODES:
		return ShortestPaths(e.topology, overlay, source)
	default:
		return ShortestPathsHeap(e.topology, overlay, source)
	}
}

func (e *RoutingEngine) checkTarget(target da.Index) error {
	if !e.topology.ValidIndex(target) {
		return util.WrapErrorf(nil, util.ErrOutOfRange, "target index %d out of range [0, %d)", target,
			e.topology.NodeCount())
	}
	return nil
}

// Route answers source -> target. an unreachable target is a Route with IsReachable() == false, not an
// error. for BFS the distance is the effective cost of the fewest-hop path.
func (e *RoutingEngine) Route(source, target da.Index, overlay da.CostOverlay, algorithm Algorithm) (*Route,
	error) {
	if err := checkSource(e.topology, source); err != nil {
		return nil, err
	}
	if err := e.checkTarget(target); err != nil {
		return nil, err
	}

	if algorithm == ASTAR {
		return e.astarRoute(source, target, overlay)
	}

	tree, err := e.ShortestPathTree(source, overlay, algorithm)
	if err != nil {
		return nil, err
	}
	return e.routeFromTree(tree, target, overlay, algorithm)
}

func (e *RoutingEngine) routeFromTree(tree *ShortestPathTree, target da.Index, overlay da.CostOverlay,
	algorithm Algorithm) (*Route, error) {
	path, ok := Reconstruct(tree, target)
	if !ok {
		return NewRoute(tree.GetSource(), target, 0, nil, false, algorithm, 0), nil
	}
	dist := tree.Distance(target)
	if algorithm == BFS {
		var err error
		dist, err = PathCost(e.topology, overlay, path)
		if err != nil {
			return nil, err
		}
	}
	return NewRoute(tree.GetSource(), target, dist, path, true, algorithm, tree.NodeCount()), nil
}

func (e *RoutingEngine) astarRoute(source, target da.Index, overlay da.CostOverlay) (*Route, error) {
	start := time.Now()
	as := NewAstar(e.topology, overlay, e.lm, e.costPerSecond)
	path, dist, found, err := as.ShortestPath(source, target)
	if err != nil {
		metrics.ObserveQuery(ASTAR.String(), metrics.RESULT_ERROR, start)
		return nil, err
	}
	result := metrics.RESULT_REACHABLE
	if !found {
		result = metrics.RESULT_UNREACHABLE
	}
	metrics.ObserveQuery(ASTAR.String(), result, start)
	metrics.ObserveSettledNodes(ASTAR.String(), as.GetNumSettledNodes())
	return NewRoute(source, target, dist, path, found, ASTAR, as.GetNumSettledNodes()), nil
}

// Routes answers source -> every target, in target order. dijkstra and bfs share one tree, astar runs
// one search per target on the worker pool.
func (e *RoutingEngine) Routes(ctx context.Context, source da.Index, targets []da.Index, overlay da.CostOverlay,
	algorithm Algorithm) ([]*Route, error) {
	if err := checkSource(e.topology, source); err != nil {
		return nil, err
	}
	for _, t := range targets {
		if err := e.checkTarget(t); err != nil {
			return nil, err
		}
	}

	if algorithm != ASTAR {
		tree, err := e.ShortestPathTree(source, overlay, algorithm)
		if err != nil {
			return nil, err
		}
		routes := make([]*Route, len(targets))
		for i, t := range targets {
			routes[i], err = e.routeFromTree(tree, t, overlay, algorithm)
			if err != nil {
				return nil, err
			}
		}
		return routes, nil
	}

	type result struct {
		route *Route
		err   error
	}
	results, err := concurrent.Map(ctx, e.numWorkers, targets, func(t da.Index) result {
		r, err := e.astarRoute(source, t, overlay)
		return result{route: r, err: err}
	})
	if err != nil {
		return nil, err
	}
	routes := make([]*Route, len(targets))
	for i, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		routes[i] = res.route
	}
	return routes, nil
}

// MultiSourceTrees computes independent trees for every source on the worker pool, in source order.
func (e *RoutingEngine) MultiSourceTrees(ctx context.Context, sources []da.Index, overlay da.CostOverlay,
	algorithm Algorithm) ([]*ShortestPathTree, error) {
	type result struct {
		tree *ShortestPathTree
		err  error
	}
	results, err := concurrent.Map(ctx, e.numWorkers, sources, func(s da.Index) result {
		tree, err := e.ShortestPathTree(s, overlay, algorithm)
		return result{tree: tree, err: err}
	})
	if err != nil {
		return nil, err
	}

	trees := make([]*ShortestPathTree, len(sources))
	for i, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		trees[i] = res.tree
	}
	e.logger.Debug("multi source trees done", zap.Int("sources", len(sources)),
		zap.String("algorithm", algorithm.String()))
	return trees, nil
}
