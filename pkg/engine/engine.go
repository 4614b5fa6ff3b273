package engine

import (
	"runtime"

	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/lintang-b-s/evacroute/pkg/catalog"
	"github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/engine/routing"
	"github.com/lintang-b-s/evacroute/pkg/landmark"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Source selects where the topology comes from. TopologyFile wins over CatalogFile,
// both empty means the built-in Surabaya catalog.
type Source struct {
	TopologyFile string
	CatalogFile  string
	LandmarkFile string
}

type Engine struct {
	routingEngine *routing.RoutingEngine
	overlay       *datastructure.ConditionOverlay
	defaultStart  string
}

func (e *Engine) GetRoutingEngine() *routing.RoutingEngine {
	return e.routingEngine
}

// GetOverlay returns the session overlay seeded with the catalog conditions.
func (e *Engine) GetOverlay() *datastructure.ConditionOverlay {
	return e.overlay
}

func (e *Engine) GetDefaultStart() string {
	return e.defaultStart
}

func NewEngine(src Source, logger *zap.Logger) (*Engine, error) {
	viper.SetDefault("TREE_CACHE_SIZE", 1024)
	viper.SetDefault("WORKERS", runtime.NumCPU())

	topology, overlay, defaultStart, costPerSecond, err := loadTopology(src, logger)
	if err != nil {
		return nil, err
	}
	if viper.IsSet("ASTAR_COST_PER_SECOND") {
		costPerSecond = viper.GetFloat64("ASTAR_COST_PER_SECOND")
	}
	if costPerSecond == 0 {
		logger.Info("cost unit not declared, A* runs without the straight-line bound")
	}

	var lm *landmark.Landmark
	if src.LandmarkFile != "" {
		logger.Info("Reading landmarks from ", zap.String("landmarkFile", src.LandmarkFile))
		lm, err = landmark.ReadLandmark(src.LandmarkFile)
		if err != nil {
			return nil, err
		}
	}

	re, err := routing.NewRoutingEngine(topology, lm, logger, viper.GetInt("TREE_CACHE_SIZE"),
		viper.GetInt("WORKERS"), costPerSecond)
	if err != nil {
		return nil, err
	}
	logger.Sugar().Infof("Routing engine ready: %d nodes, %d edges, %d session conditions",
		topology.NodeCount(), topology.EdgeCount(), overlay.Len())

	return &Engine{
		routingEngine: re,
		overlay:       overlay,
		defaultStart:  defaultStart,
	}, nil
}

// loadTopology also returns the cost units per second of travel. Topology files hold osm travel times in
// seconds.
func loadTopology(src Source, logger *zap.Logger) (*datastructure.Topology, *datastructure.ConditionOverlay, string,
	float64, error) {
	if src.TopologyFile != "" {
		logger.Info("Reading topology from ", zap.String("topologyFile", src.TopologyFile))
		topology, err := datastructure.ReadTopology(src.TopologyFile)
		if err != nil {
			return nil, nil, "", 0, err
		}
		return topology, datastructure.NewConditionOverlay(), "", 1.0, nil
	}

	var (
		c   *catalog.Catalog
		err error
	)
	if src.CatalogFile != "" {
		logger.Info("Reading catalog from ", zap.String("catalogFile", src.CatalogFile))
		c, err = catalog.LoadFile(src.CatalogFile)
	} else {
		logger.Info("Using the built-in Surabaya catalog")
		c, err = catalog.Surabaya()
	}
	if err != nil {
		return nil, nil, "", 0, err
	}
	overlay, err := c.InitialOverlay()
	if err != nil {
		return nil, nil, "", 0, err
	}
	return c.GetTopology(), overlay, c.GetDefaultStart(), c.GetCostPerSecond(), nil
}

// DefaultK is the configured number of recommendations per tier.
func DefaultK() int {
	viper.SetDefault("TOP_K", pkg.DEFAULT_TOP_K)
	return viper.GetInt("TOP_K")
}

// NearestRadiusKm is the configured snapping radius of gps queries.
func NearestRadiusKm() float64 {
	viper.SetDefault("NEAREST_RADIUS_KM", pkg.DEFAULT_SEARCH_KM)
	return viper.GetFloat64("NEAREST_RADIUS_KM")
}
