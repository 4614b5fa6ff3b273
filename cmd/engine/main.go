package main

import (
	"context"
	"errors"
	"flag"

	"github.com/lintang-b-s/evacroute/pkg/engine"
	"github.com/lintang-b-s/evacroute/pkg/http"
	"github.com/lintang-b-s/evacroute/pkg/http/usecases"
	"github.com/lintang-b-s/evacroute/pkg/logger"
	"github.com/lintang-b-s/evacroute/pkg/spatialindex"
	"github.com/lintang-b-s/evacroute/pkg/util"
	"go.uber.org/zap"
)

var (
	topologyFile = flag.String("topology", "", "bzip2 topology file written by the preprocessor, empty means the catalog")
	catalogFile  = flag.String("catalog", "", "yaml catalog file, empty means the built-in Surabaya catalog")
	landmarkFile = flag.String("landmarks", "", "ALT landmark file of the topology")
	useRateLimit = flag.Bool("rate_limit", false, "enable the per-client rate limiter")
)

func main() {
	flag.Parse()
	if err := util.ReadConfig(); err != nil {
		panic(err)
	}
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	evacEngine, err := engine.NewEngine(engine.Source{
		TopologyFile: *topologyFile,
		CatalogFile:  *catalogFile,
		LandmarkFile: *landmarkFile,
	}, logger)
	if err != nil {
		logger.Fatal("failed to build routing engine", zap.Error(err))
	}
	topology := evacEngine.GetRoutingEngine().GetTopology()

	rtree := spatialindex.NewRtree()
	rtree.Build(topology, logger)

	conditionService := usecases.NewConditionService(logger, topology, evacEngine.GetOverlay())
	routingService := usecases.NewRoutingService(logger, evacEngine.GetRoutingEngine(), rtree, conditionService,
		engine.NearestRadiusKm(), engine.DefaultK())

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	api := http.NewServer(logger)
	if _, err := api.Use(ctx, logger, *useRateLimit, routingService, conditionService); err != nil {
		logger.Fatal("failed to start api", zap.Error(err))
	}

	signal := http.GracefulShutdown()

	logger.Info("Evacroute Routing Engine Server Stopped", zap.String("signal", signal.String()))
	cleanup()
	if err := api.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("api stopped with error", zap.Error(err))
	}
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
