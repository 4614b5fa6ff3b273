package main

import (
	"flag"
	"os"

	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/lintang-b-s/evacroute/pkg/catalog"
	"github.com/lintang-b-s/evacroute/pkg/logger"
	"github.com/lintang-b-s/evacroute/pkg/report"
	"go.uber.org/zap"
)

var (
	start       = flag.String("start", "", "starting node code, empty means the catalog default")
	catalogFile = flag.String("catalog", "", "yaml catalog file, empty means the built-in Surabaya catalog")
	k           = flag.Int("k", pkg.DEFAULT_TOP_K, "recommendations per tier")
	conditions  report.Conditions
)

func main() {
	flag.Var(&conditions, "condition", "road condition FROM:TO:STATUS, or FROM,TO,STATUS when a code holds a colon, repeatable")
	flag.Parse()

	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var c *catalog.Catalog
	if *catalogFile != "" {
		c, err = catalog.LoadFile(*catalogFile)
	} else {
		c, err = catalog.Surabaya()
	}
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}
	topology := c.GetTopology()

	startCode := *start
	if startCode == "" {
		startCode = c.GetDefaultStart()
	}
	source, err := topology.IndexOf(startCode)
	if err != nil {
		logger.Fatal("unknown starting location", zap.String("start", startCode), zap.Error(err))
	}

	overlay, err := c.InitialOverlay()
	if err != nil {
		logger.Fatal("failed to apply catalog conditions", zap.Error(err))
	}
	if err := overlay.ApplyDirectives(topology, conditions); err != nil {
		logger.Fatal("failed to apply conditions", zap.Error(err))
	}

	r, err := report.Build(topology, overlay.Snapshot(), source, *k)
	if err != nil {
		logger.Fatal("failed to build report", zap.Error(err))
	}
	if err := r.Write(os.Stdout); err != nil {
		logger.Fatal("failed to write report", zap.Error(err))
	}
}
