package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/lintang-b-s/evacroute/pkg/catalog"
	"github.com/lintang-b-s/evacroute/pkg/logger"
	"github.com/lintang-b-s/evacroute/pkg/osmparser"
	preprocessor "github.com/lintang-b-s/evacroute/pkg/preprocessor"
	"go.uber.org/zap"
)

var (
	mapFile        = flag.String("map_file", "./data/surabaya.osm.pbf", "openstreetmap .osm.pbf (or .osm) file")
	facilitiesFile = flag.String("facilities", "", "facilities yaml file, empty means the built-in east Surabaya hospitals")
	topologyFile   = flag.String("topology_file", "./data/surabaya.topology", "output topology file")
	landmarkFile   = flag.String("landmark_file", "./data/surabaya.landmark", "output landmark file")
	searchRadius   = flag.Float64("search_radius", pkg.DEFAULT_SEARCH_KM, "facility snapping radius in km")
	numLandmarks   = flag.Int("landmarks", 16, "number of ALT landmarks, 0 disables them")
	boundEast      = flag.Bool("east_surabaya", false, "keep only the road network around east Surabaya")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	facilities := catalog.EastSurabayaFacilities()
	if *facilitiesFile != "" {
		facilities, err = catalog.LoadFacilities(*facilitiesFile)
		if err != nil {
			logger.Fatal("failed to load facilities", zap.Error(err))
		}
	}

	var opts []osmparser.ParseOption
	if *boundEast {
		opts = append(opts, osmparser.WithBoundingCircle(catalog.EAST_SURABAYA_CENTER_LAT,
			catalog.EAST_SURABAYA_CENTER_LON, catalog.EAST_SURABAYA_RADIUS_M/1000))
	}
	osmParser := osmparser.NewOsmParser(logger, opts...)
	network, err := osmParser.Parse(context.Background(), *mapFile)
	if err != nil {
		logger.Fatal("failed to parse osm file", zap.Error(err))
	}

	prep := preprocessor.NewPreprocessor(logger, *searchRadius, *numLandmarks)
	top, _, err := prep.PreProcessing(network, facilities, *topologyFile, *landmarkFile)
	if err != nil {
		logger.Fatal("preprocessing failed", zap.Error(err))
	}

	logger.Sugar().Infof("Preprocessing completed successfully: %d nodes, %d edges, %d facilities.",
		top.NodeCount(), top.EdgeCount(), len(top.Facilities()))
}
