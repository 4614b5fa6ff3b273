package preprocessor

import (
	"github.com/lintang-b-s/evacroute/pkg/catalog"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/landmark"
	"github.com/lintang-b-s/evacroute/pkg/osmparser"
	"github.com/lintang-b-s/evacroute/pkg/spatialindex"
	"github.com/lintang-b-s/evacroute/pkg/util"
	"go.uber.org/zap"
)

// Build snaps every facility to its nearest road vertex within searchRadiusKm and returns the road
// topology with those vertices relabeled as facilities. all other vertices keep their osm:<id> code.
func Build(network *osmparser.RoadNetwork, facilities []catalog.Facility, searchRadiusKm float64) (*da.Topology, error) {
	_, top, err := build(network, facilities, searchRadiusKm)
	return top, err
}

type snap struct {
	facility catalog.Facility
	vertex   da.Index
	distKm   float64
}

func build(network *osmparser.RoadNetwork, facilities []catalog.Facility, searchRadiusKm float64) ([]snap, *da.Topology, error) {
	nodes := network.Nodes()
	edges := network.TopologyEdges()
	road, err := da.NewTopologyFromEdges(nodes, edges)
	if err != nil {
		return nil, nil, err
	}

	// facilities only snap onto the largest strongly connected part of the road network
	connected := road.LargestComponent()
	rt := spatialindex.NewRtree()
	for i, v := range network.GetVertices() {
		if connected[i] {
			rt.Insert(spatialindex.NewVertexPoint(da.Index(i), v.GetLat(), v.GetLon()))
		}
	}

	snapped := make(map[da.Index]string, len(facilities))
	snaps := make([]snap, 0, len(facilities))
	for _, f := range facilities {
		vp, distKm, ok := rt.Nearest(f.GetLat(), f.GetLon(), searchRadiusKm)
		if !ok {
			return nil, nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
				"facility %s has no road vertex within %v km", f.GetCode(), searchRadiusKm)
		}
		if other, ok := snapped[vp.GetId()]; ok {
			return nil, nil, util.WrapErrorf(nil, util.ErrMalformedTopology,
				"facilities %s and %s snap to the same road vertex %d", other, f.GetCode(), vp.GetId())
		}
		snapped[vp.GetId()] = f.GetCode()
		nodes[vp.GetId()] = nodes[vp.GetId()].AsFacility(f.GetCode(), f.GetName(), f.GetTier())
		snaps = append(snaps, snap{facility: f, vertex: vp.GetId(), distKm: distKm})
	}

	top, err := da.NewTopologyFromEdges(nodes, edges)
	if err != nil {
		return nil, nil, err
	}
	return snaps, top, nil
}

type Preprocessor struct {
	logger         *zap.Logger
	searchRadiusKm float64
	numLandmarks   int
}

func NewPreprocessor(logger *zap.Logger, searchRadiusKm float64, numLandmarks int) *Preprocessor {
	return &Preprocessor{
		logger:         logger,
		searchRadiusKm: searchRadiusKm,
		numLandmarks:   numLandmarks,
	}
}

// PreProcessing builds the facility topology, writes it to topologyFile and, when numLandmarks > 0,
// computes and writes ALT landmarks to landmarkFile.
func (p *Preprocessor) PreProcessing(network *osmparser.RoadNetwork, facilities []catalog.Facility,
	topologyFile, landmarkFile string) (*da.Topology, *landmark.Landmark, error) {
	p.logger.Info("snapping facilities to the road network...",
		zap.Int("facilities", len(facilities)), zap.Int("vertices", network.NumberOfVertices()))

	snaps, top, err := build(network, facilities, p.searchRadiusKm)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range snaps {
		p.logger.Debug("facility snapped",
			zap.String("code", s.facility.GetCode()),
			zap.Uint32("vertex", uint32(s.vertex)),
			zap.Float64("distance_m", s.distKm*1000))
	}

	p.logger.Info("writing topology...", zap.String("file", topologyFile))
	if err := top.WriteTopology(topologyFile); err != nil {
		return nil, nil, err
	}

	if p.numLandmarks <= 0 {
		return top, nil, nil
	}

	lm := landmark.NewLandmark()
	if err := lm.PreprocessALT(min(p.numLandmarks, top.NodeCount()), top, p.logger); err != nil {
		return nil, nil, err
	}
	p.logger.Info("writing landmarks...", zap.String("file", landmarkFile))
	if err := lm.WriteLandmark(landmarkFile); err != nil {
		return nil, nil, err
	}
	return top, lm, nil
}
