package spatialindex

import (
	"math"

	"github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

type Rtree struct {
	tr *rtree.RTreeG[VertexPoint]
}

// VertexPoint is a positioned vertex stored in the r-tree.
type VertexPoint struct {
	id  datastructure.Index
	lat float64
	lon float64
}

func (vp VertexPoint) GetId() datastructure.Index {
	return vp.id
}

func (vp VertexPoint) GetLat() float64 {
	return vp.lat
}

func (vp VertexPoint) GetLon() float64 {
	return vp.lon
}

func NewVertexPoint(id datastructure.Index, lat, lon float64) VertexPoint {
	return VertexPoint{id: id, lat: lat, lon: lon}
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[VertexPoint]
	return &Rtree{
		tr: &tr,
	}
}

func (rt *Rtree) Insert(vp VertexPoint) {
	rt.tr.Insert([2]float64{vp.lon, vp.lat}, [2]float64{vp.lon, vp.lat}, vp)
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// Build. index every vertex of the topology that has coordinates.
func (rt *Rtree) Build(topology *datastructure.Topology, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	n := topology.NodeCount()
	for i := 0; i < n; i++ {
		node := topology.GetNode(datastructure.Index(i))
		if !node.HasCoordinates() {
			continue
		}
		rt.Insert(NewVertexPoint(datastructure.Index(i), node.GetLat(), node.GetLon()))
	}
	log.Info("R-tree spatial index built.", zap.Int("indexed", rt.Len()))
}

// SearchWithinRadius search for all vertices inside the bounding box of radius (in km) around (qLat, qLon)
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []VertexPoint {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius)

	results := make([]VertexPoint, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data VertexPoint) bool {
			results = append(results, data)
			return true
		})
	return results
}

// Nearest returns the closest vertex within radius km by haversine distance, ties broken by lowest id.
func (rt *Rtree) Nearest(qLat, qLon, radius float64) (VertexPoint, float64, bool) {
	cands := rt.SearchWithinRadius(qLat, qLon, radius)

	best := VertexPoint{id: datastructure.INVALID_VERTEX_ID}
	bestDist := math.Inf(1)
	for _, c := range cands {
		d := geo.CalculateHaversineDistance(qLat, qLon, c.lat, c.lon)
		if d > radius {
			continue
		}
		if d < bestDist || (d == bestDist && c.id < best.id) {
			best = c
			bestDist = d
		}
	}
	if best.id == datastructure.INVALID_VERTEX_ID {
		return best, 0, false
	}
	return best, bestDist, true
}
