package osmparser

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/geo"
	"github.com/lintang-b-s/evacroute/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"go.uber.org/zap"
)

var (
	// https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
	acceptedHighway = map[string]struct{}{
		"motorway":         {},
		"motorway_link":    {},
		"trunk":            {},
		"trunk_link":       {},
		"primary":          {},
		"primary_link":     {},
		"secondary":        {},
		"secondary_link":   {},
		"residential":      {},
		"residential_link": {},
		"service":          {},
		"tertiary":         {},
		"tertiary_link":    {},
		"road":             {},
		"track":            {},
		"unclassified":     {},
		"undefined":        {},
		"unknown":          {},
		"living_street":    {},
		"private":          {},
		"motorroad":        {},
	}

	// https://wiki.openstreetmap.org/wiki/Key:barrier
	// a barrier with access=no splits the way into two disconnected edges.
	acceptedBarrierType = map[string]struct{}{
		"bollard":        {},
		"swing_gate":     {},
		"jersey_barrier": {},
		"lift_gate":      {},
		"block":          {},
		"gate":           {},
	}
)

// ScannerFactory opens a fresh scanner over the same osm data. Parse needs two passes.
type ScannerFactory func(ctx context.Context) (osm.Scanner, error)

type ParseOption func(*OsmParser)

// WithBoundingCircle keeps only nodes within radiusKm of (lat, lon).
func WithBoundingCircle(lat, lon, radiusKm float64) ParseOption {
	return func(p *OsmParser) {
		p.bound = &boundingCircle{center: NewNodeCoord(lat, lon), radiusKm: radiusKm}
	}
}

type boundingCircle struct {
	center   NodeCoord
	radiusKm float64
}

func (b *boundingCircle) contains(lat, lon float64) bool {
	return geo.CalculateHaversineDistance(b.center.lat, b.center.lon, lat, lon) <= b.radiusKm
}

type node struct {
	id    int64
	coord NodeCoord
}

type wayInfo struct {
	name    string
	speed   float64
	oneWay  bool
	forward bool
}

type OsmParser struct {
	logger *zap.Logger
	bound  *boundingCircle

	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]NodeCoord
	barrierNodes    map[int64]bool
	nodeIDMap       map[int64]da.Index
	maxNodeID       int64
	vertices        []RoadVertex
	edges           []RoadEdge
	edgeSet         map[[2]da.Index]int
}

func NewOsmParser(logger *zap.Logger, opts ...ParseOption) *OsmParser {
	p := &OsmParser{logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OsmParser) reset() {
	p.wayNodeMap = make(map[int64]NodeType)
	p.acceptedNodeMap = make(map[int64]NodeCoord)
	p.barrierNodes = make(map[int64]bool)
	p.nodeIDMap = make(map[int64]da.Index)
	p.maxNodeID = 0
	p.vertices = make([]RoadVertex, 0)
	p.edges = make([]RoadEdge, 0)
	p.edgeSet = make(map[[2]da.Index]int)
}

// Parse reads an .osm.pbf file, or an .osm xml file when the extension says so.
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*RoadNetwork, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	isXML := strings.EqualFold(filepath.Ext(mapFile), ".osm")
	return p.ParseWith(ctx, func(ctx context.Context) (osm.Scanner, error) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if isXML {
			return osmxml.New(ctx, f), nil
		}
		return osmpbf.New(ctx, f, runtime.GOMAXPROCS(-1)), nil
	})
}

// ParseWith runs both passes over scanners produced by newScanner.
// the first pass marks way nodes as end, between or junction nodes.
// the second pass reads node coordinates and barriers, then splits every accepted way into edges.
func (p *OsmParser) ParseWith(ctx context.Context, newScanner ScannerFactory) (*RoadNetwork, error) {
	p.reset()

	scanner, err := newScanner(ctx)
	if err != nil {
		return nil, err
	}
	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			p.logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		for i, wn := range way.Nodes {
			id := int64(wn.ID)
			if _, ok := p.wayNodeMap[id]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[id] = END_NODE
				} else {
					p.wayNodeMap[id] = BETWEEN_NODE
				}
			} else {
				p.wayNodeMap[id] = JUNCTION_NODE
			}
		}
	}
	err = scanner.Err()
	scanner.Close()
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrMalformedTopology, "osm first pass")
	}

	scanner, err = newScanner(ctx)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	ways := make([]*osm.Way, 0, countWays)
	countNodes := 0
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if (countNodes+1)%500000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++
			p.processNode(o)
		case *osm.Way:
			if len(o.Nodes) < 2 || !acceptOsmWay(o) {
				continue
			}
			ways = append(ways, o)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrMalformedTopology, "osm second pass")
	}

	for i, way := range ways {
		if util.StopConcurrentOperation(ctx) {
			return nil, ctx.Err()
		}
		if (i+1)%100000 == 0 {
			p.logger.Sugar().Infof("processing openstreetmap ways: %d...", i+1)
		}
		p.processWay(way)
	}

	network := NewRoadNetwork(p.vertices, p.edges)
	p.logger.Sugar().Infof("number of vertices: %v", network.NumberOfVertices())
	p.logger.Sugar().Infof("number of edges: %v", network.NumberOfEdges())
	return network, nil
}

func (p *OsmParser) processNode(n *osm.Node) {
	id := int64(n.ID)
	p.maxNodeID = max(p.maxNodeID, id)

	if _, ok := p.wayNodeMap[id]; !ok {
		return
	}
	if p.bound != nil && !p.bound.contains(n.Lat, n.Lon) {
		return
	}
	p.acceptedNodeMap[id] = NewNodeCoord(n.Lat, n.Lon)

	barrierType := n.Tags.Find("barrier")
	if _, ok := acceptedBarrierType[barrierType]; ok && n.Tags.Find("access") == "no" {
		p.barrierNodes[id] = true
	}
}

func (p *OsmParser) processWay(way *osm.Way) {
	info := wayInfo{
		name:  way.Tags.Find("name"),
		speed: wayTravelSpeed(way),
	}
	info.oneWay, info.forward = wayDirection(way)

	// nodes outside the extract (or the bounding circle) end the current segment
	waySegment := []node{}
	for _, wn := range way.Nodes {
		id := int64(wn.ID)
		coord, ok := p.acceptedNodeMap[id]
		if !ok {
			if len(waySegment) > 1 {
				p.processSegment(waySegment, info, int64(way.ID))
			}
			waySegment = []node{}
			continue
		}
		nodeData := node{id: id, coord: coord}
		waySegment = append(waySegment, nodeData)
		if p.wayNodeMap[id] == JUNCTION_NODE && len(waySegment) > 1 {
			p.processSegment(waySegment, info, int64(way.ID))
			waySegment = []node{nodeData}
		}
	}
	if len(waySegment) > 1 {
		p.processSegment(waySegment, info, int64(way.ID))
	}
}

func (p *OsmParser) processSegment(segment []node, info wayInfo, wayId int64) {
	if len(segment) == 2 && segment[0].id == segment[1].id {
		return
	} else if len(segment) > 2 && segment[0].id == segment[len(segment)-1].id {
		// closed loop without junctions, split so that both halves are real edges
		p.splitAtBarriers(segment[0:len(segment)-1], info, wayId)
		p.splitAtBarriers(segment[len(segment)-2:], info, wayId)
	} else {
		p.splitAtBarriers(segment, info, wayId)
	}
}

func (p *OsmParser) splitAtBarriers(segment []node, info wayInfo, wayId int64) {
	waySegment := []node{}
	for _, nodeData := range segment {
		if !p.barrierNodes[nodeData.id] {
			waySegment = append(waySegment, nodeData)
			continue
		}
		if len(waySegment) != 0 {
			waySegment = append(waySegment, nodeData)
			p.addEdge(waySegment, info, wayId)
		}
		// continue from a copy of the barrier so both sides stay disconnected
		waySegment = []node{p.copyNode(nodeData)}
	}
	if len(waySegment) > 1 {
		p.addEdge(waySegment, info, wayId)
	}
}

func (p *OsmParser) copyNode(nodeData node) node {
	p.maxNodeID++
	p.acceptedNodeMap[p.maxNodeID] = nodeData.coord
	return node{id: p.maxNodeID, coord: nodeData.coord}
}

func (p *OsmParser) vertexIndex(n node) da.Index {
	if idx, ok := p.nodeIDMap[n.id]; ok {
		return idx
	}
	idx := da.Index(len(p.vertices))
	p.nodeIDMap[n.id] = idx
	p.vertices = append(p.vertices, NewRoadVertex(n.id, n.coord.lat, n.coord.lon))
	return idx
}

func (p *OsmParser) addEdge(segment []node, info wayInfo, wayId int64) {
	from, to := segment[0], segment[len(segment)-1]
	if from.id == to.id {
		return
	}

	distance := 0.0
	for i := 1; i < len(segment); i++ {
		distance += geo.CalculateHaversineDistance(segment[i-1].coord.lat, segment[i-1].coord.lon,
			segment[i].coord.lat, segment[i].coord.lon)
	}
	if distance <= 0 {
		// stacked nodes, a zero cost edge is not a valid topology edge
		return
	}
	travelTime := geo.TravelTimeSeconds(distance, info.speed)
	distanceInMeter := distance * 1000

	u, v := p.vertexIndex(from), p.vertexIndex(to)
	if !info.oneWay || info.forward {
		p.appendEdge(NewRoadEdge(u, v, travelTime, distanceInMeter, info.name, wayId))
	}
	if !info.oneWay || !info.forward {
		p.appendEdge(NewRoadEdge(v, u, travelTime, distanceInMeter, info.name, wayId))
	}
}

// appendEdge keeps the fastest of parallel edges between the same pair of vertices.
func (p *OsmParser) appendEdge(e RoadEdge) {
	key := [2]da.Index{e.from, e.to}
	if i, ok := p.edgeSet[key]; ok {
		if e.travelTime < p.edges[i].travelTime {
			p.edges[i] = e
		}
		return
	}
	p.edgeSet[key] = len(p.edges)
	p.edges = append(p.edges, e)
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if highway != "" {
		_, ok := acceptedHighway[highway]
		return ok
	}
	return way.Tags.Find("junction") != ""
}

func isRestricted(value string) bool {
	return value == "no" || value == "restricted"
}

func getReversedOneWay(way *osm.Way) (bool, bool, bool, bool) {
	vehicleForward := way.Tags.Find("vehicle:forward")
	motorVehicleForward := way.Tags.Find("motor_vehicle:forward")
	vehicleBackward := way.Tags.Find("vehicle:backward")
	motorVehicleBackward := way.Tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward), isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

// wayDirection returns whether the way is one-way and, if so, whether travel follows the node order.
func wayDirection(way *osm.Way) (oneWay bool, forward bool) {
	okvf, okmvf, okvb, okmvb := getReversedOneWay(way)
	oneway := way.Tags.Find("oneway")
	junction := way.Tags.Find("junction")

	if oneway == "no" {
		return false, true
	}
	oneWay = oneway == "yes" || oneway == "true" || oneway == "1" || oneway == "-1" ||
		junction == "roundabout" || junction == "circular" ||
		okvf || okmvf || okvb || okmvb
	forward = !(oneway == "-1" || okvf || okmvf)
	return oneWay, forward
}

// wayTravelSpeed in km/h. maxspeed first, then the highway type default.
func wayTravelSpeed(way *osm.Way) float64 {
	if speed, ok := parseMaxSpeed(way.Tags.Find("maxspeed")); ok {
		return speed * pkg.NERF_MAXSPEED_OSM
	}
	if hw := way.Tags.Find("highway"); hw != "" {
		return pkg.HighwayTypeSpeed(pkg.GetHighwayType(hw))
	}
	return pkg.DEFAULT_SPEED_KMH
}

// parseMaxSpeed converts an osm maxspeed value to km/h. a bare number is km/h.
func parseMaxSpeed(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	factor := 1.0
	switch {
	case strings.HasSuffix(value, "mph"):
		factor = 1.60934
		value = strings.TrimSuffix(value, "mph")
	case strings.HasSuffix(value, "km/h"):
		value = strings.TrimSuffix(value, "km/h")
	case strings.HasSuffix(value, "knots"):
		factor = 1.852
		value = strings.TrimSuffix(value, "knots")
	}

	speed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return speed * factor, true
}
