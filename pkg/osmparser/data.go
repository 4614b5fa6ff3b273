package osmparser

import (
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
)

type NodeType uint8

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

type NodeCoord struct {
	lat float64
	lon float64
}

func NewNodeCoord(lat, lon float64) NodeCoord {
	return NodeCoord{lat, lon}
}

type RoadVertex struct {
	osmId int64
	lat   float64
	lon   float64
}

func NewRoadVertex(osmId int64, lat, lon float64) RoadVertex {
	return RoadVertex{osmId: osmId, lat: lat, lon: lon}
}

func (v RoadVertex) GetOsmId() int64 {
	return v.osmId
}

func (v RoadVertex) GetLat() float64 {
	return v.lat
}

func (v RoadVertex) GetLon() float64 {
	return v.lon
}

// RoadEdge is one directed road segment between two junctions (or way ends).
// travelTime in seconds, distance in meters.
type RoadEdge struct {
	from       da.Index
	to         da.Index
	travelTime float64
	distance   float64
	name       string
	osmWayId   int64
}

func NewRoadEdge(from, to da.Index, travelTime, distance float64, name string, osmWayId int64) RoadEdge {
	return RoadEdge{
		from:       from,
		to:         to,
		travelTime: travelTime,
		distance:   distance,
		name:       name,
		osmWayId:   osmWayId,
	}
}

func (e RoadEdge) GetFrom() da.Index {
	return e.from
}

func (e RoadEdge) GetTo() da.Index {
	return e.to
}

func (e RoadEdge) GetTravelTime() float64 {
	return e.travelTime
}

func (e RoadEdge) GetDistance() float64 {
	return e.distance
}

func (e RoadEdge) GetName() string {
	return e.name
}

func (e RoadEdge) GetOsmWayId() int64 {
	return e.osmWayId
}

// RoadNetwork is the directed road graph extracted from an osm file.
type RoadNetwork struct {
	vertices []RoadVertex
	edges    []RoadEdge
}

func NewRoadNetwork(vertices []RoadVertex, edges []RoadEdge) *RoadNetwork {
	return &RoadNetwork{vertices: vertices, edges: edges}
}

func (rn *RoadNetwork) NumberOfVertices() int {
	return len(rn.vertices)
}

func (rn *RoadNetwork) NumberOfEdges() int {
	return len(rn.edges)
}

func (rn *RoadNetwork) GetVertex(i da.Index) RoadVertex {
	return rn.vertices[i]
}

func (rn *RoadNetwork) GetVertices() []RoadVertex {
	return rn.vertices
}

func (rn *RoadNetwork) GetEdges() []RoadEdge {
	return rn.edges
}

// Nodes returns one untiered road vertex node per network vertex, in index order.
func (rn *RoadNetwork) Nodes() []da.Node {
	nodes := make([]da.Node, len(rn.vertices))
	for i, v := range rn.vertices {
		nodes[i] = da.NewRoadVertex(v.osmId, v.lat, v.lon)
	}
	return nodes
}

// TopologyEdges returns the network edges weighted by travel time.
func (rn *RoadNetwork) TopologyEdges() []da.Edge {
	edges := make([]da.Edge, len(rn.edges))
	for i, e := range rn.edges {
		edges[i] = da.NewEdge(e.from, e.to, e.travelTime, e.name)
	}
	return edges
}
