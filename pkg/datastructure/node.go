package datastructure

import (
	"math"
	"strconv"
	"strings"

	"github.com/lintang-b-s/evacroute/pkg"
)

type Index uint32

const (
	INVALID_VERTEX_ID Index = math.MaxUint32
)

func ParseIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return Index(u), nil
}

// Node is a facility or a plain road vertex. immutable once the topology is built.
type Node struct {
	code     string
	name     string
	tier     pkg.Tier
	lat      float64
	lon      float64
	hasCoord bool
	osmId    int64
}

func NewNode(code, name string, tier pkg.Tier) Node {
	return Node{code: code, name: name, tier: tier}
}

func NewNodeWithCoordinates(code, name string, tier pkg.Tier, lat, lon float64) Node {
	return Node{code: code, name: name, tier: tier, lat: lat, lon: lon, hasCoord: true}
}

func NewRoadVertex(osmId int64, lat, lon float64) Node {
	return Node{
		code:     pkg.OSM_NODE_CODE_PREF + strconv.FormatInt(osmId, 10),
		tier:     pkg.UNTIERED,
		lat:      lat,
		lon:      lon,
		hasCoord: true,
		osmId:    osmId,
	}
}

// AsFacility returns a copy of a road vertex relabeled as a facility, keeping its position.
func (n Node) AsFacility(code, name string, tier pkg.Tier) Node {
	n.code = code
	n.name = name
	n.tier = tier
	return n
}

func (n Node) GetCode() string {
	return n.code
}

func (n Node) GetName() string {
	return n.name
}

func (n Node) GetTier() pkg.Tier {
	return n.tier
}

func (n Node) GetLat() float64 {
	return n.lat
}

func (n Node) GetLon() float64 {
	return n.lon
}

func (n Node) HasCoordinates() bool {
	return n.hasCoord
}

func (n Node) GetOsmId() int64 {
	return n.osmId
}

// IsRoadVertex reports whether the node is a plain osm road vertex rather than a facility.
func (n Node) IsRoadVertex() bool {
	return strings.HasPrefix(n.code, pkg.OSM_NODE_CODE_PREF)
}

// Edge is a directed base edge used as builder input.
type Edge struct {
	from     Index
	to       Index
	cost     float64
	roadName string
}

func NewEdge(from, to Index, cost float64, roadName string) Edge {
	return Edge{from: from, to: to, cost: cost, roadName: roadName}
}

func (e Edge) GetFrom() Index {
	return e.from
}

func (e Edge) GetTo() Index {
	return e.to
}

func (e Edge) GetCost() float64 {
	return e.cost
}

func (e Edge) GetRoadName() string {
	return e.roadName
}
