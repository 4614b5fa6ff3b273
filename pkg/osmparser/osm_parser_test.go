package osmparser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOsmXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="-7.2700" lon="112.7800" version="1"/>
  <node id="2" lat="-7.2700" lon="112.7810" version="1"/>
  <node id="3" lat="-7.2700" lon="112.7820" version="1"/>
  <node id="4" lat="-7.2660" lon="112.7810" version="1"/>
  <node id="5" lat="-7.2650" lon="112.7810" version="1">
    <tag k="barrier" v="gate"/>
    <tag k="access" v="no"/>
  </node>
  <node id="6" lat="-7.2640" lon="112.7810" version="1"/>
  <way id="100" version="1">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="primary"/>
    <tag k="maxspeed" v="50"/>
    <tag k="name" v="Jalan Dharmawangsa"/>
  </way>
  <way id="101" version="1">
    <nd ref="2"/>
    <nd ref="4"/>
    <tag k="highway" v="residential"/>
    <tag k="oneway" v="yes"/>
    <tag k="name" v="Jalan Kertajaya"/>
  </way>
  <way id="102" version="1">
    <nd ref="3"/>
    <nd ref="4"/>
    <tag k="highway" v="footway"/>
  </way>
  <way id="103" version="1">
    <nd ref="4"/>
    <nd ref="5"/>
    <nd ref="6"/>
    <tag k="highway" v="service"/>
  </way>
</osm>`

func xmlScanner(data string) ScannerFactory {
	return func(ctx context.Context) (osm.Scanner, error) {
		return osmxml.New(ctx, strings.NewReader(data)), nil
	}
}

type edgeKey struct {
	from, to int64
}

func edgesByOsmId(network *RoadNetwork) map[edgeKey]RoadEdge {
	out := make(map[edgeKey]RoadEdge)
	for _, e := range network.GetEdges() {
		out[edgeKey{network.GetVertex(e.GetFrom()).GetOsmId(), network.GetVertex(e.GetTo()).GetOsmId()}] = e
	}
	return out
}

func TestParseWith(t *testing.T) {
	p := NewOsmParser(zap.NewNop())
	network, err := p.ParseWith(context.Background(), xmlScanner(testOsmXML))
	require.NoError(t, err)

	// 1..6 plus the copy of the barrier node 5
	assert.Equal(t, 7, network.NumberOfVertices())
	assert.Equal(t, 9, network.NumberOfEdges())

	edges := edgesByOsmId(network)
	tests := []struct {
		name     string
		key      edgeKey
		wantRoad string
		exists   bool
	}{
		{"primary forward", edgeKey{1, 2}, "Jalan Dharmawangsa", true},
		{"primary backward", edgeKey{2, 1}, "Jalan Dharmawangsa", true},
		{"split at junction", edgeKey{2, 3}, "Jalan Dharmawangsa", true},
		{"no edge through junction", edgeKey{1, 3}, "", false},
		{"oneway forward", edgeKey{2, 4}, "Jalan Kertajaya", true},
		{"oneway has no reverse", edgeKey{4, 2}, "", false},
		{"footway rejected", edgeKey{3, 4}, "", false},
		{"up to the barrier", edgeKey{4, 5}, "", true},
		{"barrier copy onwards", edgeKey{7, 6}, "", true},
		{"barrier is not crossed", edgeKey{5, 6}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := edges[tt.key]
			assert.Equal(t, tt.exists, ok)
			if ok {
				assert.Equal(t, tt.wantRoad, e.GetName())
			}
		})
	}

	e := edges[edgeKey{1, 2}]
	distKm := geo.CalculateHaversineDistance(-7.2700, 112.7800, -7.2700, 112.7810)
	assert.InDelta(t, distKm*1000, e.GetDistance(), 1e-6)
	assert.InDelta(t, geo.TravelTimeSeconds(distKm, 50*pkg.NERF_MAXSPEED_OSM), e.GetTravelTime(), 1e-6)
	assert.Equal(t, int64(100), e.GetOsmWayId())

	e = edges[edgeKey{2, 4}]
	distKm = geo.CalculateHaversineDistance(-7.2700, 112.7810, -7.2660, 112.7810)
	assert.InDelta(t, geo.TravelTimeSeconds(distKm, pkg.HighwayTypeSpeed(pkg.RESIDENTIAL)), e.GetTravelTime(), 1e-6)
}

func TestParseWithBoundingCircle(t *testing.T) {
	p := NewOsmParser(zap.NewNop(), WithBoundingCircle(-7.2700, 112.7800, 0.25))
	network, err := p.ParseWith(context.Background(), xmlScanner(testOsmXML))
	require.NoError(t, err)

	assert.Equal(t, 3, network.NumberOfVertices())
	assert.Equal(t, 4, network.NumberOfEdges())
	for _, v := range network.GetVertices() {
		assert.Contains(t, []int64{1, 2, 3}, v.GetOsmId())
	}
}

func TestRoadNetworkTopology(t *testing.T) {
	p := NewOsmParser(zap.NewNop())
	network, err := p.ParseWith(context.Background(), xmlScanner(testOsmXML))
	require.NoError(t, err)

	top, err := da.NewTopologyFromEdges(network.Nodes(), network.TopologyEdges())
	require.NoError(t, err)
	assert.Equal(t, network.NumberOfVertices(), top.NodeCount())
	assert.Equal(t, network.NumberOfEdges(), top.EdgeCount())

	i, err := top.IndexOf("osm:2")
	require.NoError(t, err)
	tier, err := top.Tier(i)
	require.NoError(t, err)
	assert.Equal(t, pkg.UNTIERED, tier)
	_, _, ok, err := top.Coordinates(i)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surabaya.osm")
	require.NoError(t, os.WriteFile(path, []byte(testOsmXML), 0o644))

	p := NewOsmParser(zap.NewNop())
	network, err := p.Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 7, network.NumberOfVertices())

	_, err = p.Parse(context.Background(), filepath.Join(t.TempDir(), "missing.osm.pbf"))
	assert.Error(t, err)
}

func TestParseMaxSpeed(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOk bool
	}{
		{"50", 50, true},
		{"60 km/h", 60, true},
		{"30 mph", 30 * 1.60934, true},
		{"10 knots", 10 * 1.852, true},
		{"", 0, false},
		{"walk", 0, false},
		{"0", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseMaxSpeed(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestWayDirection(t *testing.T) {
	tests := []struct {
		name        string
		tags        osm.Tags
		wantOneWay  bool
		wantForward bool
	}{
		{"two way", osm.Tags{{Key: "highway", Value: "primary"}}, false, true},
		{"oneway yes", osm.Tags{{Key: "oneway", Value: "yes"}}, true, true},
		{"oneway reversed", osm.Tags{{Key: "oneway", Value: "-1"}}, true, false},
		{"roundabout", osm.Tags{{Key: "junction", Value: "roundabout"}}, true, true},
		{"roundabout explicitly two way", osm.Tags{{Key: "junction", Value: "roundabout"}, {Key: "oneway", Value: "no"}}, false, true},
		{"vehicle forward restricted", osm.Tags{{Key: "vehicle:forward", Value: "no"}}, true, false},
		{"motor vehicle backward restricted", osm.Tags{{Key: "motor_vehicle:backward", Value: "no"}}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oneWay, forward := wayDirection(&osm.Way{Tags: tt.tags})
			assert.Equal(t, tt.wantOneWay, oneWay)
			assert.Equal(t, tt.wantForward, forward)
		})
	}
}

func TestWayTravelSpeed(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want float64
	}{
		{"maxspeed wins", osm.Tags{{Key: "highway", Value: "residential"}, {Key: "maxspeed", Value: "40"}}, 40 * pkg.NERF_MAXSPEED_OSM},
		{"highway default", osm.Tags{{Key: "highway", Value: "primary"}}, pkg.HighwayTypeSpeed(pkg.PRIMARY)},
		{"bad maxspeed falls back", osm.Tags{{Key: "highway", Value: "tertiary"}, {Key: "maxspeed", Value: "signals"}}, pkg.HighwayTypeSpeed(pkg.TERTIARY)},
		{"junction only", osm.Tags{{Key: "junction", Value: "roundabout"}}, pkg.DEFAULT_SPEED_KMH},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, wayTravelSpeed(&osm.Way{Tags: tt.tags}), 1e-9)
		})
	}
}
