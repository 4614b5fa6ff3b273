package pkg

import (
	"math"
	"strings"
)

// enum of road condition
type RoadStatus uint8

const (
	OPEN RoadStatus = iota
	FLOODED
	BLOCKED
)

func (s RoadStatus) String() string {
	switch s {
	case OPEN:
		return "OPEN"
	case FLOODED:
		return "FLOODED"
	case BLOCKED:
		return "BLOCKED"
	default:
		return "UNKNOWN"
	}
}

// ParseRoadStatus. case-insensitive, accepts the String() labels only.
func ParseRoadStatus(s string) (RoadStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPEN":
		return OPEN, true
	case "FLOODED":
		return FLOODED, true
	case "BLOCKED":
		return BLOCKED, true
	default:
		return OPEN, false
	}
}

// enum of facility tier, declared in priority order (highest first)
type Tier uint8

const (
	TOP_TIER Tier = iota
	UPPER_TIER
	MIDDLE_TIER
	LOWER_MIDDLE_TIER
	UNTIERED
)

// TierPriority. ranked tiers, highest priority first. UNTIERED is never ranked.
var TierPriority = []Tier{TOP_TIER, UPPER_TIER, MIDDLE_TIER, LOWER_MIDDLE_TIER}

func (t Tier) String() string {
	switch t {
	case TOP_TIER:
		return "Top-Tier"
	case UPPER_TIER:
		return "Upper-Tier"
	case MIDDLE_TIER:
		return "Middle-Tier"
	case LOWER_MIDDLE_TIER:
		return "Lower Middle-Tier"
	default:
		return "Untiered"
	}
}

func (t Tier) Ranked() bool {
	return t < UNTIERED
}

// ParseTier accepts the display labels ("Top-Tier") and the short keys ("top", "lower_middle").
func ParseTier(s string) (Tier, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-tier", "", " tier", "", "-", "_", " ", "_").Replace(key)
	switch key {
	case "top":
		return TOP_TIER, true
	case "upper":
		return UPPER_TIER, true
	case "middle":
		return MIDDLE_TIER, true
	case "lower_middle":
		return LOWER_MIDDLE_TIER, true
	case "", "untiered", "none":
		return UNTIERED, true
	default:
		return UNTIERED, false
	}
}

var (
	INF_WEIGHT = math.Inf(1)
)

const (
	FLOODED_COST_MULTIPLIER = 3.0
	DEFAULT_TOP_K           = 3

	// ~100 km/h, upper bound of road speed used by the straight-line heuristic
	MAX_SPEED_MPS = 28.0

	DEFAULT_SPEED_KMH  = 30.0
	NERF_MAXSPEED_OSM  = 0.9
	MAX_LANDMARKS      = 64
	DEFAULT_SEARCH_KM  = 0.5
	OSM_NODE_CODE_PREF = "osm:"
)

type OsmHighwayType uint8

// enum buat osm highway buat routing: https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
const (
	MOTORWAY       OsmHighwayType = 0
	TRUNK          OsmHighwayType = 1
	PRIMARY        OsmHighwayType = 2
	SECONDARY      OsmHighwayType = 3
	TERTIARY       OsmHighwayType = 4
	RESIDENTIAL    OsmHighwayType = 5
	SERVICE        OsmHighwayType = 6
	UNCLASSIFIED   OsmHighwayType = 7
	MOTORWAY_LINK  OsmHighwayType = 8
	TRUNK_LINK     OsmHighwayType = 9
	PRIMARY_LINK   OsmHighwayType = 10
	SECONDARY_LINK OsmHighwayType = 11
	TERTIARY_LINK  OsmHighwayType = 12
	LIVING_STREET  OsmHighwayType = 13
	ROAD           OsmHighwayType = 14
	TRACK          OsmHighwayType = 15
	MOTORROAD      OsmHighwayType = 16
	UNKNOWN        OsmHighwayType = 17
)

func GetHighwayType(roadType string) OsmHighwayType {
	switch roadType {
	case "motorway":
		return MOTORWAY
	case "trunk":
		return TRUNK
	case "primary":
		return PRIMARY
	case "secondary":
		return SECONDARY
	case "tertiary":
		return TERTIARY
	case "unclassified":
		return UNCLASSIFIED
	case "residential":
		return RESIDENTIAL
	case "service":
		return SERVICE
	case "motorway_link":
		return MOTORWAY_LINK
	case "trunk_link":
		return TRUNK_LINK
	case "primary_link":
		return PRIMARY_LINK
	case "secondary_link":
		return SECONDARY_LINK
	case "tertiary_link":
		return TERTIARY_LINK
	case "living_street":
		return LIVING_STREET
	case "road":
		return ROAD
	case "track":
		return TRACK
	case "motorroad":
		return MOTORROAD
	default:
		return UNKNOWN
	}
}

// HighwayTypeSpeed. default speed (km/h) per highway type when the way has no usable maxspeed tag.
func HighwayTypeSpeed(hw OsmHighwayType) float64 {
	switch hw {
	case MOTORWAY, MOTORROAD:
		return 90
	case TRUNK:
		return 70
	case PRIMARY:
		return 60
	case SECONDARY:
		return 50
	case TERTIARY:
		return 40
	case MOTORWAY_LINK, TRUNK_LINK:
		return 45
	case PRIMARY_LINK, SECONDARY_LINK, TERTIARY_LINK:
		return 35
	case RESIDENTIAL, UNCLASSIFIED, ROAD:
		return 30
	case LIVING_STREET, SERVICE:
		return 15
	case TRACK:
		return 10
	default:
		return DEFAULT_SPEED_KMH
	}
}
