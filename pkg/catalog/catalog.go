package catalog

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/lintang-b-s/evacroute/pkg"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/util"
	"gopkg.in/yaml.v3"
)

// RoadCondition sets a status on every edge whose road name contains Fragment.
type RoadCondition struct {
	Fragment string
	Status   pkg.RoadStatus
}

// Catalog is a topology together with its default start and the conditions a session starts with.
type Catalog struct {
	topology       *da.Topology
	defaultStart   string
	conditions     []da.ConditionDirective
	roadConditions []RoadCondition
	costPerSecond  float64
}

func NewCatalog(topology *da.Topology, defaultStart string, conditions []da.ConditionDirective,
	roadConditions []RoadCondition) (*Catalog, error) {
	if defaultStart != "" {
		if _, err := topology.IndexOf(defaultStart); err != nil {
			return nil, err
		}
	}
	// resolve every code now so a bad catalog fails at load time
	if err := da.NewConditionOverlay().ApplyDirectives(topology, conditions); err != nil {
		return nil, err
	}
	return &Catalog{
		topology:       topology,
		defaultStart:   defaultStart,
		conditions:     conditions,
		roadConditions: roadConditions,
	}, nil
}

func (c *Catalog) GetTopology() *da.Topology {
	return c.topology
}

func (c *Catalog) GetDefaultStart() string {
	return c.defaultStart
}

func (c *Catalog) GetConditions() []da.ConditionDirective {
	return c.conditions
}

func (c *Catalog) GetRoadConditions() []RoadCondition {
	return c.roadConditions
}

// GetCostPerSecond is the number of cost units per second of travel, 0 when the catalog does not declare
// its cost unit.
func (c *Catalog) GetCostPerSecond() float64 {
	return c.costPerSecond
}

// CostPerSecond maps a cost_unit value to cost units per second. The empty unit maps to 0.
func CostPerSecond(unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "":
		return 0, true
	case "s", "sec", "second", "seconds":
		return 1, true
	case "m", "min", "minute", "minutes":
		return 1.0 / 60, true
	case "h", "hour", "hours":
		return 1.0 / 3600, true
	}
	return 0, false
}

// InitialOverlay returns a fresh overlay holding the catalog's conditions.
func (c *Catalog) InitialOverlay() (*da.ConditionOverlay, error) {
	overlay := da.NewConditionOverlay()
	if err := overlay.ApplyDirectives(c.topology, c.conditions); err != nil {
		return nil, err
	}
	for _, rc := range c.roadConditions {
		if _, err := overlay.ApplyRoadCondition(c.topology, rc.Fragment, rc.Status); err != nil {
			return nil, err
		}
	}
	return overlay, nil
}

// Facility is a catalog node located by coordinates, to be snapped onto a road network.
type Facility struct {
	code string
	name string
	tier pkg.Tier
	lat  float64
	lon  float64
}

func NewFacility(code, name string, tier pkg.Tier, lat, lon float64) Facility {
	return Facility{code: code, name: name, tier: tier, lat: lat, lon: lon}
}

func (f Facility) GetCode() string {
	return f.code
}

func (f Facility) GetName() string {
	return f.name
}

func (f Facility) GetTier() pkg.Tier {
	return f.tier
}

func (f Facility) GetLat() float64 {
	return f.lat
}

func (f Facility) GetLon() float64 {
	return f.lon
}

// cost accepts numbers, "inf" and null, the last two meaning no edge.
type cost float64

func (c *cost) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: cost must be a scalar", value.Line)
	}
	if value.Tag == "!!null" {
		*c = cost(math.Inf(1))
		return nil
	}
	var f float64
	if err := value.Decode(&f); err == nil {
		*c = cost(f)
		return nil
	}
	// yaml only resolves the dotted form, ".inf"
	s := strings.TrimPrefix(strings.TrimSpace(value.Value), "+")
	if strings.EqualFold(s, "inf") {
		*c = cost(math.Inf(1))
		return nil
	}
	return fmt.Errorf("line %d: invalid cost %q", value.Line, value.Value)
}

type yamlNode struct {
	Code string   `yaml:"code"`
	Name string   `yaml:"name"`
	Tier string   `yaml:"tier"`
	Lat  *float64 `yaml:"lat"`
	Lon  *float64 `yaml:"lon"`
}

type yamlEdge struct {
	From          string `yaml:"from"`
	To            string `yaml:"to"`
	Cost          cost   `yaml:"cost"`
	Road          string `yaml:"road"`
	Bidirectional *bool  `yaml:"bidirectional"`
}

type yamlCondition struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Status string `yaml:"status"`
}

type yamlRoadCondition struct {
	Fragment string `yaml:"fragment"`
	Status   string `yaml:"status"`
}

type yamlCatalog struct {
	Start          string              `yaml:"start"`
	CostUnit       string              `yaml:"cost_unit"`
	Symmetric      bool                `yaml:"symmetric"`
	Nodes          []yamlNode          `yaml:"nodes"`
	Matrix         [][]cost            `yaml:"matrix"`
	Edges          []yamlEdge          `yaml:"edges"`
	Conditions     []yamlCondition     `yaml:"conditions"`
	RoadConditions []yamlRoadCondition `yaml:"road_conditions"`
}

func malformed(format string, a ...interface{}) error {
	return util.WrapErrorf(nil, util.ErrMalformedTopology, format, a...)
}

// LoadFile reads a YAML catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse reads a YAML catalog: nodes, then exactly one of matrix or edges, then optional conditions.
func Parse(data []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, util.WrapErrorf(err, util.ErrMalformedTopology, "invalid catalog yaml")
	}

	nodes, err := parseNodes(doc.Nodes)
	if err != nil {
		return nil, err
	}
	costPerSecond, ok := CostPerSecond(doc.CostUnit)
	if !ok {
		return nil, malformed("unknown cost_unit %q", doc.CostUnit)
	}

	opts := make([]da.TopologyOption, 0, 1)
	if doc.Symmetric {
		opts = append(opts, da.RequireSymmetric())
	}

	var topology *da.Topology
	switch {
	case len(doc.Matrix) > 0 && len(doc.Edges) > 0:
		return nil, malformed("catalog has both matrix and edges")
	case len(doc.Matrix) > 0:
		matrix := make([][]float64, len(doc.Matrix))
		for i, row := range doc.Matrix {
			matrix[i] = make([]float64, len(row))
			for j, c := range row {
				matrix[i][j] = float64(c)
			}
		}
		topology, err = da.NewTopologyFromMatrix(nodes, matrix, opts...)
	case len(doc.Edges) > 0:
		var edges []da.Edge
		edges, err = parseEdges(nodes, doc.Edges)
		if err != nil {
			return nil, err
		}
		topology, err = da.NewTopologyFromEdges(nodes, edges, opts...)
	default:
		return nil, malformed("catalog has neither matrix nor edges")
	}
	if err != nil {
		return nil, err
	}

	conditions := make([]da.ConditionDirective, 0, len(doc.Conditions))
	for _, c := range doc.Conditions {
		status, ok := pkg.ParseRoadStatus(c.Status)
		if !ok {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "condition %s-%s: unknown status %q",
				c.From, c.To, c.Status)
		}
		conditions = append(conditions, da.NewConditionDirective(c.From, c.To, status))
	}

	roadConditions := make([]RoadCondition, 0, len(doc.RoadConditions))
	for _, rc := range doc.RoadConditions {
		status, ok := pkg.ParseRoadStatus(rc.Status)
		if !ok {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "road condition %q: unknown status %q",
				rc.Fragment, rc.Status)
		}
		if strings.TrimSpace(rc.Fragment) == "" {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "road condition with an empty fragment")
		}
		roadConditions = append(roadConditions, RoadCondition{Fragment: rc.Fragment, Status: status})
	}

	c, err := NewCatalog(topology, doc.Start, conditions, roadConditions)
	if err != nil {
		return nil, err
	}
	c.costPerSecond = costPerSecond
	return c, nil
}

func parseNodes(in []yamlNode) ([]da.Node, error) {
	if len(in) == 0 {
		return nil, malformed("catalog has no nodes")
	}
	nodes := make([]da.Node, 0, len(in))
	for i, n := range in {
		tier, ok := pkg.ParseTier(n.Tier)
		if !ok {
			return nil, malformed("node %d (%s): unknown tier %q", i, n.Code, n.Tier)
		}
		switch {
		case n.Lat != nil && n.Lon != nil:
			nodes = append(nodes, da.NewNodeWithCoordinates(n.Code, n.Name, tier, *n.Lat, *n.Lon))
		case n.Lat == nil && n.Lon == nil:
			nodes = append(nodes, da.NewNode(n.Code, n.Name, tier))
		default:
			return nil, malformed("node %d (%s): lat and lon must be given together", i, n.Code)
		}
	}
	return nodes, nil
}

func parseEdges(nodes []da.Node, in []yamlEdge) ([]da.Edge, error) {
	pos := make(map[string]da.Index, len(nodes))
	for i, n := range nodes {
		pos[n.GetCode()] = da.Index(i)
	}
	lookup := func(code string) (da.Index, error) {
		i, ok := pos[code]
		if !ok {
			return 0, util.WrapErrorf(nil, util.ErrUnknownNode, "unknown node code %q", code)
		}
		return i, nil
	}

	edges := make([]da.Edge, 0, 2*len(in))
	for _, e := range in {
		from, err := lookup(e.From)
		if err != nil {
			return nil, err
		}
		to, err := lookup(e.To)
		if err != nil {
			return nil, err
		}
		edges = append(edges, da.NewEdge(from, to, float64(e.Cost), e.Road))
		if e.Bidirectional == nil || *e.Bidirectional {
			edges = append(edges, da.NewEdge(to, from, float64(e.Cost), e.Road))
		}
	}
	return edges, nil
}

type yamlFacilities struct {
	Facilities []yamlNode `yaml:"facilities"`
	Nodes      []yamlNode `yaml:"nodes"`
}

// LoadFacilities reads facilities located by coordinates, from a "facilities" (or "nodes") list.
func LoadFacilities(path string) ([]Facility, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFacilities(data)
}

func ParseFacilities(data []byte) ([]Facility, error) {
	var doc yamlFacilities
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid facilities yaml")
	}
	in := doc.Facilities
	if len(in) == 0 {
		in = doc.Nodes
	}
	if len(in) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "no facilities")
	}

	facilities := make([]Facility, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for i, n := range in {
		if n.Code == "" {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "facility %d has an empty code", i)
		}
		if _, ok := seen[n.Code]; ok {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "duplicate facility code %q", n.Code)
		}
		seen[n.Code] = struct{}{}
		if n.Lat == nil || n.Lon == nil {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "facility %s has no coordinates", n.Code)
		}
		tier, ok := pkg.ParseTier(n.Tier)
		if !ok {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "facility %s: unknown tier %q", n.Code, n.Tier)
		}
		facilities = append(facilities, NewFacility(n.Code, n.Name, tier, *n.Lat, *n.Lon))
	}
	return facilities, nil
}
