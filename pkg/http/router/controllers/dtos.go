package controllers

import (
	"math"

	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	"github.com/lintang-b-s/evacroute/pkg/http/usecases"
	"github.com/lintang-b-s/evacroute/pkg/ranker"
	"github.com/lintang-b-s/evacroute/pkg/util"
)

type routeRequest struct {
	Source    string `json:"source" validate:"required"`
	Target    string `json:"target" validate:"required"`
	Algorithm string `json:"algorithm"`
}

type recommendationsRequest struct {
	Source string `json:"source" validate:"required"`
	K      int    `json:"k" validate:"min=0,max=100"`
}

type nearestRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

type conditionRequest struct {
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required,nefield=From"`
	Status string `json:"status" validate:"required"`
}

type roadConditionRequest struct {
	Fragment string `json:"fragment" validate:"required"`
	Status   string `json:"status" validate:"required"`
}

type queryRequest struct {
	Source         string                 `json:"source" validate:"required"`
	Targets        []string               `json:"targets" validate:"omitempty,dive,required"`
	Sources        []string               `json:"sources" validate:"omitempty,max=64,dive,required"`
	K              int                    `json:"k" validate:"min=0,max=100"`
	Algorithm      string                 `json:"algorithm"`
	Conditions     []conditionRequest     `json:"conditions" validate:"omitempty,dive"`
	RoadConditions []roadConditionRequest `json:"road_conditions" validate:"omitempty,dive"`
}

type facilityResponse struct {
	Code string   `json:"code"`
	Name string   `json:"name"`
	Tier string   `json:"tier"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

func NewFacilityResponse(n da.Node) facilityResponse {
	resp := facilityResponse{
		Code: n.GetCode(),
		Name: n.GetName(),
		Tier: n.GetTier().String(),
	}
	if n.HasCoordinates() {
		lat, lon := n.GetLat(), n.GetLon()
		resp.Lat, resp.Lon = &lat, &lon
	}
	return resp
}

// distance is null when the target is unreachable, json has no infinity.
type routeResponse struct {
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Algorithm    string   `json:"algorithm"`
	Reachable    bool     `json:"reachable"`
	Distance     *float64 `json:"distance"`
	Hops         int      `json:"hops"`
	Path         []string `json:"path"`
	Roads        []string `json:"roads,omitempty"`
	Polyline     string   `json:"polyline,omitempty"`
	SettledNodes int      `json:"settled_nodes"`
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	v = util.RoundFloat(v, 6)
	return &v
}

func NewRouteResponse(top *da.Topology, res usecases.RouteResult) routeResponse {
	r := res.Route
	path := res.Codes
	if path == nil {
		path = []string{}
	}
	return routeResponse{
		Source:       top.GetNode(r.GetSource()).GetCode(),
		Target:       top.GetNode(r.GetTarget()).GetCode(),
		Algorithm:    r.GetAlgorithm().String(),
		Reachable:    r.IsReachable(),
		Distance:     finite(r.GetDistance()),
		Hops:         r.GetHops(),
		Path:         path,
		Roads:        res.Roads,
		Polyline:     res.Polyline,
		SettledNodes: r.GetNumSettledNodes(),
	}
}

type recommendationEntry struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Distance *float64 `json:"distance"`
	Path     []string `json:"path"`
}

type tierResponse struct {
	Tier       string                `json:"tier"`
	Facilities []recommendationEntry `json:"facilities"`
}

type recommendationsResponse struct {
	Source string         `json:"source"`
	K      int            `json:"k"`
	Tiers  []tierResponse `json:"tiers"`
}

func NewRecommendationsResponse(top *da.Topology, recs *ranker.Recommendations) recommendationsResponse {
	resp := recommendationsResponse{
		Source: top.GetNode(recs.GetSource()).GetCode(),
		K:      recs.GetK(),
		Tiers:  make([]tierResponse, 0, len(recs.GetTiers())),
	}
	for _, tr := range recs.GetTiers() {
		entries := make([]recommendationEntry, 0, len(tr.GetEntries()))
		for _, e := range tr.GetEntries() {
			node := top.GetNode(e.GetNode())
			path := make([]string, len(e.GetPath()))
			for i, v := range e.GetPath() {
				path[i] = top.GetNode(v).GetCode()
			}
			entries = append(entries, recommendationEntry{
				Code:     node.GetCode(),
				Name:     node.GetName(),
				Distance: finite(e.GetDistance()),
				Path:     path,
			})
		}
		resp.Tiers = append(resp.Tiers, tierResponse{Tier: tr.GetTier().String(), Facilities: entries})
	}
	return resp
}

type queryResponse struct {
	Routes                []routeResponse           `json:"routes"`
	Recommendations       recommendationsResponse   `json:"recommendations"`
	SourceRecommendations []recommendationsResponse `json:"source_recommendations,omitempty"`
}

type conditionResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Status string `json:"status"`
}

func NewConditionResponse(c usecases.Condition) conditionResponse {
	return conditionResponse{From: c.From, To: c.To, Status: c.Status.String()}
}

type roadConditionResponse struct {
	Fragment string `json:"fragment"`
	Status   string `json:"status"`
	Affected int    `json:"affected"`
}

type nearestResponse struct {
	Code          string   `json:"code"`
	Name          string   `json:"name,omitempty"`
	Tier          string   `json:"tier"`
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	DistanceM     float64  `json:"distance_m"`
	EdgeDistanceM *float64 `json:"edge_distance_m,omitempty"`
}

func NewNearestResponse(res usecases.NearestResult) nearestResponse {
	resp := nearestResponse{
		Code:      res.Node.GetCode(),
		Name:      res.Node.GetName(),
		Tier:      res.Node.GetTier().String(),
		Lat:       res.Node.GetLat(),
		Lon:       res.Node.GetLon(),
		DistanceM: util.RoundFloat(res.DistanceM, 2),
	}
	if res.HasEdge {
		d := util.RoundFloat(res.EdgeDistanceM, 2)
		resp.EdgeDistanceM = &d
	}
	return resp
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
