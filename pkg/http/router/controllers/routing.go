package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/lintang-b-s/evacroute/pkg/catalog"
	da "github.com/lintang-b-s/evacroute/pkg/datastructure"
	helper "github.com/lintang-b-s/evacroute/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/evacroute/pkg/http/usecases"
	"github.com/lintang-b-s/evacroute/pkg/util"
	"go.uber.org/zap"
)

type routingAPI struct {
	baseAPI
	routingService RoutingService
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		baseAPI:        newBaseAPI(log),
		routingService: routingService,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/facilities", api.facilities)
	group.GET("/route", api.route)
	group.GET("/recommendations", api.recommendations)
	group.POST("/query", api.query)
	group.GET("/nearest", api.nearest)
}

// facilities godoc
//
//	@Summary	list every facility of the catalog
//	@Tags		routing
//	@Produce	json
//	@Success	200	{object}	map[string][]facilityResponse
//	@Router		/facilities [get]
func (api *routingAPI) facilities(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	nodes := api.routingService.Facilities()
	resp := make([]facilityResponse, len(nodes))
	for i, n := range nodes {
		resp[i] = NewFacilityResponse(n)
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// route godoc
//
//	@Summary	shortest route between two nodes under the current road conditions
//	@Tags		routing
//	@Produce	json
//	@Param		source		query		string	true	"source node code"
//	@Param		target		query		string	true	"target node code"
//	@Param		algorithm	query		string	false	"dijkstra, astar or bfs"
//	@Success	200			{object}	map[string]routeResponse
//	@Failure	404			{object}	errorResponse
//	@Router		/route [get]
func (api *routingAPI) route(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	query := r.URL.Query()
	request := routeRequest{
		Source:    query.Get("source"),
		Target:    query.Get("target"),
		Algorithm: query.Get("algorithm"),
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	res, err := api.routingService.Route(r.Context(), request.Source, request.Target, request.Algorithm)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	resp := NewRouteResponse(api.routingService.Topology(), res)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// recommendations godoc
//
//	@Summary	k nearest reachable facilities of every tier
//	@Tags		routing
//	@Produce	json
//	@Param		source	query		string	true	"source node code"
//	@Param		k		query		int		false	"facilities per tier"
//	@Success	200		{object}	map[string]recommendationsResponse
//	@Router		/recommendations [get]
func (api *routingAPI) recommendations(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request recommendationsRequest
		err     error
	)
	query := r.URL.Query()
	request.Source = query.Get("source")
	request.K = pkg.DEFAULT_TOP_K
	if ks := query.Get("k"); ks != "" {
		request.K, err = strconv.Atoi(ks)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("k must be a valid int"))
			return
		}
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	recs, err := api.routingService.Recommendations(r.Context(), request.Source, request.K)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	resp := NewRecommendationsResponse(api.routingService.Topology(), recs)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// query godoc
//
//	@Summary	routes and recommendations under the conditions given in the body only
//	@Tags		routing
//	@Accept		json
//	@Produce	json
//	@Param		request	body		queryRequest	true	"query"
//	@Success	200		{object}	map[string]queryResponse
//	@Router		/query [post]
func (api *routingAPI) query(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request queryRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	params, err := request.toParams()
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	res, err := api.routingService.Query(r.Context(), params)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	top := api.routingService.Topology()
	resp := queryResponse{
		Routes:          make([]routeResponse, len(res.Routes)),
		Recommendations: NewRecommendationsResponse(top, res.Recommendations),
	}
	for i, route := range res.Routes {
		resp.Routes[i] = NewRouteResponse(top, route)
	}
	for _, recs := range res.SourceRecommendations {
		resp.SourceRecommendations = append(resp.SourceRecommendations, NewRecommendationsResponse(top, recs))
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (q queryRequest) toParams() (usecases.QueryParams, error) {
	params := usecases.QueryParams{
		Source:         q.Source,
		Targets:        q.Targets,
		Sources:        q.Sources,
		K:              q.K,
		Algorithm:      q.Algorithm,
		Conditions:     make([]da.ConditionDirective, 0, len(q.Conditions)),
		RoadConditions: make([]catalog.RoadCondition, 0, len(q.RoadConditions)),
	}
	for _, c := range q.Conditions {
		status, err := parseStatus(c.Status)
		if err != nil {
			return params, err
		}
		params.Conditions = append(params.Conditions, da.NewConditionDirective(c.From, c.To, status))
	}
	for _, rc := range q.RoadConditions {
		status, err := parseStatus(rc.Status)
		if err != nil {
			return params, err
		}
		params.RoadConditions = append(params.RoadConditions, catalog.RoadCondition{Fragment: rc.Fragment, Status: status})
	}
	return params, nil
}

func parseStatus(s string) (pkg.RoadStatus, error) {
	status, ok := pkg.ParseRoadStatus(s)
	if !ok {
		return pkg.OPEN, util.WrapErrorf(nil, util.ErrBadParamInput, "unknown road status %q", s)
	}
	return status, nil
}

// nearest godoc
//
//	@Summary	closest node to a gps position
//	@Tags		routing
//	@Produce	json
//	@Param		lat	query		number	true	"latitude"
//	@Param		lon	query		number	true	"longitude"
//	@Success	200	{object}	map[string]nearestResponse
//	@Router		/nearest [get]
func (api *routingAPI) nearest(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request nearestRequest
		err     error
	)
	query := r.URL.Query()
	request.Lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	request.Lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	res, err := api.routingService.Nearest(request.Lat, request.Lon)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewNearestResponse(res)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
