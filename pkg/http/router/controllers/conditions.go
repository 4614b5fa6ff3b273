package controllers

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/evacroute/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type conditionsAPI struct {
	baseAPI
	conditionService ConditionService
}

func NewConditionsAPI(conditionService ConditionService, log *zap.Logger) *conditionsAPI {
	return &conditionsAPI{
		baseAPI:          newBaseAPI(log),
		conditionService: conditionService,
	}
}

func (api *conditionsAPI) Routes(group *helper.RouteGroup) {
	group.GET("/conditions", api.list)
	group.PUT("/conditions", api.set)
	group.PUT("/conditions/roads", api.setRoad)
	group.DELETE("/conditions", api.clear)
}

// list godoc
//
//	@Summary	every non-open road condition of the session
//	@Tags		conditions
//	@Produce	json
//	@Success	200	{object}	map[string][]conditionResponse
//	@Router		/conditions [get]
func (api *conditionsAPI) list(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	conds := api.conditionService.Conditions()
	resp := make([]conditionResponse, len(conds))
	for i, c := range conds {
		resp[i] = NewConditionResponse(c)
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// set godoc
//
//	@Summary	set the status of the road between two nodes, OPEN removes the record
//	@Tags		conditions
//	@Accept		json
//	@Produce	json
//	@Param		request	body		conditionRequest	true	"condition"
//	@Success	200		{object}	map[string]conditionResponse
//	@Failure	400		{object}	errorResponse
//	@Failure	404		{object}	errorResponse
//	@Router		/conditions [put]
func (api *conditionsAPI) set(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request conditionRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	cond, err := api.conditionService.SetCondition(request.From, request.To, request.Status)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewConditionResponse(cond)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// setRoad godoc
//
//	@Summary	set the status of every edge whose road name contains the fragment
//	@Tags		conditions
//	@Accept		json
//	@Produce	json
//	@Param		request	body		roadConditionRequest	true	"road condition"
//	@Success	200		{object}	map[string]roadConditionResponse
//	@Router		/conditions/roads [put]
func (api *conditionsAPI) setRoad(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request roadConditionRequest
	if err := api.readJSON(w, r, &request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	affected, err := api.conditionService.SetRoadCondition(request.Fragment, request.Status)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	resp := roadConditionResponse{Fragment: request.Fragment, Status: strings.ToUpper(strings.TrimSpace(request.Status)), Affected: affected}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// clear godoc
//
//	@Summary	reopen every road
//	@Tags		conditions
//	@Success	204
//	@Router		/conditions [delete]
func (api *conditionsAPI) clear(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.conditionService.ClearConditions()
	w.WriteHeader(http.StatusNoContent)
}
