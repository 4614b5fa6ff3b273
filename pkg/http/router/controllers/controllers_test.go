package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/lintang-b-s/evacroute/pkg/catalog"
	"github.com/lintang-b-s/evacroute/pkg/engine/routing"
	helper "github.com/lintang-b-s/evacroute/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/evacroute/pkg/http/usecases"
	"github.com/lintang-b-s/evacroute/pkg/spatialindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	c, err := catalog.Surabaya()
	require.NoError(t, err)
	top := c.GetTopology()

	engine, err := routing.NewRoutingEngine(top, nil, zap.NewNop(), 16, 2, 0)
	require.NoError(t, err)
	rt := spatialindex.NewRtree()
	rt.Build(top, zap.NewNop())
	conditions := usecases.NewConditionService(zap.NewNop(), top, nil)
	rs := usecases.NewRoutingService(zap.NewNop(), engine, rt, conditions, pkg.DEFAULT_SEARCH_KM, pkg.DEFAULT_TOP_K)

	router := httprouter.New()
	group := helper.NewRouteGroup(router, "/api")
	New(rs, zap.NewNop()).Routes(group)
	NewConditionsAPI(conditions, zap.NewNop()).Routes(group)
	return router
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestRouteEndpoint(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantPath   []string
		wantDist   float64
		wantCode   string
	}{
		{"dijkstra", "/api/route?source=UNA&target=ADH", http.StatusOK, []string{"UNA", "RSL", "AUS", "RKZ", "BDH", "ADH"}, 98, ""},
		{"bfs", "/api/route?source=UNA&target=ADH&algorithm=BFS", http.StatusOK, []string{"UNA", "BHY", "AUS", "RKZ", "BDH", "ADH"}, 106, ""},
		{"missing target", "/api/route?source=UNA", http.StatusBadRequest, nil, 0, "bad_request"},
		{"unknown node", "/api/route?source=UNA&target=XXX", http.StatusNotFound, nil, 0, "unknown_node"},
		{"unknown algorithm", "/api/route?source=UNA&target=ADH&algorithm=floyd", http.StatusBadRequest, nil, 0, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCode(t, rec))
				return
			}
			var resp routeResponse
			decodeData(t, rec, &resp)
			assert.True(t, resp.Reachable)
			require.NotNil(t, resp.Distance)
			assert.Equal(t, tt.wantDist, *resp.Distance)
			assert.Equal(t, tt.wantPath, resp.Path)
		})
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/recommendations?source=UNA", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp recommendationsResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, "UNA", resp.Source)
	assert.Equal(t, pkg.DEFAULT_TOP_K, resp.K)
	require.Len(t, resp.Tiers, len(pkg.TierPriority))
	assert.Equal(t, pkg.TOP_TIER.String(), resp.Tiers[0].Tier)

	got := make([]string, len(resp.Tiers[0].Facilities))
	for i, f := range resp.Tiers[0].Facilities {
		got[i] = f.Code
	}
	assert.Equal(t, []string{"DST", "NHS", "SIL"}, got)

	rec = do(t, h, http.MethodGet, "/api/recommendations?source=UNA&k=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/recommendations?source=UNA&k=500", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConditionsEndpoints(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPut, "/api/conditions", `{"from":"UNA","to":"DST","status":"blocked"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cond conditionResponse
	decodeData(t, rec, &cond)
	assert.Equal(t, conditionResponse{From: "UNA", To: "DST", Status: "BLOCKED"}, cond)

	rec = do(t, h, http.MethodGet, "/api/route?source=UNA&target=DST", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var route routeResponse
	decodeData(t, rec, &route)
	require.NotNil(t, route.Distance)
	assert.Equal(t, 22.0, *route.Distance)
	assert.Equal(t, []string{"UNA", "NHS", "DST"}, route.Path)

	rec = do(t, h, http.MethodGet, "/api/conditions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var conds []conditionResponse
	decodeData(t, rec, &conds)
	assert.Equal(t, []conditionResponse{{From: "DST", To: "UNA", Status: "BLOCKED"}}, conds)

	rec = do(t, h, http.MethodDelete, "/api/conditions", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/conditions", "")
	decodeData(t, rec, &conds)
	assert.Empty(t, conds)
}

func TestSetConditionErrors(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"same endpoints", `{"from":"UNA","to":"UNA","status":"blocked"}`, http.StatusBadRequest, "bad_request"},
		{"missing status", `{"from":"UNA","to":"DST"}`, http.StatusBadRequest, "bad_request"},
		{"unknown field", `{"from":"UNA","to":"DST","status":"blocked","depth":2}`, http.StatusBadRequest, "bad_request"},
		{"bad status", `{"from":"UNA","to":"DST","status":"muddy"}`, http.StatusBadRequest, "bad_request"},
		{"unknown node", `{"from":"UNA","to":"XXX","status":"flooded"}`, http.StatusNotFound, "unknown_node"},
		{"empty body", ``, http.StatusBadRequest, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, "/api/conditions", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestQueryEndpoint(t *testing.T) {
	h := newTestRouter(t)

	body := `{
		"source": "UNA",
		"targets": ["DST", "SEM"],
		"conditions": [{"from": "UNA", "to": "DST", "status": "BLOCKED"}]
	}`
	rec := do(t, h, http.MethodPost, "/api/query", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp queryResponse
	decodeData(t, rec, &resp)
	require.Len(t, resp.Routes, 2)
	require.NotNil(t, resp.Routes[0].Distance)
	assert.Equal(t, 22.0, *resp.Routes[0].Distance)
	require.NotNil(t, resp.Routes[1].Distance)
	assert.Equal(t, 151.0, *resp.Routes[1].Distance)
	assert.Equal(t, "UNA", resp.Recommendations.Source)
	assert.Empty(t, resp.SourceRecommendations)

	rec = do(t, h, http.MethodPost, "/api/query", `{"source": "UNA", "sources": ["DST", "SEM"], "k": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = queryResponse{}
	decodeData(t, rec, &resp)
	require.Len(t, resp.SourceRecommendations, 2)
	assert.Equal(t, "DST", resp.SourceRecommendations[0].Source)
	assert.Equal(t, "SEM", resp.SourceRecommendations[1].Source)
	assert.Equal(t, 1, resp.SourceRecommendations[1].K)

	rec = do(t, h, http.MethodPost, "/api/query", `{"source": "UNA", "sources": ["DST", ""]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/conditions", "")
	var conds []conditionResponse
	decodeData(t, rec, &conds)
	assert.Empty(t, conds, "query conditions never touch the session")

	rec = do(t, h, http.MethodPost, "/api/query", `{"source":"UNA","conditions":[{"from":"UNA","to":"DST","status":"wet"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFacilitiesEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/facilities", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp []facilityResponse
	decodeData(t, rec, &resp)
	assert.Len(t, resp, 25)
	for _, f := range resp {
		assert.Nil(t, f.Lat)
		assert.NotEqual(t, pkg.UNTIERED.String(), f.Tier)
	}
}

func TestNearestEndpoint(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/nearest?lat=-7.27&lon=112.78", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "catalog without coordinates")

	rec = do(t, h, http.MethodGet, "/api/nearest?lat=abc&lon=112.78", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/nearest?lat=95&lon=112.78", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
