package routerhelper

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestRouteGroup(t *testing.T) {
	r := httprouter.New()
	api := NewRouteGroup(r, "/api")
	hit := ""
	handler := func(name string) httprouter.Handle {
		return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
			hit = name
		}
	}
	api.GET("/route", handler("route"))
	api.Group("conditions").PUT("/roads", handler("roads"))
	api.Group("/conditions").DELETE("", handler("clear"))

	tests := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/api/route", "route"},
		{http.MethodPut, "/api/conditions/roads", "roads"},
		{http.MethodDelete, "/api/conditions", "clear"},
	}
	for _, tt := range tests {
		hit = ""
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, hit, tt.path)
	}
}
