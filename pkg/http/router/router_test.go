package router

import (
	"fmt"
	"net/http"
	"net/netip"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/lintang-b-s/evacroute/pkg/catalog"
	"github.com/lintang-b-s/evacroute/pkg/engine/routing"
	"github.com/lintang-b-s/evacroute/pkg/http/usecases"
	"github.com/lintang-b-s/evacroute/pkg/spatialindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestEnforceJSONHandler(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"get passes", http.MethodGet, "", "", http.StatusOK},
		{"json body", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"text body", http.MethodPut, `{}`, "text/plain", http.StatusUnsupportedMediaType},
		{"missing content type", http.MethodPost, `{}`, "", http.StatusUnsupportedMediaType},
		{"empty post", http.MethodPost, "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/query", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			EnforceJSONHandler(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHeartbeat(t *testing.T) {
	h := Heartbeat("healthz")(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/route", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(REQUEST_ID_HEADER))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(REQUEST_ID_HEADER, "evac-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "evac-1", seen)
	assert.Equal(t, "evac-1", rec.Header().Get(REQUEST_ID_HEADER))
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", "", "2001:db8::/32"})
	require.NoError(t, err)
	require.Len(t, proxies, 3)
	assert.Equal(t, netip.MustParsePrefix("192.0.2.1/32"), proxies[1])

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
}

func TestRealIP(t *testing.T) {
	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		proxies    []netip.Prefix
		remoteAddr string
		forwarded  string
		realIP     string
		want       string
	}{
		{"no trusted proxies", nil, "198.51.100.4:5000", "203.0.113.7", "", "198.51.100.4:5000"},
		{"untrusted peer", proxies, "198.51.100.4:5000", "203.0.113.7", "", "198.51.100.4:5000"},
		{"trusted peer", proxies, "10.0.0.2:5000", "203.0.113.7", "", "203.0.113.7"},
		{"spoofed leftmost hop", proxies, "10.0.0.2:5000", "1.2.3.4, 203.0.113.7, 10.0.0.1", "", "203.0.113.7"},
		{"garbage hop", proxies, "10.0.0.2:5000", "nonsense", "", "10.0.0.2:5000"},
		{"real ip header", proxies, "10.0.0.2:5000", "", "203.0.113.9", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RealIP(tt.proxies)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = r.RemoteAddr
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestLimit(t *testing.T) {
	limit, err := Limit(0.001, 2, 0)
	require.NoError(t, err)
	h := limit(okHandler)

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("192.0.2.1:1000"))
	assert.Equal(t, http.StatusOK, send("192.0.2.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("192.0.2.1:1002"), "same host, other port")
	assert.Equal(t, http.StatusOK, send("192.0.2.2:1000"))
}

func TestLimitEvictsOldestClient(t *testing.T) {
	limit, err := Limit(0.001, 1, 2)
	require.NoError(t, err)
	h := limit(okHandler)

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("192.0.2.1:1000"))
	assert.Equal(t, http.StatusOK, send("192.0.2.2:1000"))
	assert.Equal(t, http.StatusOK, send("192.0.2.3:1000"))
	// 192.0.2.1 was evicted and starts with a fresh bucket
	assert.Equal(t, http.StatusOK, send("192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, send("192.0.2.1:1000"))
}

func TestRecoverPanic(t *testing.T) {
	api := NewAPI(zap.NewNop())
	h := api.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func TestHandler(t *testing.T) {
	c, err := catalog.Surabaya()
	require.NoError(t, err)
	top := c.GetTopology()
	engine, err := routing.NewRoutingEngine(top, nil, zap.NewNop(), 8, 2, 0)
	require.NoError(t, err)
	rt := spatialindex.NewRtree()
	rt.Build(top, zap.NewNop())
	conditions := usecases.NewConditionService(zap.NewNop(), top, nil)
	rs := usecases.NewRoutingService(zap.NewNop(), engine, rt, conditions, pkg.DEFAULT_SEARCH_KM, pkg.DEFAULT_TOP_K)

	h, err := NewAPI(zap.NewNop()).Handler(RateLimit{Enabled: true, RPS: 0.001, Burst: 1}, rs, conditions)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"health bypasses the limiter", http.MethodGet, "/healthz", http.StatusOK},
		{"route", http.MethodGet, "/api/route?source=UNA&target=ADH", http.StatusOK},
		{"rate limited", http.MethodGet, "/api/facilities", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.RemoteAddr = "192.0.2.10:4000"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK && tt.target != "/healthz" {
				assert.NotEmpty(t, rec.Header().Get(REQUEST_ID_HEADER))
			}
		})
	}
}

func TestHandlerIgnoresRotatedForwardedFor(t *testing.T) {
	c, err := catalog.Surabaya()
	require.NoError(t, err)
	top := c.GetTopology()
	engine, err := routing.NewRoutingEngine(top, nil, zap.NewNop(), 8, 2, 0)
	require.NoError(t, err)
	rt := spatialindex.NewRtree()
	rt.Build(top, zap.NewNop())
	conditions := usecases.NewConditionService(zap.NewNop(), top, nil)
	rs := usecases.NewRoutingService(zap.NewNop(), engine, rt, conditions, pkg.DEFAULT_SEARCH_KM, pkg.DEFAULT_TOP_K)

	proxies, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	h, err := NewAPI(zap.NewNop(), proxies...).Handler(RateLimit{Enabled: true, RPS: 0.001, Burst: 1, MaxClients: 4},
		rs, conditions)
	require.NoError(t, err)

	send := func(remoteAddr, forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/facilities", nil)
		req.RemoteAddr = remoteAddr
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.4:4000", "203.0.113.1"))
	for i := 2; i < 10; i++ {
		assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.4:4000", fmt.Sprintf("203.0.113.%d", i)))
	}

	// behind a trusted proxy the forwarded client is the key
	assert.Equal(t, http.StatusOK, send("10.0.0.2:4000", "203.0.113.50"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.2:4000", "203.0.113.50"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.2:4000", "203.0.113.50, 10.0.0.9"))
}
