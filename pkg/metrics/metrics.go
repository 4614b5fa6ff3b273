package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	RESULT_REACHABLE   = "reachable"
	RESULT_UNREACHABLE = "unreachable"
	RESULT_ERROR       = "error"

	CACHE_TREE = "tree"
)

var (
	// queryTotal counts route and tree queries by algorithm and result
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evacroute_query_total",
		Help: "Total shortest path queries by algorithm and result",
	}, []string{"algorithm", "result"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evacroute_query_duration_seconds",
		Help:    "Shortest path query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16), // 10us to ~330ms
	}, []string{"algorithm"})

	settledNodes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evacroute_query_settled_nodes",
		Help:    "Number of settled vertices per query",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"algorithm"})

	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evacroute_cache_hits_total",
		Help: "Total cache hits",
	}, []string{"cache_type"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evacroute_cache_misses_total",
		Help: "Total cache misses",
	}, []string{"cache_type"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evacroute_http_requests_total",
		Help: "Total HTTP requests by method and status code",
	}, []string{"method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evacroute_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// overlayRecords is the number of non-OPEN road condition records in the session overlay
	overlayRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "evacroute_overlay_records",
		Help: "Road condition records in the session overlay",
	})
)

func ObserveQuery(algorithm, result string, start time.Time) {
	queryTotal.WithLabelValues(algorithm, result).Inc()
	queryDuration.WithLabelValues(algorithm).Observe(time.Since(start).Seconds())
}

func ObserveSettledNodes(algorithm string, n int) {
	settledNodes.WithLabelValues(algorithm).Observe(float64(n))
}

func CacheHit(cacheType string) {
	cacheHits.WithLabelValues(cacheType).Inc()
}

func CacheMiss(cacheType string) {
	cacheMisses.WithLabelValues(cacheType).Inc()
}

func SetOverlayRecords(n int) {
	overlayRecords.Set(float64(n))
}

func ObserveHTTPRequest(method string, status int, start time.Time) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
