package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the storefront collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route"},
	)

	cartMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations by operation and outcome.",
		},
		[]string{"op", "result"},
	)

	cartsStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "carts",
			Help:      "Number of carts held in memory.",
		},
	)

	snapshotSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "snapshot",
			Name:      "saves_total",
			Help:      "Cart snapshot writes by backend and outcome.",
		},
		[]string{"backend", "result"},
	)

	snapshotSaveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "snapshot",
			Name:      "save_duration_seconds",
			Help:      "Duration of cart snapshot writes.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"backend"},
	)

	snapshotLoadFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "snapshot",
			Name:      "load_failures_total",
			Help:      "Snapshot loads that failed and fell back to an empty cart store.",
		},
		[]string{"backend"},
	)

	catalogProducts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "catalog",
			Name:      "products",
			Help:      "Number of products in the catalog.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		cartMutations,
		cartsStored,
		snapshotSaves,
		snapshotSaveDuration,
		snapshotLoadFailures,
		catalogProducts,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordCartMutation counts one add/update/remove attempt.
func RecordCartMutation(op string, err error) {
	cartMutations.WithLabelValues(op, result(err)).Inc()
}

// SetCarts reports how many carts the store holds.
func SetCarts(n int) {
	cartsStored.Set(float64(n))
}

// RecordSnapshotSave records one snapshot write.
func RecordSnapshotSave(backend string, duration time.Duration, err error) {
	snapshotSaves.WithLabelValues(backend, result(err)).Inc()
	snapshotSaveDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordSnapshotLoadFailure marks a startup load that degraded to an empty store.
func RecordSnapshotLoadFailure(backend string) {
	snapshotLoadFailures.WithLabelValues(backend).Inc()
}

// SetCatalogProducts reports the catalog size.
func SetCatalogProducts(n int) {
	catalogProducts.Set(float64(n))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
