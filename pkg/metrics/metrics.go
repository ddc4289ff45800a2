// Package metrics exports Prometheus metrics for the canvas editor.
//
// Collectors are registered with the default registry through promauto.
// [Hooks] implements every observability hook interface on top of them;
// main installs it with [Install]:
//
//	metrics.Install()
//	r.Handle("/metrics", metrics.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/flowcanvas/pkg/geom"
	"github.com/matzehuels/flowcanvas/pkg/observability"
)

var (
	// BlockMovesTotal counts committed block moves.
	BlockMovesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flowcanvas_block_moves_total",
			Help: "Total number of committed block moves",
		},
	)

	// JointMovesTotal counts committed joint moves, split by whether the
	// position was snapped to the block perimeter.
	JointMovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcanvas_joint_moves_total",
			Help: "Total number of committed joint moves",
		},
		[]string{"snapped"},
	)

	// RendersTotal counts renders by format and outcome.
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcanvas_renders_total",
			Help: "Total number of rendered artifacts",
		},
		[]string{"format", "status"},
	)

	// RenderDuration measures render time per format. PNG and PDF shell out
	// to rsvg-convert, hence the long tail.
	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowcanvas_render_duration_seconds",
			Help:    "Duration of artifact rendering in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"format"},
	)

	// RoutedConnections tracks the number of connections in the last render.
	RoutedConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowcanvas_routed_connections",
			Help: "Number of connections routed by the most recent render",
		},
	)

	// CacheLookupsTotal counts cache lookups by key type and result.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcanvas_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"key_type", "result"},
	)

	// CacheBytesWritten sums the size of cache writes.
	CacheBytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcanvas_cache_written_bytes_total",
			Help: "Total bytes written to the cache",
		},
		[]string{"key_type"},
	)

	// HTTPRequestsTotal counts editor requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcanvas_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures editor response time.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowcanvas_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
)

// Hooks records observability events as Prometheus metrics.
type Hooks struct{}

var (
	_ observability.CanvasHooks = Hooks{}
	_ observability.RenderHooks = Hooks{}
	_ observability.CacheHooks  = Hooks{}
	_ observability.HTTPHooks   = Hooks{}
)

// Install registers Hooks for every observability event.
func Install() {
	observability.SetCanvasHooks(Hooks{})
	observability.SetRenderHooks(Hooks{})
	observability.SetCacheHooks(Hooks{})
	observability.SetHTTPHooks(Hooks{})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func (Hooks) OnBlockMove(string, geom.Point, int) {
	BlockMovesTotal.Inc()
}

func (Hooks) OnJointMove(_ string, _ geom.Point, snapped bool) {
	JointMovesTotal.WithLabelValues(strconv.FormatBool(snapped)).Inc()
}

func (Hooks) OnRenderStart(context.Context, string) {}

func (Hooks) OnRenderComplete(_ context.Context, format string, routes int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RendersTotal.WithLabelValues(format, status).Inc()
	RenderDuration.WithLabelValues(format).Observe(d.Seconds())
	RoutedConnections.Set(float64(routes))
}

func (Hooks) OnCacheHit(_ context.Context, keyType string) {
	CacheLookupsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (Hooks) OnCacheMiss(_ context.Context, keyType string) {
	CacheLookupsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	CacheBytesWritten.WithLabelValues(keyType).Add(float64(size))
}

func (Hooks) OnRequest(context.Context, string, string) {}

func (Hooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
