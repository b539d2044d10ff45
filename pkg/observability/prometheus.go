package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// Prometheus implements every hook interface on top of Prometheus
// collectors. Register it with all three setters.
type Prometheus struct {
	fitDuration    prometheus.Histogram
	fitBranches    prometheus.Histogram
	renderDuration *prometheus.HistogramVec
	renderVoxels   *prometheus.HistogramVec
	stageErrors    *prometheus.CounterVec
	inflight       prometheus.Gauge

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg.
// Registering twice with the same registerer panics.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		fitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracetube_fit_duration_seconds",
			Help:    "Time to decompose a trace and fit its spline tree",
			Buckets: durationBuckets,
		}),
		fitBranches: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracetube_fit_branches",
			Help:    "Branches per fitted spline tree",
			Buckets: []float64{1, 2, 5, 10, 50, 100, 500},
		}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracetube_render_duration_seconds",
			Help:    "Time to render a tube mask",
			Buckets: durationBuckets,
		}, []string{"mode"}),
		renderVoxels: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracetube_render_voxels",
			Help:    "Voxels set per rendered mask",
			Buckets: prometheus.ExponentialBuckets(10, 10, 8),
		}, []string{"mode"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracetube_stage_errors_total",
			Help: "Failed fit and render stages",
		}, []string{"stage"}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "tracetube_stages_inflight",
			Help: "Fit and render stages currently running",
		}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracetube_cache_operations_total",
			Help: "Cache lookups and writes",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracetube_cache_written_bytes_total",
			Help: "Bytes written to the cache",
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracetube_http_requests_total",
			Help: "API requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracetube_http_request_duration_seconds",
			Help:    "API request latency",
			Buckets: durationBuckets,
		}, []string{"method", "route"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracetube_http_errors_total",
			Help: "API requests that failed, by error code",
		}, []string{"route", "code"}),
	}
}

func (p *Prometheus) OnFitStart(context.Context, int) { p.inflight.Inc() }

func (p *Prometheus) OnFitComplete(_ context.Context, branches int, d time.Duration, err error) {
	p.inflight.Dec()
	if err != nil {
		p.stageErrors.WithLabelValues("fit").Inc()
		return
	}
	p.fitDuration.Observe(d.Seconds())
	p.fitBranches.Observe(float64(branches))
}

func (p *Prometheus) OnRenderStart(context.Context, string, int) { p.inflight.Inc() }

func (p *Prometheus) OnRenderComplete(_ context.Context, mode string, voxels int, d time.Duration, err error) {
	p.inflight.Dec()
	if err != nil {
		p.stageErrors.WithLabelValues("render").Inc()
		return
	}
	p.renderDuration.WithLabelValues(mode).Observe(d.Seconds())
	p.renderVoxels.WithLabelValues(mode).Observe(float64(voxels))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, _, route, code string) {
	p.httpErrors.WithLabelValues(route, code).Inc()
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
