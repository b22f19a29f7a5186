package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	scanDuration    prom.Histogram
	scanResults     *prom.CounterVec
	reposDiscovered prom.Gauge
	probeDuration   *prom.HistogramVec
	gitOperations   *prom.CounterVec
	favoriteOps     *prom.CounterVec
	httpDuration    *prom.HistogramVec
	httpRequests    *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		scanDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "devpulse",
			Name:      "scan_duration_seconds",
			Help:      "Total duration of repository scans",
			Buckets:   prom.DefBuckets,
		}),
		scanResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "devpulse",
			Name:      "scan_results_total",
			Help:      "Scan outcomes by result",
		}, []string{"result"}),
		reposDiscovered: prom.NewGauge(prom.GaugeOpts{
			Namespace: "devpulse",
			Name:      "repos_discovered",
			Help:      "Repositories found by the most recent scan",
		}),
		probeDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "devpulse",
			Name:      "repo_probe_duration_seconds",
			Help:      "Duration of individual repository probes",
			Buckets:   prom.DefBuckets,
		}, []string{"repo", "result"}),
		gitOperations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "devpulse",
			Name:      "git_operations_total",
			Help:      "Git operation counts by operation and result",
		}, []string{"operation", "result"}),
		favoriteOps: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "devpulse",
			Name:      "favorite_operations_total",
			Help:      "Favorite store operations by operation and result",
		}, []string{"operation", "result"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "devpulse",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prom.DefBuckets,
		}, []string{"method", "route"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "devpulse",
			Name:      "http_requests_total",
			Help:      "HTTP request counts by route and status",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		pr.scanDuration, pr.scanResults, pr.reposDiscovered,
		pr.probeDuration, pr.gitOperations, pr.favoriteOps,
		pr.httpDuration, pr.httpRequests,
	)
	return pr
}

func (p *PrometheusRecorder) ObserveScanDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.scanDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncScanResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.scanResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetReposDiscovered(n int) {
	if p == nil {
		return
	}
	p.reposDiscovered.Set(float64(n))
}

func (p *PrometheusRecorder) ObserveProbeDuration(repo string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := ResultFailed
	if success {
		res = ResultSuccess
	}
	p.probeDuration.WithLabelValues(repo, string(res)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGitOperation(operation string, result ResultLabel) {
	if p == nil {
		return
	}
	p.gitOperations.WithLabelValues(operation, string(result)).Inc()
}

func (p *PrometheusRecorder) IncFavoriteOperation(operation string, result ResultLabel) {
	if p == nil {
		return
	}
	p.favoriteOps.WithLabelValues(operation, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
