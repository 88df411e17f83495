package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BootStates lists the boot state labels in transition order; SetBootState
// raises exactly one of them to 1.
var BootStates = []string{"connecting", "loading_index", "warming_ai", "ready", "error"}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry        *prom.Registry
	requestDuration *prom.HistogramVec
	requests        *prom.CounterVec
	probes          *prom.CounterVec
	bootState       *prom.GaugeVec
	shares          *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the metrics on reg. A nil
// registry gets a fresh private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "mnemo",
			Name:      "api_request_duration_seconds",
			Help:      "Duration of backend API requests",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mnemo",
			Name:      "api_requests_total",
			Help:      "Backend API requests by route and outcome",
		}, []string{"route", "outcome"}),
		probes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mnemo",
			Name:      "health_probes_total",
			Help:      "Health probe attempts by result",
		}, []string{"result"}),
		bootState: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "mnemo",
			Name:      "boot_state",
			Help:      "Current boot readiness state (1 for the active state)",
		}, []string{"state"}),
		shares: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mnemo",
			Name:      "share_attempts_total",
			Help:      "Share resolutions by winning strategy",
		}, []string{"strategy"}),
	}
	reg.MustRegister(pr.requestDuration, pr.requests, pr.probes, pr.bootState, pr.shares)
	return pr
}

func (p *PrometheusRecorder) ObserveRequest(route, outcome string, d time.Duration) {
	if p == nil {
		return
	}
	p.requestDuration.WithLabelValues(route).Observe(d.Seconds())
	p.requests.WithLabelValues(route, outcome).Inc()
}

func (p *PrometheusRecorder) IncProbe(result string) {
	if p == nil {
		return
	}
	p.probes.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) SetBootState(state string) {
	if p == nil {
		return
	}
	for _, s := range BootStates {
		v := 0.0
		if s == state {
			v = 1
		}
		p.bootState.WithLabelValues(s).Set(v)
	}
}

func (p *PrometheusRecorder) IncShare(strategy string) {
	if p == nil {
		return
	}
	p.shares.WithLabelValues(strategy).Inc()
}

// Handler exposes the recorder's registry in the Prometheus text format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (p *PrometheusRecorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

var _ Recorder = (*PrometheusRecorder)(nil)
