package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	LoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "projectjs_load_seconds",
		Help:    "Time spent loading a manifest, by stage.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	LoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectjs_loads_total",
		Help: "Manifest loads by result and error code.",
	}, []string{"result", "code"})

	RegistryPackages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "projectjs_registry_packages",
		Help: "Number of packages in the most recent registry.",
	})

	RegistryClasses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "projectjs_registry_classes",
		Help: "Number of classes in the most recent registry.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "projectjs_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RebuildsThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "projectjs_rebuilds_throttled_total",
		Help: "Watch-mode rebuilds that had to wait for the rate limiter.",
	})

	BuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projectjs_builds_total",
		Help: "Compiler hand-offs by result.",
	}, []string{"result"})
)

// RecordLoad counts a load outcome. An empty code means success.
func RecordLoad(code string) {
	if code == "" {
		LoadsTotal.WithLabelValues("ok", "").Inc()
		return
	}
	LoadsTotal.WithLabelValues("error", code).Inc()
}
