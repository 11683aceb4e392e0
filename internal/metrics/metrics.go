package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sales_forecast"

var (
	once sync.Once

	ForecastRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "runs_total",
			Help:      "Forecasts generated by granularity, model and status",
		},
		[]string{"granularity", "model", "status"},
	)

	ForecastFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "fallbacks_total",
			Help:      "Model fits replaced by the trailing average",
		},
		[]string{"granularity", "model"},
	)

	ForecastDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "duration_seconds",
			Help:      "Time spent building the series and fitting the model",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"granularity"},
	)

	CacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "observation_cache",
			Name:      "requests_total",
			Help:      "Observation cache lookups by result",
		},
		[]string{"result"},
	)

	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot_sync",
			Name:      "tenant_runs_total",
			Help:      "Snapshot refreshes per tenant by result",
		},
		[]string{"tenant", "result"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ForecastRuns, ForecastFallbacks, ForecastDuration, CacheRequests, SyncRuns)
	})
}

func ObserveForecast(granularity, model, status string, elapsed time.Duration) {
	ForecastRuns.WithLabelValues(granularity, model, status).Inc()
	ForecastDuration.WithLabelValues(granularity).Observe(elapsed.Seconds())
}

func ObserveFallback(granularity, model string) {
	ForecastFallbacks.WithLabelValues(granularity, model).Inc()
}

func ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequests.WithLabelValues(result).Inc()
}

func ObserveSync(tenant string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SyncRuns.WithLabelValues(tenant, result).Inc()
}
