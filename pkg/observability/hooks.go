package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/limaJavier/timetabling-memetic/pkg/solution"
)

// PrometheusHooks exports the progress of memetic strategies. One value serves every strategy of a process; the
// collectors are safe for concurrent use
type PrometheusHooks struct {
	registry *prometheus.Registry
	handler  http.Handler

	seedingAttempts    *prometheus.CounterVec
	generations        prometheus.Counter
	generationDuration prometheus.Histogram
	bestWeighted       prometheus.Gauge
	bestHard           prometheus.Gauge
	bestSoft           prometheus.Gauge
	runs               prometheus.Counter
	runDuration        prometheus.Histogram
}

func NewPrometheusHooks() *PrometheusHooks {
	registry := prometheus.NewRegistry()

	hooks := &PrometheusHooks{
		registry: registry,
		seedingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memetic_seeding_attempts_total",
			Help: "Candidates built while seeding populations",
		}, []string{"feasible"}),
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memetic_generations_total",
			Help: "Generations evolved",
		}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "memetic_generation_duration_seconds",
			Help:    "Duration of a generation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		bestWeighted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memetic_best_weighted_violations",
			Help: "Weighted violations of the best candidate of the last generation",
		}),
		bestHard: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memetic_best_hard_violations",
			Help: "Hard violations of the best candidate of the last generation",
		}),
		bestSoft: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memetic_best_soft_violations",
			Help: "Soft violations of the best candidate of the last generation",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memetic_runs_total",
			Help: "Generation loops completed",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "memetic_run_duration_seconds",
			Help:    "Duration of a generation loop in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
	}

	registry.MustRegister(
		hooks.seedingAttempts,
		hooks.generations,
		hooks.generationDuration,
		hooks.bestWeighted,
		hooks.bestHard,
		hooks.bestSoft,
		hooks.runs,
		hooks.runDuration,
	)
	hooks.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return hooks
}

// Handler exposes the collectors in the Prometheus text format
func (hooks *PrometheusHooks) Handler() http.Handler {
	return hooks.handler
}

func (hooks *PrometheusHooks) Registry() *prometheus.Registry {
	return hooks.registry
}

func (hooks *PrometheusHooks) SeedingAttempt(feasible bool) {
	label := "false"
	if feasible {
		label = "true"
	}
	hooks.seedingAttempts.WithLabelValues(label).Inc()
}

func (hooks *PrometheusHooks) GenerationCompleted(_ int, best *solution.Candidate, elapsed time.Duration) {
	hooks.generations.Inc()
	hooks.generationDuration.Observe(elapsed.Seconds())
	hooks.observeBest(best)
}

func (hooks *PrometheusHooks) RunCompleted(_ int, best *solution.Candidate, elapsed time.Duration) {
	hooks.runs.Inc()
	hooks.runDuration.Observe(elapsed.Seconds())
	hooks.observeBest(best)
}

func (hooks *PrometheusHooks) observeBest(best *solution.Candidate) {
	hooks.bestWeighted.Set(float64(best.WeightedViolations()))
	hooks.bestHard.Set(float64(best.HardViolations()))
	hooks.bestSoft.Set(float64(best.SoftViolations()))
}
