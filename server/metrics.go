package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zeu5/ran-rl-opt/types"
)

const metricsNamespace = "ran_optimizer"

// Metrics exported on /metrics
type Metrics struct {
	Registry *prometheus.Registry

	steps    prometheus.Counter
	resets   prometheus.Counter
	actions  *prometheus.CounterVec
	rewards  prometheus.Histogram
	network  *prometheus.GaugeVec
	requests *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		steps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "steps_total",
			Help:      "Total number of environment steps",
		}),
		resets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "resets_total",
			Help:      "Total number of environment resets",
		}),
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "actions_total",
			Help:      "Actions applied by source (client or agent)",
		}, []string{"source"}),
		rewards: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "step_reward",
			Help:      "Reward of every step",
			Buckets:   []float64{-20, -10, -5, -1, 0, 1, 5, 10, 20},
		}),
		network: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "network_stat",
			Help:      "Aggregate network statistics after the last request",
		}, []string{"stat"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}

func (m *Metrics) observeStep(result *types.StepResult) {
	m.steps.Inc()
	m.rewards.Observe(result.Reward)
}

func (m *Metrics) observeStats(stats types.NetworkStats) {
	for k, v := range stats.Values() {
		m.network.WithLabelValues(k).Set(v)
	}
}
