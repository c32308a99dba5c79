package observability

import (
	"context"

	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by the engine hooks.
type Metrics struct {
	Mutations     *prometheus.CounterVec
	UnitsWritten  prometheus.Counter
	Rebuilds      prometheus.Counter
	RebuildTime   prometheus.Histogram
	Nodes         prometheus.Gauge
	Edges         prometheus.Gauge
	ParseFailures prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storygraph_mutations_total",
				Help: "Editor operations by kind and outcome",
			},
			[]string{"op", "result"},
		),
		UnitsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storygraph_units_written_total",
			Help: "Unit documents written by editor operations",
		}),
		Rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storygraph_rebuilds_total",
			Help: "Full graph rebuilds",
		}),
		RebuildTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storygraph_rebuild_duration_seconds",
			Help:    "Duration of full graph rebuilds",
			Buckets: prometheus.DefBuckets,
		}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storygraph_graph_nodes",
			Help: "Nodes in the current graph",
		}),
		Edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storygraph_graph_edges",
			Help: "Edges in the current graph",
		}),
		ParseFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storygraph_parse_failures",
			Help: "Units of the current graph that do not parse",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Mutations, m.UnitsWritten, m.Rebuilds, m.RebuildTime, m.Nodes, m.Edges, m.ParseFailures)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(ctx context.Context, e *domain.MutationEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.Mutations.WithLabelValues(string(e.Op), result).Inc()
			m.UnitsWritten.Add(float64(e.Written))
		},
		OnRebuild: func(ctx context.Context, e *domain.RebuildEvent) {
			m.Rebuilds.Inc()
			m.RebuildTime.Observe(e.Duration.Seconds())
			if e.Graph != nil {
				m.Nodes.Set(float64(len(e.Graph.Nodes)))
				m.Edges.Set(float64(len(e.Graph.Edges)))
			}
			m.ParseFailures.Set(float64(e.ParseFailures))
		},
	}
}
