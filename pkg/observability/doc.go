/*
Package observability turns editor lifecycle events into Prometheus metrics.

Metrics.Hooks returns domain.LifecycleHooks that count mutations by operation
and outcome, count written unit documents, and record rebuild duration along
with the size of the last graph. Combine them with other hooks through
domain.ChainHooks:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	ed, err := storygraph.New(ctx, "story",
		storygraph.WithLifecycleHooks(domain.ChainHooks(logHooks, metrics.Hooks())),
	)
*/
package observability
