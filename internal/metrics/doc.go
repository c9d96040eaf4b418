// Package metrics provides observability hooks for indexing runs.
//
// Components receive a Recorder and default to NoopRecorder, so metrics
// collection needs no nil checks at call sites:
//
//	svc := posts.NewService[BlogFrontMatter](posts.Options{Recorder: metrics.NoopRecorder{}})
//
// To enable metrics, swap in a PrometheusRecorder and dump its registry to a
// node_exporter textfile once the run is done:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	// ... run ...
//	_ = metrics.WriteTextfile("/var/lib/node_exporter/postbuilder.prom", reg)
//
// The CLI is a short-lived process, so there is no scrape endpoint.
package metrics
