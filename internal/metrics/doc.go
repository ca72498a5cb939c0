// Package metrics records build, stage and page metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	recorder := metrics.Recorder(metrics.NoopRecorder{})
//	if cfg.Monitoring.Metrics.Enabled {
//	    recorder = metrics.NewPrometheusRecorder(nil)
//	}
//
// PrometheusRecorder can serve its registry over HTTP (Handler) or dump it
// in the node_exporter textfile format after a one-shot build (WriteTextfile).
package metrics
