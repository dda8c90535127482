// Package metrics records conversion metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder:
//
//	svc := importer.NewService(backend).WithRecorder(metrics.NoopRecorder{})
//
// When metrics.textfile is set, the CLI builds a PrometheusRecorder on a
// private registry and writes the registry to that file with WriteTextfile
// once the command finishes (node_exporter textfile collector format).
package metrics
