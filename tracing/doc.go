// Package tracing wraps OpenTelemetry so that the worker can record one span
// per run phase (resolve, deserialize, configure sink, execute). Tracing is
// off unless Init is called with an output file or an exporter.
package tracing
