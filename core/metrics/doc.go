// Package metrics defines sinks recording pipeline observations. PromSink
// in infra/metrics exports them to Prometheus; sinks can be combined with
// NewMultiSink.
package metrics
