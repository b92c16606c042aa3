package metrics

import "github.com/kilianp07/wheelsched/core/factory"

// Config lists the metrics sinks to build and the port serving /metrics.
// An empty PrometheusPort leaves the endpoint off even with a prometheus sink.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	PrometheusPort string                 `json:"prometheus_port" yaml:"prometheus_port"`
}
