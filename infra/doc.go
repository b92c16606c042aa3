// Package infra holds the adapters around the schedule engine: CSV dataset
// loading, the zerolog logger, Prometheus and InfluxDB metrics sinks, the
// MQTT change notifier and Sentry error reporting. They depend on the
// interfaces in core, never the other way round.
package infra
