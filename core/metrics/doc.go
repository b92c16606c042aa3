// Package metrics defines the events emitted while commands are processed and
// the sinks that record them. Sinks like PromSink and InfluxSink live in
// infra/metrics and register themselves with the factory helpers here, which
// return a MultiSink automatically when several sinks are configured.
package metrics
