// Package metrics defines the sinks that observe planning activity. Sinks
// record plan runs and, optionally, session status changes. PromSink and
// InfluxSink live in infra/metrics and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
