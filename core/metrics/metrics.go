package metrics

import "time"

// Outcome labels the fate of a submitted command.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeRejected Outcome = "rejected"
)

// CommandEvent describes one processed command.
type CommandEvent struct {
	CommandID string
	Intent    string
	Source    string
	Outcome   Outcome
	Reason    string
	Duration  time.Duration
	Time      time.Time
}

// MetricsSink records processed commands for observability purposes.
type MetricsSink interface {
	RecordCommand(ev CommandEvent) error
}

// ExtractionEvent captures which strategy produced a payload.
type ExtractionEvent struct {
	Source string
	// Fallback is true when the model strategy failed and patterns were used.
	Fallback bool
	Reason   string
	Latency  time.Duration
	Time     time.Time
}

// ExtractionRecorder records extraction events.
type ExtractionRecorder interface {
	RecordExtraction(ev ExtractionEvent) error
}

// RepackEvent summarises the collateral shifts caused by an applied command.
type RepackEvent struct {
	CommandID string
	Intent    string
	Machines  []string
	Shifted   int
	MaxOffset time.Duration
	Time      time.Time
}

// RepackRecorder records repack events.
type RepackRecorder interface {
	RecordRepack(ev RepackEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordCommand(CommandEvent) error       { return nil }
func (NopSink) RecordExtraction(ExtractionEvent) error { return nil }
func (NopSink) RecordRepack(RepackEvent) error         { return nil }
