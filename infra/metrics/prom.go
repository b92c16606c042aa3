package metrics

import (
	coremetrics "github.com/kilianp07/wheelsched/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records command processing in Prometheus metrics.
type PromSink struct {
	commands  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	shifted   prometheus.Counter
	duration  *prometheus.HistogramVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	return NewPromSinkWithOptions(reg, PromOptions{})
}

// PromOptions tunes metric names and histogram buckets.
type PromOptions struct {
	// Namespace prefixes every metric name, e.g. "wheelsched".
	Namespace string `json:"namespace"`
	// Buckets for command_duration_seconds; prometheus.DefBuckets when empty.
	Buckets []float64 `json:"buckets"`
}

// NewPromSinkWithOptions registers metrics on reg using opts.
func NewPromSinkWithOptions(reg prometheus.Registerer, opts PromOptions) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Name:      "commands_total",
		Help:      "Total number of processed schedule commands",
	}, []string{"intent", "source", "outcome"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Name:      "extraction_fallbacks_total",
		Help:      "Model extractions that fell back to the pattern strategy",
	}, []string{"reason"})
	shifted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: opts.Namespace,
		Name:      "repack_shifted_operations_total",
		Help:      "Operations of unnamed orders pushed by the machine repacker",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: opts.Namespace,
		Name:      "command_duration_seconds",
		Help:      "Time to extract, validate and apply a command",
		Buckets:   buckets,
	}, []string{"intent"})

	var err error
	if commands, err = register(reg, commands); err != nil {
		return nil, err
	}
	if fallbacks, err = register(reg, fallbacks); err != nil {
		return nil, err
	}
	if shifted, err = register(reg, shifted); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &PromSink{commands: commands, fallbacks: fallbacks, shifted: shifted, duration: duration}, nil
}

// register reuses an already registered collector of the same type.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordCommand counts the command and observes its duration.
func (s *PromSink) RecordCommand(ev coremetrics.CommandEvent) error {
	s.commands.WithLabelValues(ev.Intent, ev.Source, string(ev.Outcome)).Inc()
	s.duration.WithLabelValues(ev.Intent).Observe(ev.Duration.Seconds())
	return nil
}

// RecordExtraction counts fallbacks to the pattern strategy.
func (s *PromSink) RecordExtraction(ev coremetrics.ExtractionEvent) error {
	if ev.Fallback {
		s.fallbacks.WithLabelValues(fallbackReason(ev.Reason)).Inc()
	}
	return nil
}

// RecordRepack adds the number of collateral shifts.
func (s *PromSink) RecordRepack(ev coremetrics.RepackEvent) error {
	if ev.Shifted > 0 {
		s.shifted.Add(float64(ev.Shifted))
	}
	return nil
}

// fallbackReason keeps label cardinality bounded.
func fallbackReason(r string) string {
	switch r {
	case "timeout", "circuit_open", "no_credential", "malformed":
		return r
	default:
		return "error"
	}
}
