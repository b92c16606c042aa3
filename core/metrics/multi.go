package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCommand forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordCommand(ev CommandEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordCommand(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordExtraction forwards extraction events to sinks supporting them.
func (m *MultiSink) RecordExtraction(ev ExtractionEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ExtractionRecorder); ok {
			if err := rec.RecordExtraction(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRepack forwards repack events to sinks supporting them.
func (m *MultiSink) RecordRepack(ev RepackEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RepackRecorder); ok {
			if err := rec.RecordRepack(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink exposing Close.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
