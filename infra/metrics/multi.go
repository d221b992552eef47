package metrics

import "github.com/kilianp07/solarace/core/simmetrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []simmetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...simmetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDay forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordDay(rec simmetrics.DayRecord) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordDay(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordRun forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(rec simmetrics.RunRecord) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordRun(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}
