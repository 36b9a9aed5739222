package metrics

import coremetrics "github.com/pitops/minedispatch/core/metrics"

// MultiSink fans assignment records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignments forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAssignments(recs []coremetrics.AssignmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignments(recs); err != nil {
			return err
		}
	}
	return nil
}
