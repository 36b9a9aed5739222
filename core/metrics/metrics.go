package metrics

import (
	"time"

	"github.com/pitops/minedispatch/core/model"
)

// AssignmentRecord represents one committed assignment to be recorded.
type AssignmentRecord struct {
	AssignmentID          string
	LoaderID              string
	HaulerID              string
	Material              model.MaterialType
	Priority              model.AssignmentPriority
	Score                 float64
	Efficiency            float64
	EstimatedCycleMinutes float64
	DistanceKm            float64
	Auto                  bool
	Timestamp             time.Time
}

// MetricsSink records committed assignments for observability purposes.
type MetricsSink interface {
	RecordAssignments(records []AssignmentRecord) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordAssignments implements MetricsSink.
func (NopSink) RecordAssignments([]AssignmentRecord) error { return nil }
