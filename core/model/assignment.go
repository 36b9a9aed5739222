package model

import "time"

// AssignmentPriority ranks committed assignments.
type AssignmentPriority int

const (
	PriorityLow AssignmentPriority = iota
	PriorityNormal
	PriorityHigh
)

func (p AssignmentPriority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// AssignmentStatus tracks the lifecycle of a committed assignment.
type AssignmentStatus int

const (
	AssignmentAssigned AssignmentStatus = iota
	AssignmentInProgress
	AssignmentCompleted
)

func (s AssignmentStatus) String() string {
	switch s {
	case AssignmentAssigned:
		return "assigned"
	case AssignmentInProgress:
		return "in_progress"
	case AssignmentCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Assignment links one hauler to one loader for a material move. Equipment is
// referenced by id only; deleting an assignment never touches the equipment
// records themselves.
type Assignment struct {
	ID              string             `json:"id"`
	HaulerID        string             `json:"hauler_id"`
	LoaderID        string             `json:"loader_id"`
	Priority        AssignmentPriority `json:"priority"`
	Status          AssignmentStatus   `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	Material        MaterialType       `json:"material"`
	SourceZone      string             `json:"source_zone"`
	DestinationZone string             `json:"destination_zone"`
}

// Open reports whether the assignment still occupies its hauler.
func (a Assignment) Open() bool {
	return a.Status != AssignmentCompleted
}
