// Package events defines the typed payloads published on the internal bus.
package events

import "github.com/pitops/minedispatch/core/model"

// AssignmentCreated is published for every committed assignment.
type AssignmentCreated struct {
	Assignment model.Assignment
	Score      float64
	Auto       bool
}

// AssignmentRemoved is published when an assignment is deleted and its
// hauler released.
type AssignmentRemoved struct {
	Assignment model.Assignment
}

// BreakdownReported is published when equipment enters the Breakdown state.
// Reassigned lists the haulers redistributed away from a broken loader.
type BreakdownReported struct {
	EquipmentID string
	Kind        model.EquipmentKind
	Reassigned  map[string]string // hauler id -> new loader id
}

// AlertRaised is published whenever the alert manager records an alert.
type AlertRaised struct {
	Alert model.Alert
}

// MaterialChanged is published when a loader switches material.
type MaterialChanged struct {
	LoaderID string
	Material model.MaterialType
}
