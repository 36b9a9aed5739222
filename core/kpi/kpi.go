// Package kpi computes fleet-level performance indicators from a registry
// snapshot. These are read models for the caller; nothing here feeds back
// into dispatch decisions.
package kpi

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pitops/minedispatch/core/fleet"
	"github.com/pitops/minedispatch/core/model"
)

// FleetMetrics summarises fleet health for the operations dashboard.
type FleetMetrics struct {
	UtilizationPercent       float64 `json:"utilization_percent"`
	AvgCycleTimeMinutes      float64 `json:"avg_cycle_time_minutes"`
	TotalIdleMinutes         float64 `json:"total_idle_minutes"`
	IdleTimeReductionPercent float64 `json:"idle_time_reduction_percent"`
	FuelSavingsPercent       float64 `json:"fuel_savings_percent"`
	OpenAssignments          int     `json:"open_assignments"`
}

// fuel savings cap, as a fraction of the idle-time reduction
const maxFuelSavingsPercent = 15

// Compute derives the fleet metrics from the snapshot and assignment list.
func Compute(snap fleet.Snapshot, assignments []model.Assignment) FleetMetrics {
	total := len(snap.Loaders) + len(snap.Haulers)
	if total == 0 {
		return FleetMetrics{}
	}

	active := 0
	var cycles []float64
	var idle float64
	for _, l := range snap.Loaders {
		if l.Status == model.StatusActive {
			active++
		}
		if l.CycleTimeMinutes > 0 {
			cycles = append(cycles, l.CycleTimeMinutes)
		}
		idle += l.IdleTimeMinutes
	}
	for _, h := range snap.Haulers {
		if h.Status == model.StatusActive {
			active++
		}
		if h.CycleTimeMinutes > 0 {
			cycles = append(cycles, h.CycleTimeMinutes)
		}
		idle += h.WaitTimeMinutes
	}

	open := 0
	for _, a := range assignments {
		if a.Open() {
			open++
		}
	}

	avgCycle := 0.0
	if len(cycles) > 0 {
		avgCycle = stat.Mean(cycles, nil)
	}
	reduction := 100 - idle/float64(total)
	if reduction < 0 {
		reduction = 0
	}
	return FleetMetrics{
		UtilizationPercent:       float64(active) / float64(total) * 100,
		AvgCycleTimeMinutes:      avgCycle,
		TotalIdleMinutes:         idle,
		IdleTimeReductionPercent: reduction,
		FuelSavingsPercent:       reduction / 100 * maxFuelSavingsPercent,
		OpenAssignments:          open,
	}
}
