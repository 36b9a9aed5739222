// Package simulator provides a canned fleet roster for demos and local
// development, used when no telemetry feed is configured.
package simulator

import (
	"github.com/pitops/minedispatch/core/fleet"
	"github.com/pitops/minedispatch/core/model"
)

// DemoFleet returns a representative open-pit roster: four loading units
// across the active benches and eight haulers in assorted states.
func DemoFleet() fleet.Snapshot {
	return fleet.Snapshot{
		Loaders: []model.Loader{
			{
				Equipment: model.Equipment{
					ID: "EX-001", Kind: model.KindLoader, Status: model.StatusActive,
					Location:         model.Position{Lat: 23.5204, Lng: 87.3119, Zone: "Bench-A"},
					Operator:         "R. Mahato",
					CycleTimeMinutes: 18,
					LoadCapacityTons: 6.5,
				},
				CurrentMaterial:         model.MaterialLimestone,
				LoadingZone:             "Bench-A",
				CycleRateMinutesPerLoad: 2.8,
			},
			{
				Equipment: model.Equipment{
					ID: "EX-002", Kind: model.KindLoader, Status: model.StatusActive,
					Location:         model.Position{Lat: 23.5229, Lng: 87.3164, Zone: "Bench-B"},
					Operator:         "S. Hembram",
					CycleTimeMinutes: 20,
					LoadCapacityTons: 6.5,
				},
				CurrentMaterial:         model.MaterialHGLS,
				LoadingZone:             "Bench-B",
				CycleRateMinutesPerLoad: 3.0,
			},
			{
				Equipment: model.Equipment{
					ID: "EX-003", Kind: model.KindLoader, Status: model.StatusIdle,
					Location:         model.Position{Lat: 23.5187, Lng: 87.3092, Zone: "Bench-C"},
					Operator:         "P. Soren",
					CycleTimeMinutes: 22,
					LoadCapacityTons: 6.0,
				},
				CurrentMaterial:         model.MaterialLimestone,
				LoadingZone:             "Bench-C",
				IdleTimeMinutes:         4,
				CycleRateMinutesPerLoad: 3.2,
			},
			{
				Equipment: model.Equipment{
					ID: "EX-004", Kind: model.KindLoader, Status: model.StatusMaintenance,
					Location:         model.Position{Lat: 23.5251, Lng: 87.3200, Zone: "Workshop"},
					Operator:         "unassigned",
					LoadCapacityTons: 6.0,
				},
				CurrentMaterial:         model.MaterialOverburden,
				LoadingZone:             "Workshop",
				CycleRateMinutesPerLoad: 2.7,
			},
		},
		Haulers: []model.Hauler{
			demoHauler("HD-101", model.StatusIdle, 23.5210, 87.3125, "Bench-A", "A. Kisku", 0, 6),
			demoHauler("HD-102", model.StatusIdle, 23.5198, 87.3101, "Bench-C", "M. Tudu", 0, 2),
			demoHauler("HD-103", model.StatusActive, 23.5240, 87.3178, "Haul Road 2", "J. Murmu", 12, 0),
			demoHauler("HD-104", model.StatusIdle, 23.5225, 87.3150, "Bench-B", "D. Marandi", 0, 8),
			demoHauler("HD-105", model.StatusActive, 23.5170, 87.3080, "Crusher 1", "K. Baskey", 5, 0),
			demoHauler("HD-106", model.StatusIdle, 23.5215, 87.3135, "Parking Bay", "T. Hansda", 0, 1),
			demoHauler("HD-107", model.StatusMaintenance, 23.5252, 87.3205, "Workshop", "unassigned", 0, 0),
			demoHauler("HD-108", model.StatusIdle, 23.5190, 87.3110, "Bench-C", "B. Besra", 0, 4),
		},
	}
}

func demoHauler(id string, status model.EquipmentStatus, lat, lng float64, zone, operator string, eta, wait float64) model.Hauler {
	h := model.Hauler{
		Equipment: model.Equipment{
			ID: id, Kind: model.KindHauler, Status: status,
			Location:         model.Position{Lat: lat, Lng: lng, Zone: zone},
			Operator:         operator,
			CycleTimeMinutes: 28,
			LoadCapacityTons: 40,
		},
		LoadStatus:      model.LoadEmpty,
		ETAMinutes:      eta,
		WaitTimeMinutes: wait,
	}
	if status == model.StatusActive {
		h.LoadStatus = model.LoadLoaded
	}
	return h
}
