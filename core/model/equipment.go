package model

// EquipmentKind discriminates the two equipment roles in the fleet.
type EquipmentKind int

const (
	KindLoader EquipmentKind = iota
	KindHauler
)

// String returns a human-readable representation of the equipment kind.
func (k EquipmentKind) String() string {
	switch k {
	case KindLoader:
		return "loader"
	case KindHauler:
		return "hauler"
	default:
		return "unknown"
	}
}

// EquipmentStatus defines the operational state of a unit.
type EquipmentStatus int

const (
	StatusActive EquipmentStatus = iota
	StatusIdle
	StatusMaintenance
	StatusBreakdown
)

func (s EquipmentStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusIdle:
		return "idle"
	case StatusMaintenance:
		return "maintenance"
	case StatusBreakdown:
		return "breakdown"
	default:
		return "unknown"
	}
}

// ParseEquipmentStatus converts a wire string into an EquipmentStatus.
// Unrecognised values map to StatusIdle so a partial telemetry feed never
// promotes a unit into work.
func ParseEquipmentStatus(s string) EquipmentStatus {
	switch s {
	case "active":
		return StatusActive
	case "maintenance":
		return StatusMaintenance
	case "breakdown":
		return StatusBreakdown
	default:
		return StatusIdle
	}
}

// LoadStatus tracks where a hauler is in its load-haul-dump cycle.
type LoadStatus int

const (
	LoadEmpty LoadStatus = iota
	LoadLoading
	LoadLoaded
	LoadDumping
)

func (s LoadStatus) String() string {
	switch s {
	case LoadEmpty:
		return "empty"
	case LoadLoading:
		return "loading"
	case LoadLoaded:
		return "loaded"
	case LoadDumping:
		return "dumping"
	default:
		return "unknown"
	}
}

// Position is a GPS coordinate with the zone it falls in.
type Position struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zone string  `json:"zone"`
}

// Equipment holds the fields shared by loaders and haulers. Kind-specific
// data lives on the Loader and Hauler variants embedding it.
type Equipment struct {
	ID               string          `json:"id"`
	Kind             EquipmentKind   `json:"kind"`
	Status           EquipmentStatus `json:"status"`
	Location         Position        `json:"location"`
	Operator         string          `json:"operator"`
	CycleTimeMinutes float64         `json:"cycle_time_minutes"`
	LoadCapacityTons float64         `json:"load_capacity_tons"`
}

// Loader is a loading unit (excavator). It may feed several haulers at once.
type Loader struct {
	Equipment
	CurrentMaterial         MaterialType `json:"current_material"`
	LoadingZone             string       `json:"loading_zone"`
	AssignedHaulerIDs       []string     `json:"assigned_hauler_ids"`
	IdleTimeMinutes         float64      `json:"idle_time_minutes"`
	CycleRateMinutesPerLoad float64      `json:"cycle_rate_minutes_per_load"`
}

// HasHauler reports whether the hauler id is already linked to the loader.
func (l Loader) HasHauler(id string) bool {
	for _, h := range l.AssignedHaulerIDs {
		if h == id {
			return true
		}
	}
	return false
}

// Hauler is a hauling unit (dumper). It is linked to at most one loader.
type Hauler struct {
	Equipment
	LoadStatus       LoadStatus   `json:"load_status"`
	AssignedLoaderID string       `json:"assigned_loader_id,omitempty"`
	DestinationZone  string       `json:"destination_zone,omitempty"`
	Material         MaterialType `json:"material,omitempty"`
	ETAMinutes       float64      `json:"eta_minutes,omitempty"`
	WaitTimeMinutes  float64      `json:"wait_time_minutes"`
}

// Unavailable reports whether the unit is blocked for any assignment.
func (e Equipment) Unavailable() bool {
	return e.Status == StatusBreakdown || e.Status == StatusMaintenance
}
