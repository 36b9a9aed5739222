package model

// MaterialType identifies the material a loader is currently digging.
type MaterialType string

const (
	MaterialLimestone    MaterialType = "limestone"
	MaterialHGLS         MaterialType = "hgls"
	MaterialScreenReject MaterialType = "screen_reject"
	MaterialOverburden   MaterialType = "ob"
	MaterialTopsoil      MaterialType = "topsoil"
)

// TaskCategory classifies materials for dispatch eligibility. Only ROM
// materials may be assigned automatically; Waste and Development moves are
// created by explicit operator request.
type TaskCategory int

const (
	CategoryROM TaskCategory = iota
	CategoryWaste
	CategoryDevelopment
)

func (c TaskCategory) String() string {
	switch c {
	case CategoryROM:
		return "ROM"
	case CategoryWaste:
		return "Waste"
	case CategoryDevelopment:
		return "Development"
	default:
		return "unknown"
	}
}

// MaterialRoute describes where a material may be picked up and dropped.
type MaterialRoute struct {
	Material     MaterialType `json:"material"`
	Category     TaskCategory `json:"category"`
	Sources      []string     `json:"sources"`
	Destinations []string     `json:"destinations"`
	Description  string       `json:"description"`
}

// materialRoutes is the fixed routing table for the site. The first
// destination of each route is the default drop point for dispatch.
var materialRoutes = map[MaterialType]MaterialRoute{
	MaterialLimestone: {
		Material:     MaterialLimestone,
		Category:     CategoryROM,
		Sources:      []string{"Mines Blast Area X", "Mines Blast Area Y", "Mines Blast Area Z"},
		Destinations: []string{"Crusher 1", "Crusher 2"},
		Description:  "ROM - Limestone to Crusher",
	},
	MaterialHGLS: {
		Material:     MaterialHGLS,
		Category:     CategoryROM,
		Sources:      []string{"HGLS Stockyard 1", "HGLS Stockyard 2"},
		Destinations: []string{"Crusher 2", "Crusher 1"},
		Description:  "ROM - HGLS material to Crusher",
	},
	MaterialTopsoil: {
		Material:     MaterialTopsoil,
		Category:     CategoryDevelopment,
		Sources:      []string{"Fixed Topsoil Area"},
		Destinations: []string{"Mines Area", "Dumpyard"},
		Description:  "Development - Topsoil for bund creation",
	},
	MaterialOverburden: {
		Material:     MaterialOverburden,
		Category:     CategoryWaste,
		Sources:      []string{"Mines Blast Area X", "Mines Blast Area Y", "Mines Blast Area Z"},
		Destinations: []string{"Dumpyard", "Mines Area"},
		Description:  "Waste - Overburden to Dumpyard",
	},
	MaterialScreenReject: {
		Material:     MaterialScreenReject,
		Category:     CategoryWaste,
		Sources:      []string{"Screen Reject Area"},
		Destinations: []string{"Dumpyard"},
		Description:  "Waste - Screen reject to Dumpyard",
	},
}

// Category returns the task category of the material. Unknown materials are
// treated as Waste so they can never pass the automatic dispatch gate.
func (m MaterialType) Category() TaskCategory {
	if r, ok := materialRoutes[m]; ok {
		return r.Category
	}
	return CategoryWaste
}

// Route returns the routing rule for the material and whether it is known.
func (m MaterialType) Route() (MaterialRoute, bool) {
	r, ok := materialRoutes[m]
	return r, ok
}

// DefaultDestination returns the default drop zone for the material.
func (m MaterialType) DefaultDestination() string {
	if r, ok := materialRoutes[m]; ok && len(r.Destinations) > 0 {
		return r.Destinations[0]
	}
	return "Dumpyard"
}

// DispatchPriority returns the fixed priority weight used by the scoring
// engine. Only ROM materials score; everything else is manual-only.
func (m MaterialType) DispatchPriority() float64 {
	switch m {
	case MaterialLimestone:
		return 100
	case MaterialHGLS:
		return 90
	default:
		return 0
	}
}

// Routes returns the full routing table, ordered by material name.
func Routes() []MaterialRoute {
	out := make([]MaterialRoute, 0, len(materialRoutes))
	for _, m := range []MaterialType{MaterialLimestone, MaterialHGLS, MaterialTopsoil, MaterialOverburden, MaterialScreenReject} {
		out = append(out, materialRoutes[m])
	}
	return out
}
