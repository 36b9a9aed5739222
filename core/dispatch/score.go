package dispatch

import (
	"fmt"
	"math"
	"strings"

	"github.com/pitops/minedispatch/core/model"
)

const earthRadiusKm = 6371

// Candidate is a scored, not-yet-committed loader/hauler pairing.
type Candidate struct {
	LoaderID              string  `json:"loader_id"`
	HaulerID              string  `json:"hauler_id"`
	Score                 float64 `json:"score"`
	EstimatedCycleMinutes float64 `json:"estimated_cycle_minutes"`
	Efficiency            float64 `json:"efficiency"`
	DistanceKm            float64 `json:"distance_km"`
	Reason                string  `json:"reason"`
}

// Scorer computes priority scores for loader/hauler pairs using a weighted
// sum of efficiency, material priority, fairness bonuses and a distance
// penalty. The weights can be tuned per site.
type Scorer struct {
	EfficiencyWeight   float64
	MaterialWeight     float64
	IdleBonusPerMinute float64
	WaitBonusPerMinute float64
	DistancePenalty    float64
	MaterialMatchBonus float64
	AverageSpeedKmh    float64
	DumpTimeMinutes    float64
}

// NewScorer returns a scorer with the reference weights.
func NewScorer(cfg Config) Scorer {
	return Scorer{
		EfficiencyWeight:   0.4,
		MaterialWeight:     0.3,
		IdleBonusPerMinute: 2,
		WaitBonusPerMinute: 1.5,
		DistancePenalty:    5,
		MaterialMatchBonus: 20,
		AverageSpeedKmh:    cfg.AverageSpeedKmh,
		DumpTimeMinutes:    cfg.DumpTimeMinutes,
	}
}

// haversine returns the great-circle distance between two positions in km.
func haversine(a, b model.Position) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func (s Scorer) travelTimeMinutes(distanceKm float64) float64 {
	return distanceKm / s.AverageSpeedKmh * 60
}

// cycleTimeMinutes estimates one full load-haul-dump round trip.
func (s Scorer) cycleTimeMinutes(l model.Loader, distanceKm float64) float64 {
	loading := 0.0
	if l.CycleRateMinutesPerLoad > 0 {
		loading = l.LoadCapacityTons / l.CycleRateMinutesPerLoad
	}
	return 2*s.travelTimeMinutes(distanceKm) + loading + s.DumpTimeMinutes
}

// efficiency rates capacity utilisation against cycles per hour, on a 0-100
// scale. A zero or negative cycle time short-circuits to 0.
func (s Scorer) efficiency(l model.Loader, h model.Hauler, cycleMinutes float64) float64 {
	if cycleMinutes <= 0 || l.LoadCapacityTons <= 0 {
		return 0
	}
	utilisation := math.Min(h.LoadCapacityTons/l.LoadCapacityTons, 1)
	return utilisation * (60 / cycleMinutes) * 100
}

// Score rates one loader/hauler pair. Both units must already have passed
// the matcher's eligibility filter.
func (s Scorer) Score(l model.Loader, h model.Hauler) Candidate {
	distance := haversine(l.Location, h.Location)
	cycle := s.cycleTimeMinutes(l, distance)
	eff := s.efficiency(l, h, cycle)

	score := eff*s.EfficiencyWeight + l.CurrentMaterial.DispatchPriority()*s.MaterialWeight
	if l.Status == model.StatusIdle {
		score += l.IdleTimeMinutes * s.IdleBonusPerMinute
	}
	if h.WaitTimeMinutes > 0 {
		score += h.WaitTimeMinutes * s.WaitBonusPerMinute
	}
	score -= distance * s.DistancePenalty
	if h.Material != "" && h.Material == l.CurrentMaterial {
		score += s.MaterialMatchBonus
	}
	if score < 0 {
		score = 0
	}

	return Candidate{
		LoaderID:              l.ID,
		HaulerID:              h.ID,
		Score:                 score,
		EstimatedCycleMinutes: cycle,
		Efficiency:            eff,
		DistanceKm:            distance,
		Reason:                s.reason(l, h, distance, eff),
	}
}

// reason concatenates the contributing factors that exceed fixed thresholds.
// The order is fixed so identical inputs always yield the same string.
func (s Scorer) reason(l model.Loader, h model.Hauler, distance, efficiency float64) string {
	var parts []string
	if l.Status == model.StatusIdle && l.IdleTimeMinutes > 5 {
		parts = append(parts, fmt.Sprintf("loader idle for %.0fmin", l.IdleTimeMinutes))
	}
	if h.WaitTimeMinutes > 5 {
		parts = append(parts, fmt.Sprintf("hauler waiting %.0fmin", h.WaitTimeMinutes))
	}
	if distance < 2 {
		parts = append(parts, "close proximity")
	}
	if efficiency > 80 {
		parts = append(parts, "high efficiency match")
	}
	if l.CurrentMaterial == model.MaterialLimestone {
		parts = append(parts, "priority material")
	}
	if len(parts) == 0 {
		return "standard assignment"
	}
	return strings.Join(parts, ", ")
}
