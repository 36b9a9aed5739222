package dispatch

import (
	"math"
	"strings"
	"testing"

	"github.com/pitops/minedispatch/core/model"
)

func testLoader(id string, status model.EquipmentStatus, material model.MaterialType) model.Loader {
	return model.Loader{
		Equipment: model.Equipment{
			ID: id, Kind: model.KindLoader, Status: status,
			Location:         model.Position{Lat: 23.5204, Lng: 87.3119, Zone: "Bench-A"},
			LoadCapacityTons: 6.5,
		},
		CurrentMaterial:         material,
		LoadingZone:             "Bench-A",
		CycleRateMinutesPerLoad: 2.8,
	}
}

func testHauler(id string, status model.EquipmentStatus) model.Hauler {
	return model.Hauler{
		Equipment: model.Equipment{
			ID: id, Kind: model.KindHauler, Status: status,
			Location:         model.Position{Lat: 23.5210, Lng: 87.3125, Zone: "Bench-A"},
			LoadCapacityTons: 40,
		},
	}
}

func defaultScorer() Scorer {
	cfg := Config{}
	cfg.SetDefaults()
	return NewScorer(cfg)
}

func TestHaversineZeroDistance(t *testing.T) {
	p := model.Position{Lat: 23.52, Lng: 87.31}
	if d := haversine(p, p); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	a := model.Position{Lat: 23.5204, Lng: 87.3119}
	b := model.Position{Lat: 23.5304, Lng: 87.3119}
	d := haversine(a, b)
	// one hundredth of a degree of latitude is roughly 1.11 km
	if math.Abs(d-1.112) > 0.01 {
		t.Fatalf("expected ~1.112 km, got %f", d)
	}
}

func TestEfficiencyZeroCycleTime(t *testing.T) {
	s := defaultScorer()
	l := testLoader("EX-001", model.StatusActive, model.MaterialLimestone)
	h := testHauler("HD-101", model.StatusIdle)
	if eff := s.efficiency(l, h, 0); eff != 0 {
		t.Fatalf("expected zero efficiency for zero cycle time, got %f", eff)
	}
	if eff := s.efficiency(l, h, -1); eff != 0 {
		t.Fatalf("expected zero efficiency for negative cycle time, got %f", eff)
	}
}

func TestEfficiencyCapsUtilisation(t *testing.T) {
	s := defaultScorer()
	l := testLoader("EX-001", model.StatusActive, model.MaterialLimestone)
	small := testHauler("HD-101", model.StatusIdle)
	small.LoadCapacityTons = l.LoadCapacityTons / 2
	big := testHauler("HD-102", model.StatusIdle)
	big.LoadCapacityTons = l.LoadCapacityTons * 10

	cycle := 20.0
	if got, want := s.efficiency(l, small, cycle), 0.5*(60/cycle)*100; math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
	// an oversized hauler does not score above full utilisation
	if got, want := s.efficiency(l, big, cycle), (60/cycle)*100; math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestCycleTimeIncludesBothLegs(t *testing.T) {
	s := defaultScorer()
	l := testLoader("EX-001", model.StatusActive, model.MaterialLimestone)
	loading := l.LoadCapacityTons / l.CycleRateMinutesPerLoad
	want := 2*s.travelTimeMinutes(10) + loading + s.DumpTimeMinutes
	if got := s.cycleTimeMinutes(l, 10); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestCycleTimeZeroCycleRate(t *testing.T) {
	s := defaultScorer()
	l := testLoader("EX-001", model.StatusActive, model.MaterialLimestone)
	l.CycleRateMinutesPerLoad = 0
	want := 2*s.travelTimeMinutes(5) + s.DumpTimeMinutes
	if got := s.cycleTimeMinutes(l, 5); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected loading time to drop out, want %f got %f", want, got)
	}
}

func TestScoreIdleAndWaitBonuses(t *testing.T) {
	s := defaultScorer()
	l := testLoader("EX-001", model.StatusIdle, model.MaterialLimestone)
	l.IdleTimeMinutes = 10
	h := testHauler("HD-101", model.StatusIdle)
	h.WaitTimeMinutes = 4

	base := s.Score(testLoader("EX-001", model.StatusActive, model.MaterialLimestone), testHauler("HD-101", model.StatusIdle))
	boosted := s.Score(l, h)
	want := base.Score + 10*s.IdleBonusPerMinute + 4*s.WaitBonusPerMinute
	if math.Abs(boosted.Score-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, boosted.Score)
	}
}

func TestScoreMaterialMatchBonus(t *testing.T) {
	s := defaultScorer()
	l := testLoader("EX-001", model.StatusActive, model.MaterialLimestone)
	h := testHauler("HD-101", model.StatusIdle)
	without := s.Score(l, h)
	h.Material = model.MaterialLimestone
	with := s.Score(l, h)
	if math.Abs(with.Score-without.Score-s.MaterialMatchBonus) > 1e-9 {
		t.Fatalf("expected material match to add %f, got delta %f", s.MaterialMatchBonus, with.Score-without.Score)
	}
}

func TestScoreNeverNegative(t *testing.T) {
	s := defaultScorer()
	l := testLoader("EX-001", model.StatusActive, model.MaterialOverburden)
	h := testHauler("HD-101", model.StatusIdle)
	// push the hauler ~100 km away so the distance penalty dominates
	h.Location = model.Position{Lat: 24.5, Lng: 87.31}
	c := s.Score(l, h)
	if c.Score != 0 {
		t.Fatalf("expected floored score of 0, got %f", c.Score)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := defaultScorer()
	l := testLoader("EX-001", model.StatusIdle, model.MaterialLimestone)
	l.IdleTimeMinutes = 7
	h := testHauler("HD-101", model.StatusIdle)
	h.WaitTimeMinutes = 6
	first := s.Score(l, h)
	for i := 0; i < 10; i++ {
		if got := s.Score(l, h); got != first {
			t.Fatalf("score changed between runs: %+v vs %+v", first, got)
		}
	}
}

func TestReasonParts(t *testing.T) {
	s := defaultScorer()
	l := testLoader("EX-001", model.StatusIdle, model.MaterialLimestone)
	l.IdleTimeMinutes = 8
	h := testHauler("HD-101", model.StatusIdle)
	h.WaitTimeMinutes = 9

	c := s.Score(l, h)
	for _, want := range []string{"loader idle for 8min", "hauler waiting 9min", "close proximity", "priority material"} {
		if !strings.Contains(c.Reason, want) {
			t.Errorf("reason %q missing %q", c.Reason, want)
		}
	}
}

func TestReasonDefault(t *testing.T) {
	s := defaultScorer()
	l := testLoader("EX-001", model.StatusActive, model.MaterialHGLS)
	h := testHauler("HD-101", model.StatusIdle)
	// far enough that neither proximity nor efficiency clears its threshold
	h.Location = model.Position{Lat: 23.70, Lng: 87.3119}
	c := s.Score(l, h)
	if c.Reason != "standard assignment" {
		t.Fatalf("expected default reason, got %q", c.Reason)
	}
}
