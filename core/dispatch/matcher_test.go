package dispatch

import (
	"reflect"
	"testing"

	"github.com/pitops/minedispatch/core/fleet"
	"github.com/pitops/minedispatch/core/model"
)

func defaultMatcher() Matcher {
	cfg := Config{}
	cfg.SetDefaults()
	return NewMatcher(cfg)
}

func TestEligibleLoaderGates(t *testing.T) {
	m := defaultMatcher()

	active := testLoader("EX-001", model.StatusActive, model.MaterialLimestone)
	if !m.eligibleLoader(active) {
		t.Errorf("active ROM loader should be eligible")
	}

	waste := testLoader("EX-002", model.StatusActive, model.MaterialOverburden)
	if m.eligibleLoader(waste) {
		t.Errorf("waste loader must never enter automatic dispatch")
	}

	dev := testLoader("EX-003", model.StatusActive, model.MaterialTopsoil)
	if m.eligibleLoader(dev) {
		t.Errorf("development loader must never enter automatic dispatch")
	}

	idleShort := testLoader("EX-004", model.StatusIdle, model.MaterialLimestone)
	idleShort.IdleTimeMinutes = 2
	if m.eligibleLoader(idleShort) {
		t.Errorf("loader idle exactly at the threshold should not be eligible")
	}
	idleShort.IdleTimeMinutes = 2.5
	if !m.eligibleLoader(idleShort) {
		t.Errorf("loader idle past the threshold should be eligible")
	}

	broken := testLoader("EX-005", model.StatusBreakdown, model.MaterialLimestone)
	if m.eligibleLoader(broken) {
		t.Errorf("broken loader should not be eligible")
	}
}

func TestEligibleHaulerGates(t *testing.T) {
	m := defaultMatcher()

	idle := testHauler("HD-101", model.StatusIdle)
	if !m.eligibleHauler(idle) {
		t.Errorf("idle hauler should be eligible")
	}

	busy := testHauler("HD-102", model.StatusActive)
	busy.AssignedLoaderID = "EX-001"
	if m.eligibleHauler(busy) {
		t.Errorf("working assigned hauler should not be eligible")
	}
	busy.WaitTimeMinutes = 3
	if m.eligibleHauler(busy) {
		t.Errorf("waiting exactly at the threshold should not make a hauler poachable")
	}
	busy.WaitTimeMinutes = 3.5
	if !m.eligibleHauler(busy) {
		t.Errorf("long-waiting hauler should be poachable")
	}

	unassigned := testHauler("HD-103", model.StatusActive)
	if !m.eligibleHauler(unassigned) {
		t.Errorf("unassigned hauler should be eligible regardless of status")
	}
}

func matchFleet() fleet.Snapshot {
	l1 := testLoader("EX-001", model.StatusActive, model.MaterialLimestone)
	l2 := testLoader("EX-002", model.StatusActive, model.MaterialHGLS)
	l2.Location = model.Position{Lat: 23.5229, Lng: 87.3164, Zone: "Bench-B"}
	l2.LoadingZone = "Bench-B"

	h1 := testHauler("HD-101", model.StatusIdle)
	h2 := testHauler("HD-102", model.StatusIdle)
	h2.Location = model.Position{Lat: 23.5228, Lng: 87.3160, Zone: "Bench-B"}
	h3 := testHauler("HD-103", model.StatusIdle)
	h3.WaitTimeMinutes = 4

	return fleet.Snapshot{Loaders: []model.Loader{l1, l2}, Haulers: []model.Hauler{h1, h2, h3}}
}

func TestMatchNoDoubleBooking(t *testing.T) {
	m := defaultMatcher()
	matches := m.Match(matchFleet())
	if len(matches) == 0 {
		t.Fatal("expected at least one match")
	}
	loaders := make(map[string]bool)
	haulers := make(map[string]bool)
	for _, c := range matches {
		if loaders[c.LoaderID] {
			t.Errorf("loader %s matched twice", c.LoaderID)
		}
		if haulers[c.HaulerID] {
			t.Errorf("hauler %s matched twice", c.HaulerID)
		}
		loaders[c.LoaderID] = true
		haulers[c.HaulerID] = true
	}
}

func TestMatchDeterministic(t *testing.T) {
	m := defaultMatcher()
	snap := matchFleet()
	first := m.Match(snap)
	for i := 0; i < 20; i++ {
		if got := m.Match(snap); !reflect.DeepEqual(got, first) {
			t.Fatalf("match round %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestMatchTieBreakIsLexicographic(t *testing.T) {
	// two identical loaders and two identical haulers: all four pairs carry
	// the same score, so the accepted set is decided by generation order
	l1 := testLoader("EX-001", model.StatusActive, model.MaterialLimestone)
	l2 := testLoader("EX-002", model.StatusActive, model.MaterialLimestone)
	h1 := testHauler("HD-101", model.StatusIdle)
	h2 := testHauler("HD-102", model.StatusIdle)
	snap := fleet.Snapshot{Loaders: []model.Loader{l2, l1}, Haulers: []model.Hauler{h2, h1}}

	m := defaultMatcher()
	// the matcher works on registry snapshots, which are id-ordered
	matches := m.Match(fleet.NewRegistry(snap).Snapshot())
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].LoaderID != "EX-001" || matches[0].HaulerID != "HD-101" {
		t.Errorf("first match should pair lowest ids, got %s/%s", matches[0].LoaderID, matches[0].HaulerID)
	}
	if matches[1].LoaderID != "EX-002" || matches[1].HaulerID != "HD-102" {
		t.Errorf("second match should pair remaining ids, got %s/%s", matches[1].LoaderID, matches[1].HaulerID)
	}
}

func TestMatchRespectsMaxMatches(t *testing.T) {
	m := defaultMatcher()
	m.MaxMatches = 1
	matches := m.Match(matchFleet())
	if len(matches) != 1 {
		t.Fatalf("expected 1 match with MaxMatches=1, got %d", len(matches))
	}
}

func TestMatchEmptyFleet(t *testing.T) {
	m := defaultMatcher()
	if matches := m.Match(fleet.Snapshot{}); len(matches) != 0 {
		t.Fatalf("expected no matches for empty fleet, got %d", len(matches))
	}
}
