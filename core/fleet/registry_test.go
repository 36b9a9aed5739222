package fleet

import (
	"testing"

	"github.com/pitops/minedispatch/core/model"
)

func seedSnapshot() Snapshot {
	return Snapshot{
		Loaders: []model.Loader{
			{
				Equipment:       model.Equipment{ID: "EX-002", Status: model.StatusIdle, LoadCapacityTons: 6.5},
				CurrentMaterial: model.MaterialLimestone,
			},
			{
				Equipment:         model.Equipment{ID: "EX-001", Status: model.StatusActive, LoadCapacityTons: 6.5},
				CurrentMaterial:   model.MaterialHGLS,
				AssignedHaulerIDs: []string{"HD-101"},
			},
		},
		Haulers: []model.Hauler{
			{Equipment: model.Equipment{ID: "HD-102", Status: model.StatusIdle, LoadCapacityTons: 40}},
			{
				Equipment:        model.Equipment{ID: "HD-101", Status: model.StatusActive, LoadCapacityTons: 40},
				AssignedLoaderID: "EX-001",
				WaitTimeMinutes:  3,
				ETAMinutes:       5,
			},
		},
	}
}

func TestSnapshotOrderedByID(t *testing.T) {
	r := NewRegistry(seedSnapshot())
	snap := r.Snapshot()
	if snap.Loaders[0].ID != "EX-001" || snap.Loaders[1].ID != "EX-002" {
		t.Errorf("loaders not id-ordered: %s, %s", snap.Loaders[0].ID, snap.Loaders[1].ID)
	}
	if snap.Haulers[0].ID != "HD-101" || snap.Haulers[1].ID != "HD-102" {
		t.Errorf("haulers not id-ordered: %s, %s", snap.Haulers[0].ID, snap.Haulers[1].ID)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := NewRegistry(seedSnapshot())
	snap := r.Snapshot()
	snap.Loaders[0].Status = model.StatusBreakdown
	snap.Loaders[0].AssignedHaulerIDs[0] = "mutated"

	l, _ := r.Loader("EX-001")
	if l.Status == model.StatusBreakdown {
		t.Errorf("snapshot mutation leaked into the registry")
	}
	if l.AssignedHaulerIDs[0] != "HD-101" {
		t.Errorf("link slice shared with snapshot")
	}
}

func TestUpdateReportsExistence(t *testing.T) {
	r := NewRegistry(seedSnapshot())
	if !r.UpdateLoader("EX-001", func(l *model.Loader) { l.Status = model.StatusIdle }) {
		t.Errorf("expected update of existing loader to succeed")
	}
	if r.UpdateLoader("EX-404", func(*model.Loader) {}) {
		t.Errorf("expected update of unknown loader to fail")
	}
	l, _ := r.Loader("EX-001")
	if l.Status != model.StatusIdle {
		t.Errorf("update not applied, status %s", l.Status)
	}
}

func TestKindResolution(t *testing.T) {
	r := NewRegistry(seedSnapshot())
	if k, ok := r.Kind("EX-001"); !ok || k != model.KindLoader {
		t.Errorf("expected loader kind, got %v %v", k, ok)
	}
	if k, ok := r.Kind("HD-102"); !ok || k != model.KindHauler {
		t.Errorf("expected hauler kind, got %v %v", k, ok)
	}
	if _, ok := r.Kind("ZZ-999"); ok {
		t.Errorf("unknown id must not resolve")
	}
}

func TestLinkedHaulers(t *testing.T) {
	r := NewRegistry(seedSnapshot())
	linked := r.LinkedHaulers("EX-001")
	if len(linked) != 1 || linked[0].ID != "HD-101" {
		t.Fatalf("expected HD-101 linked to EX-001, got %+v", linked)
	}
	if got := r.LinkedHaulers("EX-002"); len(got) != 0 {
		t.Fatalf("expected no linked haulers, got %+v", got)
	}
}

func TestActiveLoadersExcept(t *testing.T) {
	r := NewRegistry(seedSnapshot())
	active := r.ActiveLoadersExcept("EX-001")
	if len(active) != 0 {
		t.Fatalf("EX-002 is idle, expected none, got %+v", active)
	}
	r.UpdateLoader("EX-002", func(l *model.Loader) { l.Status = model.StatusActive })
	active = r.ActiveLoadersExcept("EX-001")
	if len(active) != 1 || active[0].ID != "EX-002" {
		t.Fatalf("expected EX-002, got %+v", active)
	}
}

func TestTickCounters(t *testing.T) {
	r := NewRegistry(seedSnapshot())
	r.Tick(2)

	idleLoader, _ := r.Loader("EX-002")
	if idleLoader.IdleTimeMinutes != 2 {
		t.Errorf("idle loader should accrue, got %f", idleLoader.IdleTimeMinutes)
	}
	activeLoader, _ := r.Loader("EX-001")
	if activeLoader.IdleTimeMinutes != 0 {
		t.Errorf("active loader idle time should reset, got %f", activeLoader.IdleTimeMinutes)
	}

	idleHauler, _ := r.Hauler("HD-102")
	if idleHauler.WaitTimeMinutes != 2 {
		t.Errorf("idle hauler should accrue wait, got %f", idleHauler.WaitTimeMinutes)
	}
	working, _ := r.Hauler("HD-101")
	if working.WaitTimeMinutes != 1 {
		t.Errorf("working hauler wait should decay, got %f", working.WaitTimeMinutes)
	}
	if working.ETAMinutes != 3 {
		t.Errorf("eta should count down, got %f", working.ETAMinutes)
	}

	// decay and countdown clamp at zero
	r.Tick(10)
	working, _ = r.Hauler("HD-101")
	if working.WaitTimeMinutes != 0 || working.ETAMinutes != 0 {
		t.Errorf("expected clamped counters, got wait %f eta %f", working.WaitTimeMinutes, working.ETAMinutes)
	}
}

func TestTickIgnoresNonPositiveElapsed(t *testing.T) {
	r := NewRegistry(seedSnapshot())
	r.Tick(0)
	r.Tick(-5)
	l, _ := r.Loader("EX-002")
	if l.IdleTimeMinutes != 0 {
		t.Errorf("non-positive elapsed must not move counters, got %f", l.IdleTimeMinutes)
	}
}

func TestApplyMergesTelemetry(t *testing.T) {
	r := NewRegistry(seedSnapshot())
	r.Apply(Snapshot{
		Loaders: []model.Loader{{
			Equipment: model.Equipment{
				ID: "EX-001", Status: model.StatusBreakdown,
				Location:         model.Position{Lat: 23.53, Lng: 87.32, Zone: "Bench-D"},
				Operator:         "new operator",
				LoadCapacityTons: 7,
			},
			LoadingZone:             "Bench-D",
			CycleRateMinutesPerLoad: 3.1,
		}},
		Haulers: []model.Hauler{{
			Equipment: model.Equipment{ID: "HD-301", Status: model.StatusIdle, LoadCapacityTons: 60},
		}},
	})

	l, _ := r.Loader("EX-001")
	if l.Location.Zone != "Bench-D" || l.Operator != "new operator" || l.LoadCapacityTons != 7 {
		t.Errorf("feed-owned fields not merged: %+v", l.Equipment)
	}
	if l.Status != model.StatusActive {
		t.Errorf("status is dispatch-owned and must not change, got %s", l.Status)
	}
	if len(l.AssignedHaulerIDs) != 1 {
		t.Errorf("assignment links are dispatch-owned, got %v", l.AssignedHaulerIDs)
	}

	// unknown equipment is inserted wholesale
	h, ok := r.Hauler("HD-301")
	if !ok {
		t.Fatal("new hauler not inserted")
	}
	if h.Kind != model.KindHauler {
		t.Errorf("inserted hauler kind not forced, got %s", h.Kind)
	}
}
