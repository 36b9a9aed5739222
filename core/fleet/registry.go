// Package fleet owns the live equipment records. The registry is the single
// source of truth for equipment status and idle/wait counters; everything
// else references equipment by id only.
package fleet

import (
	"sort"
	"sync"

	"github.com/pitops/minedispatch/core/model"
)

// Snapshot is a point-in-time copy of the fleet, safe for callers to keep.
type Snapshot struct {
	Loaders []model.Loader `json:"loaders"`
	Haulers []model.Hauler `json:"haulers"`
}

// Registry holds the current state of all loaders and haulers.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]*model.Loader
	haulers map[string]*model.Hauler
}

// NewRegistry builds a registry from an initial fleet snapshot.
func NewRegistry(snap Snapshot) *Registry {
	r := &Registry{
		loaders: make(map[string]*model.Loader, len(snap.Loaders)),
		haulers: make(map[string]*model.Hauler, len(snap.Haulers)),
	}
	for _, l := range snap.Loaders {
		l.Kind = model.KindLoader
		cp := l
		cp.AssignedHaulerIDs = append([]string(nil), l.AssignedHaulerIDs...)
		r.loaders[l.ID] = &cp
	}
	for _, h := range snap.Haulers {
		h.Kind = model.KindHauler
		cp := h
		r.haulers[h.ID] = &cp
	}
	return r
}

func copyLoader(l *model.Loader) model.Loader {
	cp := *l
	cp.AssignedHaulerIDs = append([]string(nil), l.AssignedHaulerIDs...)
	return cp
}

// Snapshot returns a deep copy of the fleet ordered by equipment id.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := Snapshot{
		Loaders: make([]model.Loader, 0, len(r.loaders)),
		Haulers: make([]model.Hauler, 0, len(r.haulers)),
	}
	for _, l := range r.loaders {
		snap.Loaders = append(snap.Loaders, copyLoader(l))
	}
	for _, h := range r.haulers {
		snap.Haulers = append(snap.Haulers, *h)
	}
	sort.Slice(snap.Loaders, func(i, j int) bool { return snap.Loaders[i].ID < snap.Loaders[j].ID })
	sort.Slice(snap.Haulers, func(i, j int) bool { return snap.Haulers[i].ID < snap.Haulers[j].ID })
	return snap
}

// Loader returns a copy of the loader with the given id.
func (r *Registry) Loader(id string) (model.Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[id]
	if !ok {
		return model.Loader{}, false
	}
	return copyLoader(l), true
}

// Hauler returns a copy of the hauler with the given id.
func (r *Registry) Hauler(id string) (model.Hauler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.haulers[id]
	if !ok {
		return model.Hauler{}, false
	}
	return *h, true
}

// Kind resolves which role an equipment id belongs to.
func (r *Registry) Kind(id string) (model.EquipmentKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.loaders[id]; ok {
		return model.KindLoader, true
	}
	if _, ok := r.haulers[id]; ok {
		return model.KindHauler, true
	}
	return 0, false
}

// UpdateLoader applies fn to the loader under the write lock. It reports
// whether the loader exists.
func (r *Registry) UpdateLoader(id string, fn func(*model.Loader)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loaders[id]
	if !ok {
		return false
	}
	fn(l)
	return true
}

// UpdateHauler applies fn to the hauler under the write lock. It reports
// whether the hauler exists.
func (r *Registry) UpdateHauler(id string, fn func(*model.Hauler)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.haulers[id]
	if !ok {
		return false
	}
	fn(h)
	return true
}

// LinkedHaulers returns copies of all haulers currently linked to the loader,
// ordered by id.
func (r *Registry) LinkedHaulers(loaderID string) []model.Hauler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Hauler
	for _, h := range r.haulers {
		if h.AssignedLoaderID == loaderID {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActiveLoadersExcept returns copies of all Active loaders other than the
// excluded id, ordered by id. Used for breakdown redistribution.
func (r *Registry) ActiveLoadersExcept(exclude string) []model.Loader {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Loader
	for _, l := range r.loaders {
		if l.ID != exclude && l.Status == model.StatusActive {
			out = append(out, copyLoader(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tick advances the time-dependent counters by the given number of minutes.
// Idle loaders accrue idle time, anything else resets to zero. Idle haulers
// accrue wait time, working haulers decay it toward zero, and ETAs count
// down until cleared.
func (r *Registry) Tick(minutes float64) {
	if minutes <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.loaders {
		if l.Status == model.StatusIdle {
			l.IdleTimeMinutes += minutes
		} else {
			l.IdleTimeMinutes = 0
		}
	}
	for _, h := range r.haulers {
		if h.Status == model.StatusIdle {
			h.WaitTimeMinutes += minutes
		} else if h.WaitTimeMinutes > 0 {
			h.WaitTimeMinutes -= minutes
			if h.WaitTimeMinutes < 0 {
				h.WaitTimeMinutes = 0
			}
		}
		if h.ETAMinutes > 0 {
			h.ETAMinutes -= minutes
			if h.ETAMinutes < 0 {
				h.ETAMinutes = 0
			}
		}
	}
}

// Apply merges a telemetry refresh into the registry. Positions, operators,
// cycle rates and capacities come from the feed; status, counters and
// assignment links stay dispatch-owned. Unknown equipment is inserted as-is.
func (r *Registry) Apply(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range snap.Loaders {
		in.Kind = model.KindLoader
		if l, ok := r.loaders[in.ID]; ok {
			l.Location = in.Location
			l.Operator = in.Operator
			l.CycleTimeMinutes = in.CycleTimeMinutes
			l.LoadCapacityTons = in.LoadCapacityTons
			l.CycleRateMinutesPerLoad = in.CycleRateMinutesPerLoad
			l.LoadingZone = in.LoadingZone
			continue
		}
		cp := in
		cp.AssignedHaulerIDs = append([]string(nil), in.AssignedHaulerIDs...)
		r.loaders[in.ID] = &cp
	}
	for _, in := range snap.Haulers {
		in.Kind = model.KindHauler
		if h, ok := r.haulers[in.ID]; ok {
			h.Location = in.Location
			h.Operator = in.Operator
			h.CycleTimeMinutes = in.CycleTimeMinutes
			h.LoadCapacityTons = in.LoadCapacityTons
			continue
		}
		cp := in
		r.haulers[in.ID] = &cp
	}
}
