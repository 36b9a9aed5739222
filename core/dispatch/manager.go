package dispatch

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pitops/minedispatch/core/alert"
	"github.com/pitops/minedispatch/core/events"
	"github.com/pitops/minedispatch/core/fleet"
	"github.com/pitops/minedispatch/core/logger"
	coremetrics "github.com/pitops/minedispatch/core/metrics"
	"github.com/pitops/minedispatch/core/model"
	"github.com/pitops/minedispatch/internal/eventbus"
)

// Manager is the dispatch engine command surface. All mutating commands and
// the clock tick are serialized through a single mutex: they perform
// read-modify-write sequences over the registry and the assignment set, and
// external readers must only ever observe completed operations.
type Manager struct {
	registry *fleet.Registry
	alerts   *alert.Manager
	matcher  Matcher
	cfg      Config
	logger   logger.Logger
	metrics  coremetrics.MetricsSink
	bus      eventbus.EventBus

	mu          sync.Mutex
	assignments map[string]model.Assignment
	now         func() time.Time
	newID       func() string
}

// NewManager creates a dispatch manager bound to the given registry and
// alert store. A nil sink disables assignment recording.
func NewManager(reg *fleet.Registry, alerts *alert.Manager, cfg Config, sink coremetrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Manager, error) {
	if reg == nil || alerts == nil || log == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewManager")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dispatch config: %w", err)
	}
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Manager{
		registry:    reg,
		alerts:      alerts,
		matcher:     NewMatcher(cfg),
		cfg:         cfg,
		logger:      log,
		metrics:     sink,
		bus:         bus,
		assignments: make(map[string]model.Assignment),
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}, nil
}

// Config returns the effective engine configuration.
func (m *Manager) Config() Config { return m.cfg }

// ValidateAssignment checks that a pair may be linked: neither unit may be in
// Breakdown or Maintenance, and the hauler must carry at least 80% of the
// loader's pass capacity. Exactly 0.8x passes.
func ValidateAssignment(l model.Loader, h model.Hauler) error {
	if l.Unavailable() {
		return fmt.Errorf("%w: loader %s is in %s", ErrEquipmentUnavailable, l.ID, l.Status)
	}
	if h.Unavailable() {
		return fmt.Errorf("%w: hauler %s is in %s", ErrEquipmentUnavailable, h.ID, h.Status)
	}
	if h.LoadCapacityTons < 0.8*l.LoadCapacityTons {
		return fmt.Errorf("%w: hauler %s capacity %.1ft below 80%% of loader %s capacity %.1ft",
			ErrCapacityMismatch, h.ID, h.LoadCapacityTons, l.ID, l.LoadCapacityTons)
	}
	return nil
}

// AutoAssign runs one matching round and commits every candidate scoring
// above the auto-commit threshold whose loader digs ROM material. The ROM
// category is re-checked here even though the matcher already filters on it.
// Returned assignments are in commit order.
func (m *Manager) AutoAssign() []model.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()

	matches := m.matcher.Match(m.registry.Snapshot())
	var created []model.Assignment
	var recs []coremetrics.AssignmentRecord
	for _, c := range matches {
		if c.Score <= m.cfg.AutoCommitScore {
			continue
		}
		l, ok := m.registry.Loader(c.LoaderID)
		if !ok {
			continue
		}
		h, ok := m.registry.Hauler(c.HaulerID)
		if !ok {
			continue
		}
		if l.CurrentMaterial.Category() != model.CategoryROM {
			continue
		}
		if err := ValidateAssignment(l, h); err != nil {
			m.logger.Warnf("skipping candidate %s/%s: %v", c.LoaderID, c.HaulerID, err)
			continue
		}
		prio := model.PriorityNormal
		if c.Score > m.cfg.HighPriorityScore {
			prio = model.PriorityHigh
		}
		a := m.commit(l, h, l.CurrentMaterial, l.LoadingZone, l.CurrentMaterial.DefaultDestination(), prio)
		matchScores.Observe(c.Score)
		assignmentsCommitted.WithLabelValues("auto", string(a.Material)).Inc()
		m.publish(events.AssignmentCreated{Assignment: a, Score: c.Score, Auto: true})
		recs = append(recs, assignmentRecord(a, c, true))
		created = append(created, a)
		m.logger.Infof("auto-assigned %s to %s (score %.0f: %s)", a.HaulerID, a.LoaderID, c.Score, c.Reason)
	}
	m.record(recs)
	return created
}

// ManualAssign links the given haulers to the loader for the given material.
// The batch is atomic: if any hauler id is unknown or fails validation, no
// assignment is created and no equipment state is touched, and the error
// names the offending ids. Haulers already linked elsewhere are reassigned.
// Empty zones default to the loader's loading zone and the material's
// routing destination. The loader's current material is overwritten.
func (m *Manager) ManualAssign(loaderID string, haulerIDs []string, material model.MaterialType, sourceZone, destinationZone string) ([]model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(haulerIDs) == 0 {
		return nil, fmt.Errorf("%w: no haulers selected", ErrValidationFailed)
	}
	if _, ok := material.Route(); !ok {
		return nil, fmt.Errorf("%w: unknown material %q", ErrValidationFailed, material)
	}
	l, ok := m.registry.Loader(loaderID)
	if !ok {
		return nil, fmt.Errorf("%w: loader %s", ErrNotFound, loaderID)
	}

	seen := make(map[string]bool, len(haulerIDs))
	haulers := make([]model.Hauler, 0, len(haulerIDs))
	var missing []string
	for _, id := range haulerIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		h, ok := m.registry.Hauler(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		haulers = append(haulers, h)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: haulers %s", ErrNotFound, strings.Join(missing, ", "))
	}

	var invalid []string
	var firstErr error
	for _, h := range haulers {
		if err := ValidateAssignment(l, h); err != nil {
			invalid = append(invalid, h.ID)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid assignment for haulers %s: %w", strings.Join(invalid, ", "), firstErr)
	}

	source := sourceZone
	if source == "" {
		source = l.LoadingZone
	}
	dest := destinationZone
	if dest == "" {
		dest = material.DefaultDestination()
	}

	created := make([]model.Assignment, 0, len(haulers))
	recs := make([]coremetrics.AssignmentRecord, 0, len(haulers))
	for _, h := range haulers {
		a := m.commit(l, h, material, source, dest, model.PriorityNormal)
		c := m.matcher.Scorer.Score(l, h)
		assignmentsCommitted.WithLabelValues("manual", string(a.Material)).Inc()
		m.publish(events.AssignmentCreated{Assignment: a, Score: c.Score, Auto: false})
		recs = append(recs, assignmentRecord(a, c, false))
		created = append(created, a)
	}
	m.registry.UpdateLoader(l.ID, func(ll *model.Loader) { ll.CurrentMaterial = material })
	m.record(recs)
	m.logger.Infof("manually assigned %d hauler(s) to %s", len(created), loaderID)
	return created, nil
}

// AssignHauler links a single hauler to the loader. Convenience wrapper over
// ManualAssign.
func (m *Manager) AssignHauler(loaderID, haulerID string, material model.MaterialType, sourceZone, destinationZone string) (model.Assignment, error) {
	created, err := m.ManualAssign(loaderID, []string{haulerID}, material, sourceZone, destinationZone)
	if err != nil {
		return model.Assignment{}, err
	}
	return created[0], nil
}

// commit creates the assignment record and applies the equipment side
// effects. Any open assignment the hauler already holds is dropped first so
// a hauler never remains linked to two loaders. Caller holds the mutex.
func (m *Manager) commit(l model.Loader, h model.Hauler, material model.MaterialType, source, dest string, prio model.AssignmentPriority) model.Assignment {
	m.releaseHauler(h.ID)
	a := model.Assignment{
		ID:              m.newID(),
		HaulerID:        h.ID,
		LoaderID:        l.ID,
		Priority:        prio,
		Status:          model.AssignmentAssigned,
		CreatedAt:       m.now(),
		Material:        material,
		SourceZone:      source,
		DestinationZone: dest,
	}
	m.assignments[a.ID] = a
	m.registry.UpdateHauler(h.ID, func(hh *model.Hauler) {
		hh.Status = model.StatusActive
		hh.AssignedLoaderID = l.ID
		hh.WaitTimeMinutes = 0
		hh.Material = material
		hh.DestinationZone = dest
	})
	m.registry.UpdateLoader(l.ID, func(ll *model.Loader) {
		ll.Status = model.StatusActive
		ll.IdleTimeMinutes = 0
		if !ll.HasHauler(h.ID) {
			ll.AssignedHaulerIDs = append(ll.AssignedHaulerIDs, h.ID)
		}
	})
	return a
}

// releaseHauler drops any open assignment held by the hauler and unlinks it
// from the previous loader. Caller holds the mutex.
func (m *Manager) releaseHauler(haulerID string) {
	for id, a := range m.assignments {
		if a.HaulerID != haulerID || !a.Open() {
			continue
		}
		delete(m.assignments, id)
		m.registry.UpdateLoader(a.LoaderID, func(l *model.Loader) {
			l.AssignedHaulerIDs = removeID(l.AssignedHaulerIDs, haulerID)
		})
	}
}

// RemoveAssignment deletes the assignment and frees its hauler. An unknown
// id is an intentional idempotent no-op, never an error, so UI-driven
// retries stay safe.
func (m *Manager) RemoveAssignment(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil
	}
	delete(m.assignments, id)
	m.registry.UpdateHauler(a.HaulerID, func(h *model.Hauler) {
		h.Status = model.StatusIdle
		h.AssignedLoaderID = ""
		h.Material = ""
		h.DestinationZone = ""
	})
	m.registry.UpdateLoader(a.LoaderID, func(l *model.Loader) {
		l.AssignedHaulerIDs = removeID(l.AssignedHaulerIDs, a.HaulerID)
	})
	assignmentsRemoved.Inc()
	m.publish(events.AssignmentRemoved{Assignment: a})
	m.logger.Infof("removed assignment %s (%s -> %s)", a.ID, a.HaulerID, a.LoaderID)
	return nil
}

// UpdateMaterial switches the loader's material and cascades the change to
// every open assignment referencing the loader and every hauler linked to it.
func (m *Manager) UpdateMaterial(loaderID string, material model.MaterialType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := material.Route(); !ok {
		return fmt.Errorf("%w: unknown material %q", ErrValidationFailed, material)
	}
	if !m.registry.UpdateLoader(loaderID, func(l *model.Loader) { l.CurrentMaterial = material }) {
		return fmt.Errorf("%w: loader %s", ErrNotFound, loaderID)
	}
	dest := material.DefaultDestination()
	for id, a := range m.assignments {
		if a.LoaderID == loaderID && a.Open() {
			a.Material = material
			a.DestinationZone = dest
			m.assignments[id] = a
		}
	}
	for _, h := range m.registry.LinkedHaulers(loaderID) {
		m.registry.UpdateHauler(h.ID, func(hh *model.Hauler) { hh.Material = material })
	}
	m.publish(events.MaterialChanged{LoaderID: loaderID, Material: material})
	m.logger.Infof("loader %s material changed to %s", loaderID, material)
	return nil
}

// ReportBreakdown marks the equipment as broken down and raises a High
// severity alert. A broken loader's haulers are redistributed round-robin
// over the remaining Active loaders; when none remain the haulers keep
// their stale link, a degraded state resolved by the next operator action.
// Open assignments are never auto-closed here; that sweep belongs to a
// higher layer.
func (m *Manager) ReportBreakdown(equipmentID string) (model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kind, ok := m.registry.Kind(equipmentID)
	if !ok {
		return model.Alert{}, fmt.Errorf("%w: equipment %s", ErrNotFound, equipmentID)
	}

	reassigned := make(map[string]string)
	switch kind {
	case model.KindLoader:
		m.registry.UpdateLoader(equipmentID, func(l *model.Loader) { l.Status = model.StatusBreakdown })
		linked := m.registry.LinkedHaulers(equipmentID)
		active := m.registry.ActiveLoadersExcept(equipmentID)
		if len(active) > 0 {
			for i, h := range linked {
				target := active[i%len(active)]
				m.registry.UpdateHauler(h.ID, func(hh *model.Hauler) { hh.AssignedLoaderID = target.ID })
				m.registry.UpdateLoader(equipmentID, func(l *model.Loader) {
					l.AssignedHaulerIDs = removeID(l.AssignedHaulerIDs, h.ID)
				})
				m.registry.UpdateLoader(target.ID, func(l *model.Loader) {
					if !l.HasHauler(h.ID) {
						l.AssignedHaulerIDs = append(l.AssignedHaulerIDs, h.ID)
					}
				})
				reassigned[h.ID] = target.ID
			}
			m.logger.Warnf("loader %s down, redistributed %d hauler(s)", equipmentID, len(reassigned))
		} else if len(linked) > 0 {
			m.logger.Warnf("loader %s down, no active loader left for %d hauler(s)", equipmentID, len(linked))
		}
	case model.KindHauler:
		m.registry.UpdateHauler(equipmentID, func(h *model.Hauler) { h.Status = model.StatusBreakdown })
		m.logger.Warnf("hauler %s down", equipmentID)
	}

	breakdownsReported.WithLabelValues(kind.String()).Inc()
	al := m.raiseAlert(model.AlertBreakdown, model.SeverityHigh, equipmentID,
		fmt.Sprintf("Equipment %s has broken down and needs immediate attention", equipmentID))
	m.publish(events.BreakdownReported{EquipmentID: equipmentID, Kind: kind, Reassigned: reassigned})
	return al, nil
}

// Tick advances the idle/wait counters and ETA decay by the elapsed wall
// time and re-evaluates the idle alerts. The alerts are level-triggered:
// every tick that still samples a unit above the threshold re-raises,
// superseding the previous alert.
func (m *Manager) Tick(elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.registry.Tick(elapsed.Minutes())
	snap := m.registry.Snapshot()
	for _, l := range snap.Loaders {
		if l.Status == model.StatusIdle && l.IdleTimeMinutes > m.cfg.IdleAlertMinutes {
			m.raiseAlert(model.AlertIdleLoader, model.SeverityHigh, l.ID,
				fmt.Sprintf("Loader %s has been idle for %.0f minutes", l.ID, l.IdleTimeMinutes))
		}
	}
	for _, h := range snap.Haulers {
		if h.Status == model.StatusIdle && h.WaitTimeMinutes > m.cfg.IdleAlertMinutes {
			m.raiseAlert(model.AlertIdleHauler, model.SeverityMedium, h.ID,
				fmt.Sprintf("Hauler %s has been waiting for %.0f minutes", h.ID, h.WaitTimeMinutes))
		}
	}
}

// Acknowledge marks the alert as acknowledged, removing it from the active
// view while retaining it in history.
func (m *Manager) Acknowledge(alertID string) (model.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts.Acknowledge(alertID)
	if !ok {
		return model.Alert{}, fmt.Errorf("%w: alert %s", ErrNotFound, alertID)
	}
	return a, nil
}

// Fleet returns the current equipment snapshot. Taking the command mutex
// keeps readers from sampling the registry between the individual updates
// of an in-flight command; they only ever see completed operations.
func (m *Manager) Fleet() fleet.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.Snapshot()
}

// Assignments returns all assignments ordered by creation time, id breaking
// ties.
func (m *Manager) Assignments() []model.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Assignment, 0, len(m.assignments))
	for _, a := range m.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Suggestions returns the current matching round without committing it.
func (m *Manager) Suggestions() []Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matcher.Match(m.registry.Snapshot())
}

// ActiveAlerts returns the unacknowledged alerts.
func (m *Manager) ActiveAlerts() []model.Alert { return m.alerts.Active() }

// AlertHistory returns acknowledged alerts.
func (m *Manager) AlertHistory() []model.Alert { return m.alerts.History() }

func (m *Manager) raiseAlert(kind model.AlertKind, sev model.AlertSeverity, equipmentID, msg string) model.Alert {
	a := m.alerts.Raise(kind, sev, equipmentID, msg)
	alertsRaised.WithLabelValues(kind.String()).Inc()
	m.publish(events.AlertRaised{Alert: a})
	return a
}

func (m *Manager) publish(e eventbus.Event) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}

func (m *Manager) record(recs []coremetrics.AssignmentRecord) {
	if len(recs) == 0 {
		return
	}
	if err := m.metrics.RecordAssignments(recs); err != nil {
		m.logger.Errorf("metrics error: %v", err)
	}
}

func assignmentRecord(a model.Assignment, c Candidate, auto bool) coremetrics.AssignmentRecord {
	return coremetrics.AssignmentRecord{
		AssignmentID:          a.ID,
		LoaderID:              a.LoaderID,
		HaulerID:              a.HaulerID,
		Material:              a.Material,
		Priority:              a.Priority,
		Score:                 c.Score,
		Efficiency:            c.Efficiency,
		EstimatedCycleMinutes: c.EstimatedCycleMinutes,
		DistanceKm:            c.DistanceKm,
		Auto:                  auto,
		Timestamp:             a.CreatedAt,
	}
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
