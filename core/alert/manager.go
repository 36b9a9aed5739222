// Package alert raises, deduplicates and acknowledges operational alerts.
package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pitops/minedispatch/core/model"
)

// Manager keeps the alert list. At most one unacknowledged alert exists per
// (kind, equipment id); raising a new one supersedes the previous entry.
// Acknowledged alerts leave the active view but stay in history.
type Manager struct {
	mu     sync.RWMutex
	active []model.Alert
	acked  []model.Alert
	now    func() time.Time
	newID  func() string
}

// NewManager returns an empty alert manager.
func NewManager() *Manager {
	return &Manager{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Raise records an alert, replacing any unacknowledged alert with the same
// kind and equipment id. The newer message and timestamp win.
func (m *Manager) Raise(kind model.AlertKind, severity model.AlertSeverity, equipmentID, message string) model.Alert {
	a := model.Alert{
		ID:          m.newID(),
		Kind:        kind,
		Severity:    severity,
		EquipmentID: equipmentID,
		Message:     message,
		Timestamp:   m.now(),
	}
	m.mu.Lock()
	kept := m.active[:0]
	for _, ex := range m.active {
		if ex.Kind == kind && ex.EquipmentID == equipmentID {
			continue
		}
		kept = append(kept, ex)
	}
	m.active = append(kept, a)
	m.mu.Unlock()
	return a
}

// Acknowledge marks the alert as acknowledged and moves it to history. It
// reports whether the alert id was found among the active alerts.
func (m *Manager) Acknowledge(id string) (model.Alert, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.active {
		if a.ID == id {
			a.Acknowledged = true
			m.active = append(m.active[:i], m.active[i+1:]...)
			m.acked = append(m.acked, a)
			return a, true
		}
	}
	return model.Alert{}, false
}

// Active returns the unacknowledged alerts in raise order.
func (m *Manager) Active() []model.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Alert(nil), m.active...)
}

// History returns acknowledged alerts in acknowledgement order.
func (m *Manager) History() []model.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Alert(nil), m.acked...)
}
