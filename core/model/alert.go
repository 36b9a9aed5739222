package model

import "time"

// AlertKind identifies the anomaly an alert reports.
type AlertKind int

const (
	AlertIdleLoader AlertKind = iota
	AlertIdleHauler
	AlertBreakdown
	AlertRerouteSuggestion
)

func (k AlertKind) String() string {
	switch k {
	case AlertIdleLoader:
		return "idle_loader"
	case AlertIdleHauler:
		return "idle_hauler"
	case AlertBreakdown:
		return "breakdown"
	case AlertRerouteSuggestion:
		return "reroute_suggestion"
	default:
		return "unknown"
	}
}

// AlertSeverity ranks alerts for the operator.
type AlertSeverity int

const (
	SeverityLow AlertSeverity = iota
	SeverityMedium
	SeverityHigh
)

func (s AlertSeverity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "unknown"
	}
}

// Alert is an operational anomaly surfaced to the dispatcher. At most one
// unacknowledged alert per (kind, equipment) exists at any time.
type Alert struct {
	ID           string        `json:"id"`
	Kind         AlertKind     `json:"kind"`
	Severity     AlertSeverity `json:"severity"`
	EquipmentID  string        `json:"equipment_id"`
	Message      string        `json:"message"`
	Timestamp    time.Time     `json:"timestamp"`
	Acknowledged bool          `json:"acknowledged"`
}
