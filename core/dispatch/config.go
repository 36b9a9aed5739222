package dispatch

import "fmt"

// Config defines the tunables of the dispatch engine.
type Config struct {
	// AverageSpeedKmh is the assumed hauler travel speed.
	AverageSpeedKmh float64 `json:"average_speed_kmh"`
	// DumpTimeMinutes is the fixed time spent dumping a load.
	DumpTimeMinutes float64 `json:"dump_time_minutes"`
	// AutoCommitScore is the minimum matcher score committed automatically.
	AutoCommitScore float64 `json:"auto_commit_score"`
	// HighPriorityScore is the score above which an assignment is High priority.
	HighPriorityScore float64 `json:"high_priority_score"`
	// MaxMatches caps the number of candidates returned per matching round.
	MaxMatches int `json:"max_matches"`
	// IdleAlertMinutes is the idle/wait threshold for level-triggered alerts.
	IdleAlertMinutes float64 `json:"idle_alert_minutes"`
	// TickSeconds is the cadence of the clock tick driving counters.
	TickSeconds int `json:"tick_seconds"`
	// OptimizeSeconds is the cadence of the automatic dispatch round.
	OptimizeSeconds int `json:"optimize_seconds"`
}

// SetDefaults applies the reference behaviour defaults.
func (c *Config) SetDefaults() {
	if c.AverageSpeedKmh == 0 {
		c.AverageSpeedKmh = 25
	}
	if c.DumpTimeMinutes == 0 {
		c.DumpTimeMinutes = 3
	}
	if c.AutoCommitScore == 0 {
		c.AutoCommitScore = 70
	}
	if c.HighPriorityScore == 0 {
		c.HighPriorityScore = 90
	}
	if c.MaxMatches == 0 {
		c.MaxMatches = 10
	}
	if c.IdleAlertMinutes == 0 {
		c.IdleAlertMinutes = 5
	}
	if c.TickSeconds == 0 {
		c.TickSeconds = 5
	}
	if c.OptimizeSeconds == 0 {
		c.OptimizeSeconds = 30
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.AverageSpeedKmh <= 0 {
		return fmt.Errorf("average_speed_kmh must be positive")
	}
	if c.TickSeconds <= 0 || c.OptimizeSeconds <= 0 {
		return fmt.Errorf("tick_seconds and optimize_seconds must be positive")
	}
	if c.OptimizeSeconds < c.TickSeconds {
		return fmt.Errorf("optimize_seconds must not be shorter than tick_seconds")
	}
	return nil
}
