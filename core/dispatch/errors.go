package dispatch

import "errors"

// Sentinel error kinds returned by engine commands. Callers match them with
// errors.Is; the wrapped message carries the offending ids and fields.
var (
	// ErrNotFound indicates a referenced loader, hauler, assignment or alert
	// id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEquipmentUnavailable indicates a Breakdown or Maintenance status
	// blocks the requested operation.
	ErrEquipmentUnavailable = errors.New("equipment unavailable")
	// ErrCapacityMismatch indicates the hauler is too small for the loader.
	ErrCapacityMismatch = errors.New("capacity mismatch")
	// ErrValidationFailed indicates missing or inconsistent request fields.
	ErrValidationFailed = errors.New("validation failed")
)
