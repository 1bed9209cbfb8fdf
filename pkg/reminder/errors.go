package reminder

import "errors"

// Recoverable conditions surfaced to callers. Anything else coming out of
// the engine is an opaque storage error; the periodic driver logs it and
// skips the current slot.
var (
	// ErrNotFound covers both a missing row and a row owned by another
	// user; callers cannot tell the two apart.
	ErrNotFound = errors.New("reminder: not found")

	// ErrAlreadyActioned marks a benign duplicate tap on a terminal event.
	ErrAlreadyActioned = errors.New("reminder: event already actioned")

	// ErrInvalidDuration rejects snoozes below the minimum before any write.
	ErrInvalidDuration = errors.New("reminder: snooze duration below minimum")

	ErrInvalidTitle    = errors.New("reminder: invalid title")
	ErrInvalidSchedule = errors.New("reminder: invalid schedule")
)
