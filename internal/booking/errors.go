package booking

import "errors"

// Sentinel errors returned by the booking service. Handlers map these onto
// the HTTP error taxonomy; anything else is treated as an internal failure.
var (
	// ErrSlotTaken means an active appointment already holds the
	// (doctor, startAt) slot. Surfaced as 409.
	ErrSlotTaken = errors.New("this time slot is already booked")

	// ErrNotFound covers both a genuinely absent appointment and one the
	// actor is not allowed to see: ownership is folded into the lookup
	// filter, so the two cases are indistinguishable to the caller.
	ErrNotFound = errors.New("appointment not found")

	// ErrNotYours is returned when the appointment exists but is assigned
	// to a different doctor. Surfaced as 403.
	ErrNotYours = errors.New("not your appointment")

	// ErrInvalidStatus means the requested status is outside the allowed set.
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidMode means the consultation mode is not one of the two
	// allowed values.
	ErrInvalidMode = errors.New("invalid appointment mode")
)
