package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID")

	ErrTimeConflict = errors.New("room is already booked for the requested time")

	ErrInvalidTimeRange = errors.New("end time must be after start time")

	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)
