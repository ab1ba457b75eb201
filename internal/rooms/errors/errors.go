package errors

import "errors"

var (
	ErrNotFound = errors.New("room not found")

	ErrInvalidID = errors.New("invalid room ID")

	ErrDuplicateTitle = errors.New("room with this title already exists")
)
