package booking

import "errors"

var (
	ErrInvalidTime = errors.New("invalid booking time")
	ErrInvalidDate = errors.New("invalid booking date")
)
