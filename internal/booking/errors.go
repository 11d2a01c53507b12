package booking

import "errors"

// 领域错误，HTTP 层据此映射状态码。
var (
	ErrInvalidWindow     = errors.New("booking: invalid time window")
	ErrMissingVehicleID  = errors.New("booking: vehicle id is required")
	ErrSlotInactive      = errors.New("booking: slot is not active")
	ErrSlotConflict      = errors.New("booking: slot already booked for this window")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrAlreadyOccupied   = errors.New("booking: already checked in")
	ErrCheckInTooEarly   = errors.New("booking: check-in window has not started")
	ErrCheckInExpired    = errors.New("booking: check-in window has passed")
	ErrNotOwner          = errors.New("booking: not the booking owner")
)
