package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound        = errors.New("attendance record not found")
	ErrAttendanceAlreadyRecorded = errors.New("attendance already recorded for this date")
	ErrInvalidCheckOut           = errors.New("check-out must be after check-in")
)
