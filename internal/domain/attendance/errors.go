package attendance

import "errors"

var (
	ErrAttendanceNotFound      = errors.New("attendance record not found")
	ErrAlreadyClockedIn        = errors.New("Already clocked in today")
	ErrNoClockIn               = errors.New("No clock in found for today")
	ErrAlreadyClockedOut       = errors.New("Already clocked out today")
	ErrAttendanceAlreadyMarked = errors.New("Attendance already marked for this date")
	ErrInvalidStatus           = errors.New("invalid attendance status")
	ErrInvalidWorkType         = errors.New("invalid work type")
	ErrInvalidBreakTime        = errors.New("break time cannot be negative")
	ErrClockOutBeforeClockIn   = errors.New("clock out must be after clock in")
	ErrEmptyPatch              = errors.New("no updatable fields supplied")
	ErrInvalidDate             = errors.New("date must be in YYYY-MM-DD format")
)
