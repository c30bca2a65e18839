package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrAlreadyCancelled             = errors.New("leave request already cancelled")
	ErrLeaveAlreadyStarted          = errors.New("cannot cancel leave that has already started")
	ErrNotRequestOwner              = errors.New("leave request does not belong to you")

	ErrConfigurationNotFound      = errors.New("leave configuration not found")
	ErrConfigurationTypeExists    = errors.New("leave configuration for this type already exists")
	ErrConfigurationNotApplicable = errors.New("leave type not applicable")
	ErrInvalidDateRange           = errors.New("invalid leave date range")
	ErrHalfDayNotAllowed          = errors.New("half day not allowed")
	ErrInsufficientNotice         = errors.New("insufficient notice")
	ErrBackdatingNotAllowed       = errors.New("backdating not allowed")
	ErrInsufficientBalance        = errors.New("insufficient leave balance")
	ErrMaxConsecutiveExceeded     = errors.New("maximum consecutive days exceeded")
)
