package employee

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrEmployeeCodeExists    = errors.New("employee code already exists")
	ErrEmailExists           = errors.New("email already registered")
	ErrNationalIDExists      = errors.New("national ID already registered")
	ErrInvalidPosition       = errors.New("invalid position")
	ErrInvalidEmploymentType = errors.New("invalid employment type")
	ErrInvalidStatus         = errors.New("invalid employee status")
	ErrNegativeLeaveBalance  = errors.New("leave balance must not be negative")
	ErrMinimumAge            = errors.New("employee must be at least 16 years old")
	ErrUnauthorized          = errors.New("unauthorized to access this employee")
	ErrCannotDeleteSelf      = errors.New("cannot delete your own employee record")
	ErrDocumentNotFound      = errors.New("document not found")
	ErrNoEmployeeProfile     = errors.New("no employee profile linked to this account")
)
