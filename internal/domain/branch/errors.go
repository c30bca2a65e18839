package branch

import "errors"

var (
	ErrBranchNotFound   = errors.New("branch not found")
	ErrBranchCodeExists = errors.New("branch code already exists")
	ErrBranchHasStaff   = errors.New("branch still has employees assigned")
	ErrInvalidHours     = errors.New("closing time must be after opening time")
)
