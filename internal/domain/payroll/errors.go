package payroll

import "errors"

var (
	ErrPayrollNotFound      = errors.New("payroll not found")
	ErrPayrollExists        = errors.New("payroll already exists for this period")
	ErrInvalidTransition    = errors.New("payroll status does not allow this action")
	ErrNotApproved          = errors.New("payroll must be approved before payment")
	ErrAlreadyPaid          = errors.New("payroll is already paid")
	ErrNotEditable          = errors.New("only draft or pending payrolls can be updated")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrAccessDenied         = errors.New("access denied")
)
