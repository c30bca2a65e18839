package payment

import "errors"

var (
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPayrollNotApproved    = errors.New("payroll must be approved before payment can be initiated")
	ErrPaymentAlreadyExists  = errors.New("payment already initiated for this payroll")
	ErrAlreadyProcessed      = errors.New("payment has already been processed")
	ErrCannotComplete        = errors.New("payment cannot be completed in current status")
	ErrCannotFail            = errors.New("payment cannot be failed in current status")
	ErrRetryNotFailed        = errors.New("only failed payments can be retried")
	ErrCannotCancel          = errors.New("payment cannot be cancelled in current status")
	ErrCannotRefund          = errors.New("only completed payments can be refunded")
	ErrInvalidMethod         = errors.New("invalid payment method")
	ErrFailureReasonRequired = errors.New("failure reason is required")
	ErrAccessDenied          = errors.New("access denied")
)
