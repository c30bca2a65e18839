package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/auth"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/leave"
	"github.com/timepay/timepay-backend/internal/domain/notification"
	"github.com/timepay/timepay-backend/internal/domain/payment"
	"github.com/timepay/timepay-backend/internal/domain/payroll"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
	"github.com/timepay/timepay-backend/internal/pkg/storage"
	"github.com/timepay/timepay-backend/internal/pkg/validator"
	"github.com/timepay/timepay-backend/internal/service/file"
)

var (
	notFound = []error{
		auth.ErrUserNotFound,
		user.ErrUserNotFound,
		branch.ErrBranchNotFound,
		employee.ErrEmployeeNotFound,
		employee.ErrDocumentNotFound,
		employee.ErrNoEmployeeProfile,
		attendance.ErrAttendanceNotFound,
		attendance.ErrNoClockIn,
		leave.ErrLeaveRequestNotFound,
		leave.ErrConfigurationNotFound,
		payroll.ErrPayrollNotFound,
		payment.ErrPaymentNotFound,
		notification.ErrNotificationNotFound,
		notification.ErrPreferenceNotFound,
		notification.ErrNoRecipients,
		storage.ErrFileNotFound,
	}

	conflict = []error{
		auth.ErrEmailAlreadyRegistered,
		user.ErrUserEmailExists,
		branch.ErrBranchCodeExists,
		branch.ErrBranchHasStaff,
		employee.ErrEmployeeCodeExists,
		employee.ErrEmailExists,
		employee.ErrNationalIDExists,
		attendance.ErrAlreadyClockedIn,
		attendance.ErrAlreadyClockedOut,
		attendance.ErrAttendanceAlreadyMarked,
		leave.ErrLeaveRequestAlreadyProcessed,
		leave.ErrAlreadyCancelled,
		leave.ErrConfigurationTypeExists,
		payroll.ErrPayrollExists,
		payroll.ErrAlreadyPaid,
		payment.ErrPaymentAlreadyExists,
		payment.ErrAlreadyProcessed,
	}

	forbidden = []error{
		auth.ErrAccountDeactivated,
		user.ErrInsufficientPermissions,
		user.ErrCannotModifySelf,
		employee.ErrUnauthorized,
		employee.ErrCannotDeleteSelf,
		leave.ErrNotRequestOwner,
		payroll.ErrAccessDenied,
		payment.ErrAccessDenied,
		notification.ErrUnauthorized,
	}

	unauthorized = []error{
		auth.ErrInvalidCredentials,
		auth.ErrInvalidToken,
		auth.ErrTokenExpired,
		auth.ErrRefreshTokenRevoked,
		auth.ErrIncorrectPassword,
		auth.ErrGoogleNotLinked,
		auth.ErrInvalidOAuthState,
		jwt.ErrMissingClaims,
	}

	badRequest = []error{
		auth.ErrOAuthDisabled,
		user.ErrInvalidRole,
		branch.ErrInvalidHours,
		employee.ErrInvalidPosition,
		employee.ErrInvalidEmploymentType,
		employee.ErrInvalidStatus,
		employee.ErrNegativeLeaveBalance,
		employee.ErrMinimumAge,
		attendance.ErrInvalidStatus,
		attendance.ErrInvalidWorkType,
		attendance.ErrInvalidBreakTime,
		attendance.ErrClockOutBeforeClockIn,
		attendance.ErrEmptyPatch,
		attendance.ErrInvalidDate,
		leave.ErrLeaveAlreadyStarted,
		payroll.ErrInvalidTransition,
		payroll.ErrNotApproved,
		payroll.ErrNotEditable,
		payroll.ErrInvalidPaymentMethod,
		payment.ErrPayrollNotApproved,
		payment.ErrCannotComplete,
		payment.ErrCannotFail,
		payment.ErrRetryNotFailed,
		payment.ErrCannotCancel,
		payment.ErrCannotRefund,
		payment.ErrInvalidMethod,
		payment.ErrFailureReasonRequired,
		notification.ErrInvalidNotificationType,
		file.ErrInvalidFileType,
		file.ErrInvalidImage,
		storage.ErrInvalidPath,
	}
)

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HandleError maps domain errors to HTTP responses. Anything unrecognised is
// logged and reported as a generic 500.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Leave policy rejections carry their own caller-facing message.
	var policyErr *leave.PolicyError
	if errors.As(err, &policyErr) {
		BadRequest(w, policyErr.Message, nil)
		return
	}

	switch {
	case matches(err, notFound):
		NotFound(w, err.Error())
	case matches(err, conflict):
		Conflict(w, err.Error())
	case matches(err, forbidden):
		Forbidden(w, err.Error())
	case matches(err, unauthorized):
		Unauthorized(w, err.Error())
	case matches(err, badRequest):
		BadRequest(w, err.Error(), nil)
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
