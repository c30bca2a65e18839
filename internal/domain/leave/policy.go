package leave

import (
	"fmt"
	"strconv"
	"time"
)

// PolicyError is a rejected application. Message is shown to the caller as is.
type PolicyError struct {
	Err     error
	Message string
}

func (e *PolicyError) Error() string { return e.Message }
func (e *PolicyError) Unwrap() error { return e.Err }

func policyErr(err error, format string, args ...any) error {
	return &PolicyError{Err: err, Message: fmt.Sprintf(format, args...)}
}

// Applicant is the employee-side input to the leave policy.
type Applicant struct {
	Position       string
	EmploymentType string
	Entitlement    float64
}

// Application is the request-side input to the leave policy.
type Application struct {
	Type      Type
	StartDate time.Time
	EndDate   time.Time
	IsHalfDay bool
}

// MatchConfiguration picks the active configuration for t that covers the applicant.
func MatchConfiguration(configs []Configuration, t Type, a Applicant) (Configuration, error) {
	for _, c := range configs {
		if c.IsActive && c.Type == t && c.AppliesTo(a.Position, a.EmploymentType) {
			return c, nil
		}
	}
	return Configuration{}, policyErr(ErrConfigurationNotApplicable,
		"Leave type %s is not applicable for your position/employment type", t)
}

// Evaluate runs the date, notice, backdating, balance and consecutive-day checks
// in that order and returns the days the application would consume. taken is the
// sum of approved days of the same type in the current year.
func Evaluate(cfg Configuration, a Applicant, app Application, today time.Time, taken float64) (float64, error) {
	start, end := dateOnly(app.StartDate), dateOnly(app.EndDate)
	if start.After(end) {
		return 0, policyErr(ErrInvalidDateRange, "Start date cannot be after end date")
	}
	if app.IsHalfDay && !start.Equal(end) {
		return 0, policyErr(ErrInvalidDateRange, "Half day leave must start and end on the same date")
	}
	if app.IsHalfDay && !cfg.AllowHalfDay {
		return 0, policyErr(ErrHalfDayNotAllowed, "Half day not allowed for %s leave", app.Type)
	}

	lead := DaysBetween(today, start)
	if lead >= 0 && lead < cfg.MinimumNoticeDays {
		return 0, policyErr(ErrInsufficientNotice,
			"Minimum %d days notice required for %s leave", cfg.MinimumNoticeDays, app.Type)
	}
	if lead < 0 {
		if !cfg.AllowBackdating {
			return 0, policyErr(ErrBackdatingNotAllowed, "Backdating not allowed for this leave type")
		}
		if -lead > cfg.MaxBackdatingDays {
			return 0, policyErr(ErrBackdatingNotAllowed,
				"Cannot backdate more than %d days", cfg.MaxBackdatingDays)
		}
	}

	days := RequestDays(start, end, app.IsHalfDay)
	available := a.Entitlement - taken
	if days > available {
		return 0, policyErr(ErrInsufficientBalance,
			"Insufficient leave balance. Available: %s days, Requested: %s days", fmtDays(available), fmtDays(days))
	}

	if cfg.MaxConsecutiveDays != nil && *cfg.MaxConsecutiveDays > 0 && days > *cfg.MaxConsecutiveDays {
		return 0, policyErr(ErrMaxConsecutiveExceeded,
			"Maximum %s consecutive days allowed for %s leave", fmtDays(*cfg.MaxConsecutiveDays), app.Type)
	}
	return days, nil
}

func fmtDays(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Balance is the per-type view of an employee's leave for one year.
type Balance struct {
	Total   float64 `json:"total"`
	Taken   float64 `json:"taken"`
	Balance float64 `json:"balance"`
}

// ComputeBalance never returns a negative remainder.
func ComputeBalance(total, taken float64) Balance {
	remaining := total - taken
	if remaining < 0 {
		remaining = 0
	}
	return Balance{Total: total, Taken: taken, Balance: remaining}
}
