package attendance

import "time"

// Patch lists the fields an administrator may change on an existing record.
// Derived fields are not settable; they are recomputed after Apply.
type Patch struct {
	Status    *Status
	ClockIn   *time.Time
	ClockOut  *time.Time
	BreakTime *int
	WorkType  *WorkType
	Notes     *string
}

func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.ClockIn == nil && p.ClockOut == nil &&
		p.BreakTime == nil && p.WorkType == nil && p.Notes == nil
}

// Apply copies the set fields onto a and validates the result.
func (p Patch) Apply(a *Attendance) error {
	if p.IsEmpty() {
		return ErrEmptyPatch
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return ErrInvalidStatus
		}
		a.Status = *p.Status
	}
	if p.WorkType != nil {
		if !p.WorkType.IsValid() {
			return ErrInvalidWorkType
		}
		a.WorkType = *p.WorkType
	}
	if p.BreakTime != nil {
		if *p.BreakTime < 0 {
			return ErrInvalidBreakTime
		}
		a.BreakTime = *p.BreakTime
	}
	if p.ClockIn != nil {
		t := *p.ClockIn
		a.ClockIn = &t
	}
	if p.ClockOut != nil {
		t := *p.ClockOut
		a.ClockOut = &t
	}
	if p.Notes != nil {
		n := *p.Notes
		a.Notes = &n
	}
	if a.ClockIn != nil && a.ClockOut != nil && !a.ClockOut.After(*a.ClockIn) {
		return ErrClockOutBeforeClockIn
	}
	return nil
}
