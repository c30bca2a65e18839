package leave

import (
	"time"
)

type Type string

const (
	TypeAnnual    Type = "annual"
	TypeSick      Type = "sick"
	TypeCasual    Type = "casual"
	TypePersonal  Type = "personal"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
	TypeUnpaid    Type = "unpaid"
	TypeEmergency Type = "emergency"
)

func AllTypes() []Type {
	return []Type{TypeAnnual, TypeSick, TypeCasual, TypePersonal, TypeMaternity, TypePaternity, TypeUnpaid, TypeEmergency}
}

func (t Type) IsValid() bool {
	for _, v := range AllTypes() {
		if t == v {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type HalfDayPeriod string

const (
	HalfDayMorning   HalfDayPeriod = "morning"
	HalfDayAfternoon HalfDayPeriod = "afternoon"
)

type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Request struct {
	ID                 string
	EmployeeID         string
	Type               Type
	StartDate          time.Time
	EndDate            time.Time
	Days               float64
	Reason             string
	Status             Status
	Priority           Priority
	IsHalfDay          bool
	HalfDayPeriod      *HalfDayPeriod
	CoveringEmployeeID *string
	Attachments        []Attachment
	ApprovedBy         *string
	ApprovalDate       *time.Time
	ApprovalComments   *string
	RejectedBy         *string
	RejectionDate      *time.Time
	RejectionReason    *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined
	EmployeeCode string
	EmployeeName string
	BranchID     string
	Department   string
}

// Approve moves a pending request to approved.
func (r *Request) Approve(actorID string, comments *string, at time.Time) error {
	if r.Status != StatusPending {
		return ErrLeaveRequestAlreadyProcessed
	}
	r.Status = StatusApproved
	r.ApprovedBy = &actorID
	r.ApprovalDate = &at
	r.ApprovalComments = comments
	return nil
}

// Reject moves a pending request to rejected.
func (r *Request) Reject(actorID string, reason *string, at time.Time) error {
	if r.Status != StatusPending {
		return ErrLeaveRequestAlreadyProcessed
	}
	r.Status = StatusRejected
	r.RejectedBy = &actorID
	r.RejectionDate = &at
	r.RejectionReason = reason
	return nil
}

// Cancel withdraws the request on behalf of its owner. Approved leave can only
// be cancelled before its start date; a leave starting today has started.
func (r *Request) Cancel(employeeID string, today time.Time) error {
	if r.EmployeeID != employeeID {
		return ErrNotRequestOwner
	}
	if r.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if r.Status == StatusApproved && r.HasStarted(today) {
		return ErrLeaveAlreadyStarted
	}
	r.Status = StatusCancelled
	return nil
}

// HasStarted reports whether the start date is on or before today's calendar
// date. Both sides are compared as plain dates, so a DATE decoded as UTC
// midnight and a today in the local zone agree.
func (r Request) HasStarted(today time.Time) bool {
	return DaysBetween(today, r.StartDate) <= 0
}

// AllScope matches every position or employment type in a configuration.
const AllScope = "all"

type Configuration struct {
	ID                        string
	Name                      string
	Type                      Type
	MaxDaysPerYear            float64
	MaxConsecutiveDays        *float64
	CarryForwardAllowed       bool
	MaxCarryForwardDays       float64
	RequiresApproval          bool
	MinimumNoticeDays         int
	DocumentRequired          bool
	AllowHalfDay              bool
	AllowBackdating           bool
	MaxBackdatingDays         int
	IsPaid                    bool
	ApplicablePositions       []string
	ApplicableEmploymentTypes []string
	Description               *string
	IsActive                  bool
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// AppliesTo reports whether the configuration covers both the position and the
// employment type. An empty list is treated as "all".
func (c Configuration) AppliesTo(position, employmentType string) bool {
	return inScope(c.ApplicablePositions, position) && inScope(c.ApplicableEmploymentTypes, employmentType)
}

func inScope(scope []string, v string) bool {
	if len(scope) == 0 {
		return true
	}
	for _, s := range scope {
		if s == AllScope || s == v {
			return true
		}
	}
	return false
}

type TypeStats struct {
	Total     int
	Pending   int
	Approved  int
	Rejected  int
	Cancelled int
	TotalDays float64
}

type Stats struct {
	TotalRequests int
	Pending       int
	Approved      int
	Rejected      int
	Cancelled     int
	ByType        map[Type]*TypeStats
}

// Tally folds requests into Stats. Only approved requests contribute days.
func Tally(requests []Request) Stats {
	s := Stats{ByType: make(map[Type]*TypeStats)}
	for _, r := range requests {
		s.TotalRequests++
		ts, ok := s.ByType[r.Type]
		if !ok {
			ts = &TypeStats{}
			s.ByType[r.Type] = ts
		}
		ts.Total++
		switch r.Status {
		case StatusPending:
			s.Pending++
			ts.Pending++
		case StatusApproved:
			s.Approved++
			ts.Approved++
			ts.TotalDays += r.Days
		case StatusRejected:
			s.Rejected++
			ts.Rejected++
		case StatusCancelled:
			s.Cancelled++
			ts.Cancelled++
		}
	}
	return s
}
