package employee

import (
	"fmt"
	"sort"
)

// LeaveBalance maps a leave type to its yearly entitlement in days.
type LeaveBalance map[string]float64

func DefaultLeaveBalance() LeaveBalance {
	return LeaveBalance{
		"annual":    21,
		"sick":      10,
		"casual":    7,
		"personal":  5,
		"maternity": 90,
		"paternity": 15,
		"unpaid":    0,
	}
}

// Entitlement returns the configured days for leaveType, zero when absent.
func (b LeaveBalance) Entitlement(leaveType string) float64 {
	return b[leaveType]
}

// Merge overlays non-negative values from other onto a copy of b.
func (b LeaveBalance) Merge(other LeaveBalance) (LeaveBalance, error) {
	out := make(LeaveBalance, len(b)+len(other))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range other {
		if v < 0 {
			return nil, fmt.Errorf("%w: %s", ErrNegativeLeaveBalance, k)
		}
		out[k] = v
	}
	return out, nil
}

func (b LeaveBalance) Types() []string {
	types := make([]string, 0, len(b))
	for k := range b {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}
