package branch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/timepay/timepay-backend/internal/domain/attendance"
)

func TestBranch_Schedule(t *testing.T) {
	b := Branch{OpeningTime: "08:00", ClosingTime: "16:30"}
	s := b.Schedule()
	assert.Equal(t, attendance.Clock{Hour: 8}, s.Opening)
	assert.Equal(t, attendance.Clock{Hour: 16, Minute: 30}, s.Closing)

	assert.Equal(t, attendance.DefaultSchedule, Branch{}.Schedule())
}

func TestBranch_IsWorkingDay(t *testing.T) {
	assert.True(t, Branch{}.IsWorkingDay(time.Monday))
	assert.False(t, Branch{}.IsWorkingDay(time.Saturday))

	retail := Branch{WorkingDays: []int{1, 2, 3, 4, 5, 6}}
	assert.True(t, retail.IsWorkingDay(time.Saturday))
	assert.False(t, retail.IsWorkingDay(time.Sunday))
}

func TestCreateBranchRequest_Validate(t *testing.T) {
	req := CreateBranchRequest{Name: "Colombo 03", Code: " col-03 ", OpeningTime: "08:30", ClosingTime: "17:30"}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "COL-03", req.Code)

	bad := CreateBranchRequest{Name: "", Code: "x", OpeningTime: "18:00", ClosingTime: "09:00", WorkingDays: []int{7}}
	err := bad.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "code")
	assert.Contains(t, err.Error(), "closing_time")
	assert.Contains(t, err.Error(), "working_days")
}
