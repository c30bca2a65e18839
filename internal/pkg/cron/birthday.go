package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/notification"
)

// BirthdayJobs greets employees on their birthday, once per day.
type BirthdayJobs struct {
	employeeRepo    employee.EmployeeRepository
	notificationSvc notification.Service
	loc             *time.Location
	now             func() time.Time

	mu      sync.Mutex
	lastDay string
}

func NewBirthdayJobs(employeeRepo employee.EmployeeRepository, notificationSvc notification.Service, loc *time.Location) *BirthdayJobs {
	return &BirthdayJobs{
		employeeRepo:    employeeRepo,
		notificationSvc: notificationSvc,
		loc:             loc,
		now:             time.Now,
	}
}

func (j *BirthdayJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("birthday_greetings", 1*time.Hour, j.SendBirthdayGreetings)
}

func (j *BirthdayJobs) SendBirthdayGreetings(ctx context.Context) error {
	now := j.now().In(j.loc)
	day := now.Format("2006-01-02")

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastDay == day {
		return nil
	}

	employees, err := j.employeeRepo.ListBirthdays(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list birthdays: %w", err)
	}

	reqs := make([]notification.CreateNotificationRequest, 0, len(employees))
	for _, emp := range employees {
		if emp.UserID == nil {
			continue
		}
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: *emp.UserID,
			Type:        notification.TypeBirthday,
			Title:       "Happy Birthday!",
			Message:     fmt.Sprintf("Happy birthday, %s! Wishing you a wonderful year ahead.", emp.FirstName),
			Priority:    notification.PriorityLow,
			Data:        map[string]interface{}{"employee_id": emp.ID},
		})
	}
	if len(reqs) > 0 {
		if err := j.notificationSvc.QueueBulkNotification(ctx, reqs); err != nil {
			return fmt.Errorf("failed to queue birthday greetings: %w", err)
		}
		slog.Info("Cron: Sent birthday greetings", "count", len(reqs))
	}

	j.lastDay = day
	return nil
}
