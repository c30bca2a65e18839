package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/config"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(t *testing.T, cfg config.SMTPConfig, fail int) (*emailServiceImpl, *[]capturedMail) {
	t.Helper()

	svc, err := NewEmailService(cfg, "TimePay", "https://hr.example.com/")
	require.NoError(t, err)
	impl := svc.(*emailServiceImpl)

	var sent []capturedMail
	impl.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if fail > 0 {
			fail--
			return errors.New("connection refused")
		}
		sent = append(sent, capturedMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return impl, &sent
}

func TestSendPasswordReset_RendersLink(t *testing.T) {
	svc, sent := newTestService(t, config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com", FromName: "TimePay"}, 0)

	err := svc.SendPasswordReset(context.Background(), "nimal@example.com", "https://hr.example.com/reset-password/abc", "10:00")
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, []string{"nimal@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Reset your password")
	assert.Contains(t, mail.msg, "https://hr.example.com/reset-password/abc")
}

func TestSendNotificationEmail_ResolvesRelativeActionURL(t *testing.T) {
	svc, sent := newTestService(t, config.SMTPConfig{Host: "smtp.example.com", Port: 25, From: "hr@example.com"}, 0)

	action := "/payroll/123"
	err := svc.SendNotificationEmail(context.Background(), "a@example.com", "Nimal", "Payslip ready", "Your payslip is ready", &action)
	require.NoError(t, err)
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "https://hr.example.com/payroll/123")
	assert.Contains(t, (*sent)[0].msg, "Hello Nimal")
}

func TestSendHTML_SkipsWhenSMTPDisabled(t *testing.T) {
	svc, sent := newTestService(t, config.SMTPConfig{}, 0)

	err := svc.SendNotificationEmail(context.Background(), "a@example.com", "A", "S", "M", nil)
	assert.NoError(t, err)
	assert.Empty(t, *sent)
}

func TestSendHTML_RetriesThenSucceeds(t *testing.T) {
	svc, sent := newTestService(t, config.SMTPConfig{Host: "smtp.example.com", Port: 25, From: "hr@example.com"}, 1)

	err := svc.SendNotificationEmail(context.Background(), "a@example.com", "A", "S", "M", nil)
	assert.NoError(t, err)
	assert.Len(t, *sent, 1)
}
