package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/timepay/timepay-backend/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	SendPasswordReset(ctx context.Context, to, resetLink, expiresAt string) error
	SendNotificationEmail(ctx context.Context, to, name, subject, message string, actionURL *string) error
}

type emailServiceImpl struct {
	cfg              config.SMTPConfig
	organizationName string
	frontendURL      string
	templates        *template.Template
	send             func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service instance. Relative action URLs
// are resolved against frontendURL.
func NewEmailService(cfg config.SMTPConfig, organizationName, frontendURL string) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:              cfg,
		organizationName: organizationName,
		frontendURL:      strings.TrimRight(frontendURL, "/"),
		templates:        tmpl,
		send:             smtp.SendMail,
	}, nil
}

type passwordResetEmailData struct {
	OrganizationName string
	ResetLink        string
	ExpiresAt        string
}

// SendPasswordReset sends a password reset email to the user
func (s *emailServiceImpl) SendPasswordReset(ctx context.Context, to, resetLink, expiresAt string) error {
	data := passwordResetEmailData{
		OrganizationName: s.organizationName,
		ResetLink:        resetLink,
		ExpiresAt:        expiresAt,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "password_reset.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(ctx, to, "Reset your password", body.String())
}

type notificationEmailData struct {
	OrganizationName string
	Name             string
	Message          string
	ActionURL        string
}

// SendNotificationEmail mirrors an in-app notification to the recipient's inbox.
func (s *emailServiceImpl) SendNotificationEmail(ctx context.Context, to, name, subject, message string, actionURL *string) error {
	data := notificationEmailData{
		OrganizationName: s.organizationName,
		Name:             name,
		Message:          message,
	}
	if actionURL != nil && *actionURL != "" {
		data.ActionURL = *actionURL
		if strings.HasPrefix(data.ActionURL, "/") {
			data.ActionURL = s.frontendURL + data.ActionURL
		}
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "notification.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(ctx, to, subject, body.String())
}

func (s *emailServiceImpl) sendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if !s.cfg.Enabled() {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Exponential backoff: 1s, 2s
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
