package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/vidaplan/corretora-api/internal/config"
	"github.com/vidaplan/corretora-api/internal/models"
	"github.com/vidaplan/corretora-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// SendAccountCreated welcomes a newly registered user
func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	data := struct {
		Name string
	}{
		Name: user.FullName,
	}

	body, err := s.renderTemplate("account_created.html", data)
	if err != nil {
		return err
	}

	return s.send(user.Email, "Bem-vindo ao VidaPlan CRM", body)
}

// SendReminderDue mails a corretor about a reminder that just fired
func (s *EmailService) SendReminderDue(ctx context.Context, user *models.User, reminder *models.Reminder) error {
	data := struct {
		Name    string
		Title   string
		DueAt   string
		Subject string
	}{
		Name:  user.FullName,
		Title: reminder.Title,
		DueAt: reminder.DueAt.Format("02/01/2006 15:04"),
	}
	if reminder.Lead != nil {
		data.Subject = reminder.Lead.Name
	}

	body, err := s.renderTemplate("reminder_due.html", data)
	if err != nil {
		return err
	}

	return s.send(user.Email, fmt.Sprintf("Lembrete: %s", reminder.Title), body)
}

func (s *EmailService) send(to, subject, html string) error {
	if s.config.ResendAPIKey == "" {
		logger.Warn("Email disabled, skipping send", "to", to, "subject", subject)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}

	logger.Info("Email sent", "to", to, "subject", subject)
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
