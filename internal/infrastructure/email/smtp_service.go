package email

import (
	"context"
	"fmt"
	"net/smtp"

	"schoolsite-backend/pkg/logger"
)

type SubmissionReceivedData struct {
	AuthorName  string
	AuthorEmail string
	Title       string
}

type SubmissionReviewedData struct {
	AuthorName  string
	AuthorEmail string
	Title       string
	Status      string // approved, rejected
	AdminNotes  string
	ArticleURL  string // set on approval
}

type PendingDigestData struct {
	AdminEmail   string
	PendingCount int
}

// EmailService is the outbound mail contract consumed by the worker's
// notification handlers. Implementations must not be called from inside
// a database transaction.
type EmailService interface {
	SendSubmissionReceivedEmail(ctx context.Context, data SubmissionReceivedData) error
	SendSubmissionReviewedEmail(ctx context.Context, data SubmissionReviewedData) error
	SendPendingDigestEmail(ctx context.Context, data PendingDigestData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

func NewSMTPEmailService(smtpHost, smtpPort, from string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendSubmissionReceivedEmail(ctx context.Context, data SubmissionReceivedData) error {
	subject := "We received your article draft"
	body := fmt.Sprintf(`Hello %s,

Thank you for submitting "%s" to the school website.

Your draft is now waiting for review. We will email you again once a
decision has been made.`, data.AuthorName, data.Title)

	return s.send(data.AuthorEmail, subject, body)
}

func (s *smtpEmailService) SendSubmissionReviewedEmail(ctx context.Context, data SubmissionReviewedData) error {
	var subject, body string

	if data.Status == "approved" {
		subject = fmt.Sprintf("Your article %q has been published", data.Title)
		body = fmt.Sprintf(`Hello %s,

Good news: your article "%s" has been approved and published.

You can find it here:
%s`, data.AuthorName, data.Title, data.ArticleURL)
	} else {
		subject = fmt.Sprintf("Your article %q was not accepted", data.Title)
		body = fmt.Sprintf(`Hello %s,

Unfortunately your article "%s" was not accepted for publication.`, data.AuthorName, data.Title)
	}

	if data.AdminNotes != "" {
		body += fmt.Sprintf("\n\nReviewer notes:\n%s", data.AdminNotes)
	}

	return s.send(data.AuthorEmail, subject, body)
}

func (s *smtpEmailService) SendPendingDigestEmail(ctx context.Context, data PendingDigestData) error {
	subject := fmt.Sprintf("Moderation queue: %d submission(s) waiting", data.PendingCount)
	body := fmt.Sprintf(`There are currently %d submission(s) waiting for review.

Please visit the moderation dashboard to process them.`, data.PendingCount)

	return s.send(data.AdminEmail, subject, body)
}

func (s *smtpEmailService) send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, to, subject, body))

	err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{to}, msg)
	if err != nil {
		logger.Info("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        to,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
