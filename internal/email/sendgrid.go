package email

import (
	"context"
	"errors"
	"fmt"

	"filmdecks_backend/platform/sanitize"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers rendered templates through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}, nil
}

func (s *SendGridSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, sanitize.Text(sanitize.StripHTML(htmlContent)), htmlContent)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *SendGridSender) SendNewLeadEmail(ctx context.Context, toEmail string, data NewLeadEmail) error {
	subject, content, err := newLeadMessage(data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SendGridSender) SendAnalysisReportEmail(ctx context.Context, toEmail string, data AnalysisReportEmail) error {
	subject, content, err := analysisReportMessage(data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}
