// Package email delivers notification e-mails. A sendgrid-backed sender is
// used when SENDGRID_API_KEY is configured; otherwise messages go to the log.
package email

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender sends a single plain-text message.
type Sender interface {
	Send(toName, toAddr, subject, body string) error
}

// NewSenderFromEnv returns a sendgrid sender when configured, else the
// console sender.
func NewSenderFromEnv() Sender {
	key := os.Getenv("SENDGRID_API_KEY")
	if key == "" {
		slog.Warn("SENDGRID_API_KEY is not set, e-mail goes to the log")
		return consoleSender{}
	}
	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = "noreply@projects.local"
	}
	return &sendgridSender{
		client: sendgrid.NewSendClient(key),
		from:   sgmail.NewEmail("Project Management", from),
	}
}

type sendgridSender struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func (s *sendgridSender) Send(toName, toAddr, subject, body string) error {
	to := sgmail.NewEmail(toName, toAddr)
	msg := sgmail.NewSingleEmail(s.from, subject, to, body, "")
	resp, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

type consoleSender struct{}

func (consoleSender) Send(toName, toAddr, subject, body string) error {
	slog.Info("E-mail (console)", "to", toAddr, "subject", subject, "body", body)
	return nil
}
