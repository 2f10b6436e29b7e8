package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"os"

	"github.com/nix1947/statementTracker/internal/logger"
)

// Mailer delivers transactional mail. The only consumer today is the
// password reset flow.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPClient talks to a plain SMTP relay configured from the environment.
type SMTPClient struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// NewFromEnv returns an SMTP client when SMTP_HOST is set, otherwise a
// logging stand-in so local setups work without a relay.
func NewFromEnv() Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return &logMailer{}
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTPClient{
		Host: host,
		Port: port,
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASSWORD"),
		From: os.Getenv("SMTP_FROM"),
	}
}

func (m *SMTPClient) Send(_ context.Context, to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	if err := smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// logMailer writes the message to the log instead of delivering it.
type logMailer struct{}

func (m *logMailer) Send(ctx context.Context, to, subject, body string) error {
	logger.FromContext(ctx).Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("mail delivery skipped: SMTP_HOST not configured")
	return nil
}
