package notification

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"intake_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers the email copy of lead alerts over plain SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
}

// NewSMTPSender builds the sender from notifier configuration. Returns nil
// when the email copy is disabled.
func NewSMTPSender(cfg config.NotifierConfig) *SMTPSender {
	if !cfg.GetNotifyEmailEnabled() {
		return nil
	}
	return &SMTPSender{
		host:     cfg.GetSMTPHost(),
		port:     cfg.GetSMTPPort(),
		username: cfg.GetSMTPUser(),
		password: cfg.GetSMTPPassword(),
		from:     cfg.GetNotifyEmailFrom(),
		to:       cfg.GetNotifyEmailTo(),
	}
}

// SendLeadAlert emails the alert text to the office inbox.
func (s *SMTPSender) SendLeadAlert(ctx context.Context, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, renderAlertHTML(body))

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func renderAlertHTML(body string) string {
	escaped := html.EscapeString(body)
	return "<html><body><pre style=\"font-family:sans-serif\">" +
		strings.ReplaceAll(escaped, "\n", "<br>") +
		"</pre></body></html>"
}
