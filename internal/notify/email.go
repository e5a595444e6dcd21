package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

// SMTPConfig addresses an SMTP relay and the fixed digest recipient.
type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Subject  string
}

// Email sends the digest as an HTML mail. Digest lines are separated by
// blank lines, which HTML collapses, so they are turned into <br> pairs.
type Email struct {
	conf SMTPConfig
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

var _ Sender = (*Email)(nil)

// NewEmail builds an SMTP sender.
func NewEmail(conf SMTPConfig) *Email {
	return &Email{
		conf: conf,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Send delivers one mail. The context is only checked before sending since
// net/smtp has no cancellation.
func (m *Email) Send(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.conf.Server == "" || len(m.conf.To) == 0 {
		return fmt.Errorf("email notifier misconfigured")
	}

	mail := email.NewEmail()
	mail.From = m.conf.From
	mail.To = m.conf.To
	mail.Subject = m.conf.Subject
	mail.HTML = []byte(strings.ReplaceAll(message, lineSeparator, "<br><br>"))

	addr := fmt.Sprintf("%s:%d", m.conf.Server, m.conf.Port)
	var auth smtp.Auth
	if m.conf.Username != "" {
		auth = smtp.PlainAuth("", m.conf.Username, m.conf.Password, m.conf.Server)
	}

	err := m.send(mail, addr, auth)
	if err != nil && auth != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = m.send(mail, addr, nil)
	}
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
