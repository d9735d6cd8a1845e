// Package mailer sends transactional email over SMTP. Delivery is
// best-effort: callers on a request path use SendAsync, which detaches
// dispatch from the request and swallows failures after logging them.
package mailer

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	mail "github.com/go-mail/mail"
)

// Sender is the contract the services consume. Send blocks until the SMTP
// conversation completes; SendAsync returns immediately.
type Sender interface {
	Send(to, subject, htmlBody string) error
	SendAsync(to, subject, htmlBody string)
}

type SMTPMailer struct {
	Host string
	Port int
	From string
	User string
	Pass string

	// StartTLS negotiates TLS on the standard submission port. Disable only
	// against a local development relay.
	StartTLS bool

	Log *slog.Logger
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := mail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	if m.StartTLS {
		d.StartTLSPolicy = mail.MandatoryStartTLS
		d.TLSConfig = &tls.Config{ServerName: m.Host}
	}

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SendAsync dispatches in a goroutine. Failures are logged and dropped; the
// caller never learns the outcome.
func (m *SMTPMailer) SendAsync(to, subject, htmlBody string) {
	go func() {
		if err := m.Send(to, subject, htmlBody); err != nil {
			m.log().Error("email dispatch failed",
				slog.String("to", to),
				slog.String("subject", subject),
				slog.Any("err", err),
			)
			return
		}
		m.log().Debug("email sent", slog.String("to", to), slog.String("subject", subject))
	}()
}

func (m *SMTPMailer) log() *slog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return slog.Default()
}
