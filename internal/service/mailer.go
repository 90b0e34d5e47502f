package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hirescape/job-api/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var ErrInvalidRecipient = errors.New("invalid recipient address")

// Mailer delivers a message to a single recipient. A nil error means the
// transport accepted the message for that recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewMailer returns the SMTP mailer when mail is enabled and a mailer that
// only logs otherwise
func NewMailer(c config.Mail) Mailer {
	if !c.Enabled {
		zap.L().Warn("Mail delivery is disabled, one-time codes will only be logged")
		return LogMailer{}
	}

	return &SMTPMailer{
		from:   c.SenderAddress,
		dialer: gomail.NewDialer(c.Host, c.Port, c.Username, c.Password),
	}
}

type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if strings.EqualFold(to, m.from) {
		return ErrInvalidRecipient
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	// The SMTP server rejects a recipient it won't accept during RCPT,
	// which surfaces here as an error
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail, %w", err)
	}

	return nil
}

// LogMailer is used in development, it accepts every message
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	zap.L().Info("Mail not sent, delivery disabled",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", htmlBody),
	)

	return nil
}

func codeMailBody(code, purpose string) string {
	return fmt.Sprintf("<h1>%s</h1><p>Use this code to %s. It expires in %d minutes.</p>",
		code, purpose, int(CodeTTL.Minutes()))
}
