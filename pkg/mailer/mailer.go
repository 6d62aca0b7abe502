// Package mailer delivers plain-text mail. Delivery is synchronous: a failed
// send is returned to the caller instead of being logged and dropped.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/lablinker/config"
	"github.com/d60-Lab/lablinker/pkg/logger"
)

var ErrNoRecipients = errors.New("mailer: no recipients")

// Sender is the outbound mail collaborator.
type Sender interface {
	Send(ctx context.Context, subject, body string, to ...string) error
}

// New returns an SMTP sender, or a log-only sender when no host is configured.
func New(cfg config.MailConfig) Sender {
	if cfg.Host == "" {
		logger.Warn("mail host not configured, mails will only be logged")
		return LogSender{}
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		host: cfg.Host,
		user: cfg.Username,
		pass: cfg.Password,
		from: cfg.From,
		send: smtp.SendMail,
	}
}

type SMTPSender struct {
	addr string
	host string
	user string
	pass string
	from string

	// seam for tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTPSender) Send(ctx context.Context, subject, body string, to ...string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	msg := buildMessage(s.from, subject, body, to)
	if err := s.send(s.addr, auth, s.from, to, msg); err != nil {
		return fmt.Errorf("smtp send to %v: %w", to, err)
	}
	logger.Info("mail sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}

func buildMessage(from, subject, body string, to []string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ",") + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LogSender writes mails to the log instead of delivering them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, subject, body string, to ...string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}
	logger.Info("mail (log only)", zap.Strings("to", to), zap.String("subject", subject))
	logger.Debug("mail body (log only)", zap.Strings("to", to), zap.String("body", body))
	return nil
}
