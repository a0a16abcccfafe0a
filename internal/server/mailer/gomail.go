package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"gopkg.in/gomail.v2"
)

// SMTPSender delivers mail over plain SMTP via gomail.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
	baseURL  string
	logger   logging.Logger
}

// NewSMTPSender constructs a sender. baseURL is the public origin used to
// build the verification link, without a trailing slash.
func NewSMTPSender(host string, port int, user string, password string, from string, baseURL string, logger logging.Logger) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// dialAndSend is a seam for testing without a real SMTP server.
var dialAndSend = func(d *gomail.Dialer, m *gomail.Message) error {
	return d.DialAndSend(m)
}

func (s *SMTPSender) send(ctx context.Context, to string, subject string, body string) error {
	if s.host == "" || s.from == "" {
		s.logger.Warn(ctx, "mail config missing, skip delivery", "to", to)
		return nil
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("empty recipient")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.host, s.port, s.user, s.password)
	if err := dialAndSend(d, m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// SendVerificationEmail sends the address-validation link.
func (s *SMTPSender) SendVerificationEmail(ctx context.Context, to string, name string, token string) error {
	link := fmt.Sprintf("%s/api/auth/validate-email/%s", s.baseURL, token)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Confirm your email address</h2>
    <p>Hi %s,</p>
    <p>Click the link below to confirm your email address:</p>
    <p><a href="%s">Validate your email</a></p>
    <p>If you did not create an account, you can ignore this message.</p>
  </div>
</body>
</html>`, name, link)

	if err := s.send(ctx, to, "Validate your email", body); err != nil {
		return err
	}
	s.logger.Info(ctx, "verification email sent", "to", to)
	return nil
}

// SendPasswordResetEmail sends the one-time reset secret.
func (s *SMTPSender) SendPasswordResetEmail(ctx context.Context, to string, name string, secret string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Reset your password</h2>
    <p>Hi %s,</p>
    <p>Use this code to reset your password:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
    <p>The code expires shortly and can be used once.</p>
    <p>If you did not request a reset, you can ignore this message.</p>
  </div>
</body>
</html>`, name, secret)

	if err := s.send(ctx, to, "Reset your password", body); err != nil {
		return err
	}
	s.logger.Info(ctx, "password reset email sent", "to", to)
	return nil
}
