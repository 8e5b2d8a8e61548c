package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/teamforge/backend/pkg/logger"
)

// Service delivers account emails over SMTP. It is the collaborator the
// auth core hands raw reset tokens to; the token only ever appears inside
// the outgoing message.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	frontendURL  string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, frontendURL string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
		frontendURL:  frontendURL,
	}
}

// SendPasswordResetEmail sends a password reset link to the user. Designed
// to be called in a goroutine off the request path.
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, rawToken string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, rawToken)

	body, err := renderResetTemplate(resetLink)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, "Reset your password", body); err != nil {
		logger.ErrorWithContext(ctx, "Failed to send password reset email").
			String("email", toEmail).
			Err(err).
			Log()
		return fmt.Errorf("send email: %w", err)
	}

	logger.InfoWithContext(ctx, "Password reset email sent").
		String("email", toEmail).
		Log()
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

func renderResetTemplate(resetLink string) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
  <h2>Password reset requested</h2>
  <p>Someone asked to reset the password for your account. If that was you,
  click the link below within the next 15 minutes:</p>
  <p><a href="{{.ResetLink}}">Reset my password</a></p>
  <p>If you did not request this, you can safely ignore this email.</p>
</body>
</html>`

	t, err := template.New("reset").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ ResetLink string }{ResetLink: resetLink}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
