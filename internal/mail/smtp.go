package mail

import (
	"fmt"
	"net/smtp"

	"github.com/plankit/project-service/internal/config"
	"github.com/plankit/project-service/internal/domain"
)

// SMTPNotifier sends mail through a plain SMTP relay.
type SMTPNotifier struct {
	cfg     config.MailConfig
	baseURL string
}

// NewSMTPNotifier builds the notifier.
func NewSMTPNotifier(cfg config.MailConfig, baseURL string) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, baseURL: baseURL}
}

func (n *SMTPNotifier) SendConfirmationEmail(email, token string) error {
	subject, body := confirmationBody(n.baseURL, token)
	return n.send(email, subject, body)
}

func (n *SMTPNotifier) SendPasswordResetEmail(email, token string) error {
	subject, body := passwordResetBody(n.baseURL, token)
	return n.send(email, subject, body)
}

func (n *SMTPNotifier) SendTwoFactorEmail(email, code string) error {
	subject, body := twoFactorBody(code)
	return n.send(email, subject, body)
}

func (n *SMTPNotifier) SendProjectInviteEmail(email, token, projectID string, role domain.MembershipRole) error {
	subject, body := inviteBody(n.baseURL, token, projectID, role)
	return n.send(email, subject, body)
}

func (n *SMTPNotifier) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
