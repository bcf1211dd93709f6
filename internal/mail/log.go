package mail

import (
	"go.uber.org/zap"

	"github.com/plankit/project-service/internal/domain"
)

// LogNotifier logs instead of sending. Used in development when no SMTP
// host is configured.
type LogNotifier struct {
	logger  *zap.Logger
	baseURL string
}

// NewLogNotifier builds the notifier.
func NewLogNotifier(logger *zap.Logger, baseURL string) *LogNotifier {
	return &LogNotifier{logger: logger, baseURL: baseURL}
}

func (n *LogNotifier) SendConfirmationEmail(email, token string) error {
	subject, body := confirmationBody(n.baseURL, token)
	n.log(email, subject, body)
	return nil
}

func (n *LogNotifier) SendPasswordResetEmail(email, token string) error {
	subject, body := passwordResetBody(n.baseURL, token)
	n.log(email, subject, body)
	return nil
}

func (n *LogNotifier) SendTwoFactorEmail(email, code string) error {
	subject, body := twoFactorBody(code)
	n.log(email, subject, body)
	return nil
}

func (n *LogNotifier) SendProjectInviteEmail(email, token, projectID string, role domain.MembershipRole) error {
	subject, body := inviteBody(n.baseURL, token, projectID, role)
	n.log(email, subject, body)
	return nil
}

func (n *LogNotifier) log(to, subject, body string) {
	n.logger.Info("mail (dev notifier)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
}
