// Package mail delivers the token-bearing emails the feature flows send.
// Delivery failures propagate to the caller; nothing is retried.
package mail

import (
	"fmt"

	"github.com/plankit/project-service/internal/domain"
)

// Notifier is the outbound mail boundary.
type Notifier interface {
	SendConfirmationEmail(email, token string) error
	SendPasswordResetEmail(email, token string) error
	SendTwoFactorEmail(email, code string) error
	SendProjectInviteEmail(email, token, projectID string, role domain.MembershipRole) error
}

func confirmationBody(baseURL, token string) (subject, body string) {
	return "Confirm your email",
		fmt.Sprintf("Confirm your account: %s/auth/verify/%s", baseURL, token)
}

func passwordResetBody(baseURL, token string) (subject, body string) {
	return "Reset your password",
		fmt.Sprintf("Reset your password: %s/auth/password/reset?token=%s", baseURL, token)
}

func twoFactorBody(code string) (subject, body string) {
	return "Your sign-in code",
		fmt.Sprintf("Your sign-in code is %s. It expires in one hour.", code)
}

func inviteBody(baseURL, token, projectID string, role domain.MembershipRole) (subject, body string) {
	return "You have been invited to a project",
		fmt.Sprintf("You were invited to project %s as %s. Accept: %s/invites/accept?token=%s",
			projectID, role, baseURL, token)
}
