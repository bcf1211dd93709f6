package domain

import "time"

// TokenKind differentiates the four single-use credential grants.
type TokenKind string

const (
	TokenVerification  TokenKind = "VERIFICATION"
	TokenPasswordReset TokenKind = "PASSWORD_RESET"
	TokenTwoFactor     TokenKind = "TWO_FACTOR"
	TokenProjectInvite TokenKind = "PROJECT_INVITE"
)

// Token is a single-use, typed, time-boxed credential grant. At most one
// live token exists per (SubjectEmail, Kind) pair; Value is globally unique.
type Token struct {
	ID           string
	SubjectEmail string
	Value        string
	Kind         TokenKind
	Payload      *InvitePayload
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// InvitePayload carries the target project and granted role of an invite.
type InvitePayload struct {
	ProjectID string         `json:"project_id"`
	Role      MembershipRole `json:"role"`
}
