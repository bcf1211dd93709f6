package events

import (
	"time"

	"github.com/plankit/project-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserLoggedIn   EventType = "user_logged_in"
	EventUserVerified   EventType = "user_verified"
	EventPasswordReset  EventType = "password_reset"
	EventInviteSent     EventType = "invite_sent"
	EventMemberJoined   EventType = "member_joined"
)

// Event is an audit record emitted by the identity flows. Events are an
// observability side-channel; critical mail stays synchronous in the
// feature services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Email     string      `json:"email,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Method domain.AuthMethod `json:"method"`
}

// MemberJoinedPayload payload.
type MemberJoinedPayload struct {
	ProjectID string                `json:"project_id"`
	Role      domain.MembershipRole `json:"role"`
}

// InviteSentPayload payload.
type InviteSentPayload struct {
	ProjectID string                `json:"project_id"`
	Role      domain.MembershipRole `json:"role"`
	InviterID string                `json:"inviter_id"`
}
