package domain

import "time"

// MembershipRole is the per-project role of a member.
type MembershipRole string

const (
	MembershipVisitor MembershipRole = "VISITOR"
	MembershipMember  MembershipRole = "MEMBER"
	MembershipAdmin   MembershipRole = "ADMIN"
)

// ValidMembershipRole reports whether the string names a known role.
func ValidMembershipRole(role MembershipRole) bool {
	switch role {
	case MembershipVisitor, MembershipMember, MembershipAdmin:
		return true
	}
	return false
}

// Membership associates a user with a project; one row per (user, project).
type Membership struct {
	UserID    string
	ProjectID string
	Role      MembershipRole
	CreatedAt time.Time
}
