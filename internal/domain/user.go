package domain

import "time"

// Role is the global role of a user across the whole service.
type Role string

const (
	RoleRegular Role = "REGULAR"
	RoleAdmin   Role = "ADMIN"
)

// AuthMethod records how an account was provisioned.
type AuthMethod string

const (
	MethodLocal  AuthMethod = "LOCAL"
	MethodGoogle AuthMethod = "GOOGLE"
	MethodGithub AuthMethod = "GITHUB"
)

// User is the domain model for an account holder.
type User struct {
	ID                 string
	Email              string
	DisplayName        string
	Picture            string
	PasswordHash       string
	Role               Role
	Method             AuthMethod
	IsVerified         bool
	IsTwoFactorEnabled bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
