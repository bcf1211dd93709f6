package dto

// RegisterRequest payload for POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest payload for POST /auth/verify/request.
type VerifyRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordRequest payload for POST /auth/password/forgot.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest payload for POST /auth/password/reset.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// TwoFactorSendRequest payload for POST /auth/2fa/send.
type TwoFactorSendRequest struct {
	Email string `json:"email"`
}

// TwoFactorValidateRequest payload for POST /auth/2fa/validate.
type TwoFactorValidateRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// TwoFactorToggleRequest payload for POST /auth/2fa/toggle.
type TwoFactorToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	DisplayName        string `json:"display_name"`
	Picture            string `json:"picture,omitempty"`
	Role               string `json:"role"`
	IsVerified         bool   `json:"is_verified"`
	IsTwoFactorEnabled bool   `json:"is_two_factor_enabled"`
}
