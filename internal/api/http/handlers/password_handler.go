package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/plankit/project-service/internal/api/dto"
	"github.com/plankit/project-service/internal/service"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// PasswordHandler exposes password recovery.
type PasswordHandler struct {
	passwords *service.PasswordService
}

// NewPasswordHandler constructs handler.
func NewPasswordHandler(passwords *service.PasswordService) *PasswordHandler {
	return &PasswordHandler{passwords: passwords}
}

// Forgot handles POST /auth/password/forgot.
func (h *PasswordHandler) Forgot(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewInvalid("email required")
	}

	if err := h.passwords.Request(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// Reset handles POST /auth/password/reset.
func (h *PasswordHandler) Reset(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewInvalid("token and new_password required")
	}

	if err := h.passwords.Reset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}
