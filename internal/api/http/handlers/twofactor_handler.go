package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/plankit/project-service/internal/api/dto"
	"github.com/plankit/project-service/internal/auth"
	"github.com/plankit/project-service/internal/service"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// TwoFactorHandler exposes the emailed sign-in code endpoints.
type TwoFactorHandler struct {
	twofactor *service.TwoFactorService
	sessions  *auth.SessionManager
}

// NewTwoFactorHandler constructs handler.
func NewTwoFactorHandler(twofactor *service.TwoFactorService, sessions *auth.SessionManager) *TwoFactorHandler {
	return &TwoFactorHandler{twofactor: twofactor, sessions: sessions}
}

// Send handles POST /auth/2fa/send.
func (h *TwoFactorHandler) Send(c *fiber.Ctx) error {
	var req dto.TwoFactorSendRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewInvalid("email required")
	}

	if err := h.twofactor.Send(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// Validate handles POST /auth/2fa/validate.
func (h *TwoFactorHandler) Validate(c *fiber.Ctx) error {
	var req dto.TwoFactorValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}
	if req.Email == "" || req.Code == "" {
		return apperrors.NewInvalid("email and code required")
	}

	sess, err := h.sessions.Handle(c)
	if err != nil {
		return err
	}

	user, err := h.twofactor.Validate(c.UserContext(), sess, req.Email, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"user": userResponse(user)},
	})
}

// Toggle handles POST /auth/2fa/toggle for the authenticated caller.
func (h *TwoFactorHandler) Toggle(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.TwoFactorToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}

	if err := h.twofactor.SetEnabled(c.UserContext(), principal.UserID, req.Enabled); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"enabled": req.Enabled}})
}
