package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/plankit/project-service/internal/api/dto"
	"github.com/plankit/project-service/internal/auth"
	"github.com/plankit/project-service/internal/service"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// VerificationHandler exposes email confirmation.
type VerificationHandler struct {
	verification *service.VerificationService
	sessions     *auth.SessionManager
}

// NewVerificationHandler constructs handler.
func NewVerificationHandler(verification *service.VerificationService, sessions *auth.SessionManager) *VerificationHandler {
	return &VerificationHandler{verification: verification, sessions: sessions}
}

// Request handles POST /auth/verify/request.
func (h *VerificationHandler) Request(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewInvalid("email required")
	}

	if err := h.verification.Request(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// Confirm handles GET /auth/verify/:token.
func (h *VerificationHandler) Confirm(c *fiber.Ctx) error {
	value := c.Params("token")
	if value == "" {
		return apperrors.NewInvalid("token required")
	}

	sess, err := h.sessions.Handle(c)
	if err != nil {
		return err
	}

	user, err := h.verification.Confirm(c.UserContext(), sess, value)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"user": userResponse(user)},
	})
}
