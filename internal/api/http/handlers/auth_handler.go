package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/plankit/project-service/internal/api/dto"
	"github.com/plankit/project-service/internal/auth"
	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/service"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// AuthHandler exposes registration, login and logout.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *auth.SessionManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *auth.SessionManager) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		return apperrors.NewInvalid("email, password, display_name required")
	}

	sess, err := h.sessions.Handle(c)
	if err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), sess, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"user": userResponse(user)},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewInvalid("email and password required")
	}

	sess, err := h.sessions.Handle(c)
	if err != nil {
		return err
	}

	user, twoFactorRequired, err := h.auth.Login(c.UserContext(), sess, req.Email, req.Password)
	if err != nil {
		return err
	}

	if twoFactorRequired {
		return c.JSON(fiber.Map{
			"data": fiber.Map{"two_factor_required": true},
		})
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"user": userResponse(user)},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.sessions.Handle(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(sess); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"id":          principal.UserID,
			"email":       principal.Email,
			"role":        principal.Role,
			"is_verified": principal.IsVerified,
		},
	})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 user.ID,
		Email:              user.Email,
		DisplayName:        user.DisplayName,
		Picture:            user.Picture,
		Role:               string(user.Role),
		IsVerified:         user.IsVerified,
		IsTwoFactorEnabled: user.IsTwoFactorEnabled,
	}
}
