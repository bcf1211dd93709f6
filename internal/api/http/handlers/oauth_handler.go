package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/plankit/project-service/internal/auth"
	"github.com/plankit/project-service/internal/service"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// OAuthHandler exposes the federation endpoints. The provider guard has
// already resolved the path provider when these run.
type OAuthHandler struct {
	oauth    *service.OAuthService
	sessions *auth.SessionManager
}

// NewOAuthHandler constructs handler.
func NewOAuthHandler(oauthService *service.OAuthService, sessions *auth.SessionManager) *OAuthHandler {
	return &OAuthHandler{oauth: oauthService, sessions: sessions}
}

// Authorize handles GET /auth/oauth/:provider and redirects to the
// provider consent screen.
func (h *OAuthHandler) Authorize(c *fiber.Ctx) error {
	url, err := h.oauth.AuthorizationURL(c.Params("provider"))
	if err != nil {
		return err
	}
	return c.Redirect(url, http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/oauth/callback/:provider.
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return apperrors.NewInvalid("code and state required")
	}

	sess, err := h.sessions.Handle(c)
	if err != nil {
		return err
	}

	user, err := h.oauth.Callback(c.UserContext(), sess, c.Params("provider"), code, state)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"user": userResponse(user)},
	})
}
