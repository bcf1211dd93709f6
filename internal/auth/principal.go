package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/plankit/project-service/internal/domain"
)

const principalKey = "auth_principal"

// Principal is the typed identity the guard chain attaches to a request.
type Principal struct {
	UserID     string
	Email      string
	Role       domain.Role
	IsVerified bool
}

func setPrincipal(c *fiber.Ctx, principal *Principal) {
	c.Locals(principalKey, principal)
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
