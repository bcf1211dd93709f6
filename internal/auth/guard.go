package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/oauth"
	"github.com/plankit/project-service/internal/observability"
	"github.com/plankit/project-service/internal/repository"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// Guard builds the per-operation authorization chain. The role check and
// the membership check are independent; an operation may declare either,
// both, or neither.
type Guard struct {
	sessions    *SessionManager
	users       repository.UserRepository
	memberships repository.MembershipRepository
	metrics     *observability.Metrics
}

// NewGuard constructs the guard factory.
func NewGuard(sessions *SessionManager, users repository.UserRepository, memberships repository.MembershipRepository, metrics *observability.Metrics) *Guard {
	return &Guard{sessions: sessions, users: users, memberships: memberships, metrics: metrics}
}

// RequireAuth resolves the session-bound user and attaches a Principal.
func (g *Guard) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := g.sessions.Handle(c)
		if err != nil {
			return err
		}
		userID, ok := g.sessions.UserID(sess)
		if !ok {
			g.metrics.RecordAuthFailure("session")
			return apperrors.NewUnauthenticated("authentication required")
		}

		user, err := g.users.FindByID(c.UserContext(), userID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if user == nil {
			g.metrics.RecordAuthFailure("session")
			return apperrors.NewUnauthenticated("unknown user")
		}

		setPrincipal(c, &Principal{
			UserID:     user.ID,
			Email:      user.Email,
			Role:       user.Role,
			IsVerified: user.IsVerified,
		})
		return c.Next()
	}
}

// RequireRoles passes callers whose global role is in the allowed set.
// An empty set only requires authentication.
func (g *Guard) RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			g.metrics.RecordAuthFailure("role")
			return apperrors.NewUnauthenticated("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			g.metrics.RecordAuthFailure("role")
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireProjectRoles passes callers holding one of the allowed roles in
// the project the request addresses. Both an authenticated caller and a
// resolvable project id are required.
func (g *Guard) RequireProjectRoles(allowed ...domain.MembershipRole) fiber.Handler {
	allowedSet := make(map[domain.MembershipRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if len(allowedSet) == 0 {
			return c.Next()
		}

		principal, ok := PrincipalFromContext(c)
		if !ok {
			g.metrics.RecordAuthFailure("membership")
			return apperrors.NewForbidden("authentication required")
		}

		projectID := ProjectIDFromRequest(c)
		if projectID == "" {
			g.metrics.RecordAuthFailure("membership")
			return apperrors.NewForbidden("project not resolvable")
		}

		membership, err := g.memberships.Find(c.UserContext(), principal.UserID, projectID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if membership == nil {
			g.metrics.RecordAuthFailure("membership")
			return apperrors.NewForbidden("not a project member")
		}
		if _, exists := allowedSet[membership.Role]; !exists {
			g.metrics.RecordAuthFailure("membership")
			return apperrors.NewForbidden("insufficient project role")
		}
		return c.Next()
	}
}

// RequireProvider checks that the path provider resolves in the registry
// before any OAuth handler runs. Failing resolution is NotFound.
func (g *Guard) RequireProvider(registry *oauth.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("provider")
		if _, ok := registry.FindByName(name); !ok {
			return apperrors.NewNotFound("oauth provider", map[string]any{"provider": name})
		}
		return c.Next()
	}
}

// ProjectIDFromRequest extracts the project id from the path parameter,
// body, or query, taking the first non-empty match in that order.
func ProjectIDFromRequest(c *fiber.Ctx) string {
	if id := c.Params("projectId"); id != "" {
		return id
	}
	var body struct {
		ProjectID string `json:"project_id"`
	}
	if err := c.BodyParser(&body); err == nil && body.ProjectID != "" {
		return body.ProjectID
	}
	return c.Query("project_id")
}
