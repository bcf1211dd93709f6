package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plankit/project-service/internal/api/http/handlers"
	"github.com/plankit/project-service/internal/auth"
	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/oauth"
	"github.com/plankit/project-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	OAuth        *handlers.OAuthHandler
	Verification *handlers.VerificationHandler
	Password     *handlers.PasswordHandler
	TwoFactor    *handlers.TwoFactorHandler
	Projects     *handlers.ProjectHandler

	Guard     *auth.Guard
	Registry  *oauth.Registry
	Metrics   *observability.Metrics
	RateLimit *RateLimiter
}

// RegisterRoutes wires HTTP routes. Each protected operation declares its
// own guard chain: global-role check, membership check, both, or neither.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))

	strict := cfg.RateLimit.Handle

	authGroup := app.Group("/auth")
	authGroup.Post("/register", strict, cfg.Auth.Register)
	authGroup.Post("/login", strict, cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	oauthGroup := authGroup.Group("/oauth", cfg.Guard.RequireProvider(cfg.Registry))
	oauthGroup.Get("/:provider", cfg.OAuth.Authorize)
	oauthGroup.Get("/callback/:provider", cfg.OAuth.Callback)

	authGroup.Post("/verify/request", strict, cfg.Verification.Request)
	authGroup.Get("/verify/:token", cfg.Verification.Confirm)

	authGroup.Post("/password/forgot", strict, cfg.Password.Forgot)
	authGroup.Post("/password/reset", strict, cfg.Password.Reset)

	authGroup.Post("/2fa/send", strict, cfg.TwoFactor.Send)
	authGroup.Post("/2fa/validate", strict, cfg.TwoFactor.Validate)
	authGroup.Post("/2fa/toggle", cfg.Guard.RequireAuth(), cfg.TwoFactor.Toggle)

	app.Get("/me", cfg.Guard.RequireAuth(), cfg.Auth.Me)

	projects := app.Group("/projects", cfg.Guard.RequireAuth(), cfg.Guard.RequireRoles(domain.RoleRegular, domain.RoleAdmin))
	projects.Post("", cfg.Projects.Create)
	projects.Get("/:projectId", cfg.Guard.RequireProjectRoles(domain.MembershipVisitor, domain.MembershipMember, domain.MembershipAdmin), cfg.Projects.Get)
	projects.Get("/:projectId/members", cfg.Guard.RequireProjectRoles(domain.MembershipVisitor, domain.MembershipMember, domain.MembershipAdmin), cfg.Projects.Members)
	projects.Post("/:projectId/invites", cfg.Guard.RequireProjectRoles(domain.MembershipAdmin, domain.MembershipMember), cfg.Projects.Invite)

	app.Post("/invites/accept", cfg.Guard.RequireAuth(), cfg.Projects.AcceptInvite)
}
