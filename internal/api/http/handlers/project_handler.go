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

// ProjectHandler exposes the minimal project surface plus invitations.
type ProjectHandler struct {
	projects *service.ProjectService
	invites  *service.InviteService
}

// NewProjectHandler constructs handler.
func NewProjectHandler(projects *service.ProjectService, invites *service.InviteService) *ProjectHandler {
	return &ProjectHandler{projects: projects, invites: invites}
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}

	project, err := h.projects.Create(c.UserContext(), principal.UserID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"project": projectResponse(project)},
	})
}

// Get handles GET /projects/:projectId.
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	project, err := h.projects.Get(c.UserContext(), c.Params("projectId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"project": projectResponse(project)},
	})
}

// Members handles GET /projects/:projectId/members.
func (h *ProjectHandler) Members(c *fiber.Ctx) error {
	memberships, err := h.projects.Members(c.UserContext(), c.Params("projectId"))
	if err != nil {
		return err
	}

	out := make([]dto.MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		out = append(out, membershipResponse(&m))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"members": out}})
}

// Invite handles POST /projects/:projectId/invites.
func (h *ProjectHandler) Invite(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}

	var req dto.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}
	if req.Email == "" || req.Role == "" {
		return apperrors.NewInvalid("email and role required")
	}

	err := h.invites.Send(c.UserContext(), principal.UserID, c.Params("projectId"), req.Email, domain.MembershipRole(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// AcceptInvite handles POST /invites/accept.
func (h *ProjectHandler) AcceptInvite(c *fiber.Ctx) error {
	var req dto.AcceptInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalid("invalid payload")
	}
	if req.Token == "" {
		return apperrors.NewInvalid("token required")
	}

	membership, err := h.invites.Accept(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"membership": membershipResponse(membership)},
	})
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:      project.ID,
		Name:    project.Name,
		OwnerID: project.OwnerID,
	}
}

func membershipResponse(m *domain.Membership) dto.MembershipResponse {
	return dto.MembershipResponse{
		UserID:    m.UserID,
		ProjectID: m.ProjectID,
		Role:      string(m.Role),
	}
}
