package service

import (
	"context"

	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/repository"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// ProjectService manages the minimal project records invites and
// memberships hang off. Task and column modeling lives elsewhere.
type ProjectService struct {
	projects    repository.ProjectRepository
	memberships repository.MembershipRepository
}

// NewProjectService builds the service.
func NewProjectService(projects repository.ProjectRepository, memberships repository.MembershipRepository) *ProjectService {
	return &ProjectService{projects: projects, memberships: memberships}
}

// Create provisions a project and makes the owner a project admin.
func (s *ProjectService) Create(ctx context.Context, ownerID, name string) (*domain.Project, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("project name required", nil)
	}

	project := &domain.Project{Name: name, OwnerID: ownerID}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}

	membership := &domain.Membership{
		UserID:    ownerID,
		ProjectID: project.ID,
		Role:      domain.MembershipAdmin,
	}
	if err := s.memberships.Upsert(ctx, membership); err != nil {
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// Get returns a project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if project == nil {
		return nil, apperrors.NewNotFound("project", nil)
	}
	return project, nil
}

// Members lists project memberships.
func (s *ProjectService) Members(ctx context.Context, projectID string) ([]domain.Membership, error) {
	memberships, err := s.memberships.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return memberships, nil
}
