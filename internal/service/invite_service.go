package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/plankit/project-service/internal/config"
	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/events"
	"github.com/plankit/project-service/internal/mail"
	"github.com/plankit/project-service/internal/repository"
	"github.com/plankit/project-service/internal/token"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// InviteService orchestrates project invitations: the invite token carries
// the target project and granted role in its payload.
type InviteService struct {
	users       repository.UserRepository
	projects    repository.ProjectRepository
	memberships repository.MembershipRepository
	tokens      *token.Manager
	notifier    mail.Notifier
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	cfg         config.AuthConfig
}

// NewInviteService builds the service.
func NewInviteService(cfg config.AuthConfig, users repository.UserRepository, projects repository.ProjectRepository, memberships repository.MembershipRepository, tokens *token.Manager, notifier mail.Notifier, dispatcher events.Dispatcher, logger *zap.Logger) *InviteService {
	return &InviteService{
		users:       users,
		projects:    projects,
		memberships: memberships,
		tokens:      tokens,
		notifier:    notifier,
		dispatcher:  dispatcher,
		logger:      logger,
		cfg:         cfg,
	}
}

// Send issues an invite token for (email, project, role) and mails it.
// The membership guard has already vetted the inviter.
func (s *InviteService) Send(ctx context.Context, inviterID, projectID, email string, role domain.MembershipRole) error {
	if !domain.ValidMembershipRole(role) {
		return apperrors.NewValidationError("unknown membership role", map[string]any{"role": role})
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if project == nil {
		return apperrors.NewNotFound("project", nil)
	}

	invite, err := s.tokens.IssueWithPayload(ctx, email, domain.TokenProjectInvite, s.cfg.TokenTTL(), token.OpaqueGenerator(), &domain.InvitePayload{
		ProjectID: projectID,
		Role:      role,
	})
	if err != nil {
		return err
	}
	if err := s.notifier.SendProjectInviteEmail(email, invite.Value, projectID, role); err != nil {
		s.logger.Error("invite mail failed", zap.String("email", email), zap.Error(err))
		return apperrors.NewInternalError(err)
	}

	events.Emit(ctx, s.dispatcher, events.Event{
		Type:  events.EventInviteSent,
		Email: email,
		Payload: events.InviteSentPayload{
			ProjectID: projectID,
			Role:      role,
			InviterID: inviterID,
		},
	})
	return nil
}

// Accept redeems an invite: the invited identity is resolved by the token
// email, the membership row is upserted and the token consumed.
func (s *InviteService) Accept(ctx context.Context, value string) (*domain.Membership, error) {
	tok, err := s.tokens.ValidateByValue(ctx, value, domain.TokenProjectInvite)
	if err != nil {
		return nil, err
	}
	if tok.Payload == nil {
		return nil, apperrors.NewInvalid("invite token missing payload")
	}

	user, err := s.users.FindByEmail(ctx, tok.SubjectEmail)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if user == nil {
		return nil, apperrors.NewNotFound("user", nil)
	}

	membership := &domain.Membership{
		UserID:    user.ID,
		ProjectID: tok.Payload.ProjectID,
		Role:      tok.Payload.Role,
	}
	if err := s.memberships.Upsert(ctx, membership); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tokens.Consume(ctx, tok.ID, tok.Kind); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.dispatcher, events.Event{
		Type:   events.EventMemberJoined,
		UserID: user.ID,
		Email:  user.Email,
		Payload: events.MemberJoinedPayload{
			ProjectID: membership.ProjectID,
			Role:      membership.Role,
		},
	})
	return membership, nil
}
