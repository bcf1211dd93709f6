package service

import (
	"context"

	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"github.com/plankit/project-service/internal/auth"
	"github.com/plankit/project-service/internal/config"
	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/events"
	"github.com/plankit/project-service/internal/mail"
	"github.com/plankit/project-service/internal/repository"
	"github.com/plankit/project-service/internal/token"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// VerificationService orchestrates email confirmation. It depends on the
// session manager's narrow open-session capability; the authenticator
// never depends back on it.
type VerificationService struct {
	users      repository.UserRepository
	sessions   *auth.SessionManager
	tokens     *token.Manager
	notifier   mail.Notifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuthConfig
}

// NewVerificationService builds the service.
func NewVerificationService(cfg config.AuthConfig, users repository.UserRepository, sessions *auth.SessionManager, tokens *token.Manager, notifier mail.Notifier, dispatcher events.Dispatcher, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// Request issues a fresh verification token and mails the link.
func (s *VerificationService) Request(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewNotFound("user", nil)
	}
	if user.IsVerified {
		return apperrors.NewConflict("email already verified", nil)
	}

	verification, err := s.tokens.Issue(ctx, user.Email, domain.TokenVerification, s.cfg.TokenTTL(), token.OpaqueGenerator())
	if err != nil {
		return err
	}
	if err := s.notifier.SendConfirmationEmail(user.Email, verification.Value); err != nil {
		s.logger.Error("confirmation mail failed", zap.String("email", user.Email), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Confirm redeems a verification link, marks the identity verified,
// consumes the token and opens a session.
func (s *VerificationService) Confirm(ctx context.Context, sess *session.Session, value string) (*domain.User, error) {
	tok, err := s.tokens.ValidateByValue(ctx, value, domain.TokenVerification)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, tok.SubjectEmail)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if user == nil {
		return nil, apperrors.NewNotFound("user", nil)
	}

	if err := s.users.UpdateVerified(ctx, user, true); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tokens.Consume(ctx, tok.ID, tok.Kind); err != nil {
		return nil, err
	}

	if err := s.sessions.OpenSession(sess, user.ID); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.dispatcher, events.Event{
		Type:   events.EventUserVerified,
		UserID: user.ID,
		Email:  user.Email,
	})
	return user, nil
}
