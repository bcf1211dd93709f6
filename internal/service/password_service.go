package service

import (
	"context"

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

// PasswordService orchestrates password recovery. Resetting a password
// never opens a session.
type PasswordService struct {
	users      repository.UserRepository
	tokens     *token.Manager
	notifier   mail.Notifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuthConfig
}

// NewPasswordService builds the service.
func NewPasswordService(cfg config.AuthConfig, users repository.UserRepository, tokens *token.Manager, notifier mail.Notifier, dispatcher events.Dispatcher, logger *zap.Logger) *PasswordService {
	return &PasswordService{
		users:      users,
		tokens:     tokens,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// Request issues a reset token keyed by email and mails the link.
func (s *PasswordService) Request(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewNotFound("user", nil)
	}

	reset, err := s.tokens.Issue(ctx, user.Email, domain.TokenPasswordReset, s.cfg.TokenTTL(), token.OpaqueGenerator())
	if err != nil {
		return err
	}
	if err := s.notifier.SendPasswordResetEmail(user.Email, reset.Value); err != nil {
		s.logger.Error("password reset mail failed", zap.String("email", user.Email), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Reset redeems the token, persists the new credential and consumes the
// token once the update has succeeded.
func (s *PasswordService) Reset(ctx context.Context, value, newPassword string) error {
	tok, err := s.tokens.ValidateByValue(ctx, value, domain.TokenPasswordReset)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, tok.SubjectEmail)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewNotFound("user", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user, hash); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.tokens.Consume(ctx, tok.ID, tok.Kind); err != nil {
		return err
	}

	events.Emit(ctx, s.dispatcher, events.Event{
		Type:   events.EventPasswordReset,
		UserID: user.ID,
		Email:  user.Email,
	})
	return nil
}
