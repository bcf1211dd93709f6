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

// TwoFactorService orchestrates the emailed 6-digit sign-in code. Codes
// are validated by submitted value, not by link.
type TwoFactorService struct {
	users      repository.UserRepository
	sessions   *auth.SessionManager
	tokens     *token.Manager
	notifier   mail.Notifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuthConfig
}

// NewTwoFactorService builds the service.
func NewTwoFactorService(cfg config.AuthConfig, users repository.UserRepository, sessions *auth.SessionManager, tokens *token.Manager, notifier mail.Notifier, dispatcher events.Dispatcher, logger *zap.Logger) *TwoFactorService {
	return &TwoFactorService{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// Send issues a fresh code and mails it.
func (s *TwoFactorService) Send(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewNotFound("user", nil)
	}

	code, err := s.tokens.Issue(ctx, user.Email, domain.TokenTwoFactor, s.cfg.TokenTTL(), token.NumericGenerator())
	if err != nil {
		return err
	}
	if err := s.notifier.SendTwoFactorEmail(user.Email, code.Value); err != nil {
		s.logger.Error("two-factor mail failed", zap.String("email", user.Email), zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Validate checks the submitted code, consumes it and opens the session.
func (s *TwoFactorService) Validate(ctx context.Context, sess *session.Session, email, code string) (*domain.User, error) {
	tok, err := s.tokens.ValidateByCredentials(ctx, email, code, domain.TokenTwoFactor)
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

	if err := s.tokens.Consume(ctx, tok.ID, tok.Kind); err != nil {
		return nil, err
	}
	if err := s.sessions.OpenSession(sess, user.ID); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.dispatcher, events.Event{
		Type:   events.EventUserLoggedIn,
		UserID: user.ID,
		Email:  user.Email,
	})
	return user, nil
}

// SetEnabled toggles two-factor auth for the caller.
func (s *TwoFactorService) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if user == nil {
		return apperrors.NewNotFound("user", nil)
	}
	if err := s.users.UpdateTwoFactor(ctx, user, enabled); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
