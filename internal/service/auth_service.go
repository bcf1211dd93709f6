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

// AuthService is the session authenticator: it turns validated local
// credentials into server-side sessions.
type AuthService struct {
	users      repository.UserRepository
	sessions   *auth.SessionManager
	tokens     *token.Manager
	notifier   mail.Notifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuthConfig
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, sessions *auth.SessionManager, tokens *token.Manager, notifier mail.Notifier, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// Register provisions a local identity, mails a verification link and
// opens a session. Duplicate emails are a Conflict.
func (s *AuthService) Register(ctx context.Context, sess *session.Session, email, password, displayName string) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if existing != nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	}

	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         domain.RoleRegular,
		Method:       domain.MethodLocal,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	verification, err := s.tokens.Issue(ctx, user.Email, domain.TokenVerification, s.cfg.TokenTTL(), token.OpaqueGenerator())
	if err != nil {
		return nil, err
	}
	if err := s.notifier.SendConfirmationEmail(user.Email, verification.Value); err != nil {
		s.logger.Error("confirmation mail failed", zap.String("email", user.Email), zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.sessions.OpenSession(sess, user.ID); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.dispatcher, events.Event{
		Type:    events.EventUserRegistered,
		UserID:  user.ID,
		Email:   user.Email,
		Payload: events.UserRegisteredPayload{Method: user.Method},
	})
	return user, nil
}

// Login authenticates local credentials. When two-factor auth is enabled
// no session is opened; a code is mailed and the caller must validate it.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, email, password string) (*domain.User, bool, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, apperrors.MapError(err)
	}
	if user == nil {
		return nil, false, apperrors.NewUnauthenticated("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, false, apperrors.NewUnauthenticated("invalid credentials")
	}

	if user.IsTwoFactorEnabled {
		code, err := s.tokens.Issue(ctx, user.Email, domain.TokenTwoFactor, s.cfg.TokenTTL(), token.NumericGenerator())
		if err != nil {
			return nil, false, err
		}
		if err := s.notifier.SendTwoFactorEmail(user.Email, code.Value); err != nil {
			s.logger.Error("two-factor mail failed", zap.String("email", user.Email), zap.Error(err))
			return nil, false, apperrors.NewInternalError(err)
		}
		return user, true, nil
	}

	if err := s.sessions.OpenSession(sess, user.ID); err != nil {
		return nil, false, err
	}

	events.Emit(ctx, s.dispatcher, events.Event{
		Type:   events.EventUserLoggedIn,
		UserID: user.ID,
		Email:  user.Email,
	})
	return user, false, nil
}

// Logout invalidates the session.
func (s *AuthService) Logout(sess *session.Session) error {
	return s.sessions.CloseSession(sess)
}
