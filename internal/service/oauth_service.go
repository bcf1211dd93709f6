package service

import (
	"context"

	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"github.com/plankit/project-service/internal/auth"
	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/events"
	"github.com/plankit/project-service/internal/oauth"
	"github.com/plankit/project-service/internal/repository"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// OAuthService redeems provider callbacks into sessions. A failed
// exchange leaves no partial state: no session opened, no token consumed.
type OAuthService struct {
	registry   *oauth.Registry
	state      *oauth.StateSigner
	users      repository.UserRepository
	sessions   *auth.SessionManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewOAuthService builds the service.
func NewOAuthService(registry *oauth.Registry, state *oauth.StateSigner, users repository.UserRepository, sessions *auth.SessionManager, dispatcher events.Dispatcher, logger *zap.Logger) *OAuthService {
	return &OAuthService{
		registry:   registry,
		state:      state,
		users:      users,
		sessions:   sessions,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// AuthorizationURL mints a signed state and builds the consent URL.
func (s *OAuthService) AuthorizationURL(provider string) (string, error) {
	adapter, ok := s.registry.FindByName(provider)
	if !ok {
		return "", apperrors.NewNotFound("oauth provider", nil)
	}
	state, err := s.state.Sign(provider)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return adapter.AuthorizationURL(state), nil
}

// Callback verifies the state, exchanges the code, finds or provisions
// the federated identity and opens a session.
func (s *OAuthService) Callback(ctx context.Context, sess *session.Session, provider, code, state string) (*domain.User, error) {
	adapter, ok := s.registry.FindByName(provider)
	if !ok {
		return nil, apperrors.NewNotFound("oauth provider", nil)
	}
	if err := s.state.Verify(state, provider); err != nil {
		return nil, apperrors.NewInvalid("invalid oauth state")
	}

	profile, err := adapter.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if user == nil {
		user = &domain.User{
			Email:       profile.Email,
			DisplayName: profile.Name,
			Picture:     profile.Picture,
			Role:        domain.RoleRegular,
			Method:      methodForProvider(provider),
			IsVerified:  true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, apperrors.MapError(err)
		}
		events.Emit(ctx, s.dispatcher, events.Event{
			Type:    events.EventUserRegistered,
			UserID:  user.ID,
			Email:   user.Email,
			Payload: events.UserRegisteredPayload{Method: user.Method},
		})
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

func methodForProvider(provider string) domain.AuthMethod {
	switch provider {
	case "google":
		return domain.MethodGoogle
	case "github":
		return domain.MethodGithub
	}
	return domain.MethodLocal
}
