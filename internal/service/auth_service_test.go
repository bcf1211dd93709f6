package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/plankit/project-service/internal/auth"
	"github.com/plankit/project-service/internal/config"
	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/events"
	"github.com/plankit/project-service/internal/token"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// sessionHarness runs a service call inside a fiber handler so a real
// session is in play, and reports whether a session cookie was issued.
type sessionHarness struct {
	app      *fiber.App
	sessions *auth.SessionManager
}

func newSessionHarness() *sessionHarness {
	return &sessionHarness{
		app:      fiber.New(),
		sessions: auth.NewSessionManager(nil, config.SessionConfig{CookieName: "sid", TTLHours: 1}),
	}
}

// run invokes fn with a live session and returns true when the request
// ended with a session cookie bound to a user.
func (h *sessionHarness) run(t *testing.T, fn func(*session.Session) error) (bool, error) {
	t.Helper()

	var callErr error
	path := "/harness"
	h.app.Post(path, func(c *fiber.Ctx) error {
		sess, err := h.sessions.Handle(c)
		if err != nil {
			return err
		}
		callErr = fn(sess)
		return c.SendStatus(http.StatusOK)
	})
	defer func() { h.app = fiber.New() }()

	resp, err := h.app.Test(httptest.NewRequest(http.MethodPost, path, nil))
	require.NoError(t, err)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "sid" && cookie.Value != "" {
			return true, callErr
		}
	}
	return false, callErr
}

type authFixture struct {
	harness  *sessionHarness
	svc      *AuthService
	users    *memUserRepo
	tokens   *memTokenRepo
	notifier *recordingNotifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	hash, err := auth.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)

	users := newMemUserRepo(
		&domain.User{ID: "u-dave", Email: "dave@example.com", PasswordHash: hash, Role: domain.RoleRegular, Method: domain.MethodLocal},
		&domain.User{ID: "u-erin", Email: "erin@example.com", PasswordHash: hash, Role: domain.RoleRegular, Method: domain.MethodLocal, IsTwoFactorEnabled: true},
	)
	tokens := newMemTokenRepo()
	notifier := &recordingNotifier{}
	harness := newSessionHarness()

	svc := NewAuthService(
		config.AuthConfig{TokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost},
		users, harness.sessions,
		token.NewManager(tokens, nil),
		notifier,
		events.NewInMemoryDispatcher(),
		zap.NewNop(),
	)
	return &authFixture{harness: harness, svc: svc, users: users, tokens: tokens, notifier: notifier}
}

func TestRegisterOpensSessionAndMailsVerification(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()

	var user *domain.User
	hasSession, err := f.harness.run(t, func(sess *session.Session) error {
		var callErr error
		user, callErr = f.svc.Register(ctx, sess, "frank@example.com", "secret-enough", "Frank")
		return callErr
	})
	require.NoError(t, err)
	require.True(t, hasSession)
	require.NotEmpty(t, user.ID)
	require.False(t, user.IsVerified)
	require.Len(t, f.notifier.confirmations, 1)
	require.Equal(t, 1, f.tokens.count(domain.TokenVerification))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	hasSession, err := f.harness.run(t, func(sess *session.Session) error {
		_, callErr := f.svc.Register(context.Background(), sess, "dave@example.com", "whatever", "Dave II")
		return callErr
	})
	require.True(t, apperrors.IsCode(err, "CONFLICT"))
	require.False(t, hasSession)
}

func TestLoginOpensSession(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	hasSession, err := f.harness.run(t, func(sess *session.Session) error {
		user, twoFactor, callErr := f.svc.Login(context.Background(), sess, "dave@example.com", "correct-horse")
		if callErr != nil {
			return callErr
		}
		require.False(t, twoFactor)
		require.Equal(t, "u-dave", user.ID)
		return nil
	})
	require.NoError(t, err)
	require.True(t, hasSession)
}

func TestLoginBadCredentials(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	for _, email := range []string{"dave@example.com", "nobody@example.com"} {
		hasSession, err := f.harness.run(t, func(sess *session.Session) error {
			_, _, callErr := f.svc.Login(context.Background(), sess, email, "wrong-password")
			return callErr
		})
		require.True(t, apperrors.IsCode(err, "UNAUTHENTICATED"))
		require.False(t, hasSession)
	}
}

func TestLoginWithTwoFactorDefersSession(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	hasSession, err := f.harness.run(t, func(sess *session.Session) error {
		_, twoFactor, callErr := f.svc.Login(context.Background(), sess, "erin@example.com", "correct-horse")
		if callErr != nil {
			return callErr
		}
		require.True(t, twoFactor)
		return nil
	})
	require.NoError(t, err)
	require.False(t, hasSession)
	require.Len(t, f.notifier.codes, 1)
	require.Regexp(t, regexp.MustCompile(`^\d{6}$`), f.notifier.lastToken)
}

func TestTwoFactorValidateOpensSession(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	ctx := context.Background()

	twoFactor := NewTwoFactorService(
		config.AuthConfig{TokenTTLMinutes: 60},
		f.users, f.harness.sessions,
		token.NewManager(f.tokens, nil),
		f.notifier,
		events.NewInMemoryDispatcher(),
		zap.NewNop(),
	)

	_, err := f.harness.run(t, func(sess *session.Session) error {
		_, _, callErr := f.svc.Login(ctx, sess, "erin@example.com", "correct-horse")
		return callErr
	})
	require.NoError(t, err)
	code := f.notifier.lastToken

	// A wrong code does not open a session and leaves the real one live.
	hasSession, err := f.harness.run(t, func(sess *session.Session) error {
		_, callErr := twoFactor.Validate(ctx, sess, "erin@example.com", "000000x")
		return callErr
	})
	require.True(t, apperrors.IsCode(err, "INVALID"))
	require.False(t, hasSession)

	hasSession, err = f.harness.run(t, func(sess *session.Session) error {
		user, callErr := twoFactor.Validate(ctx, sess, "erin@example.com", code)
		if callErr != nil {
			return callErr
		}
		require.Equal(t, "u-erin", user.ID)
		return nil
	})
	require.NoError(t, err)
	require.True(t, hasSession)
	require.Zero(t, f.tokens.count(domain.TokenTwoFactor))
}
