package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plankit/project-service/internal/config"
	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/events"
	"github.com/plankit/project-service/internal/oauth"
	apperrors "github.com/plankit/project-service/pkg/util"
)

type oauthFixture struct {
	harness  *sessionHarness
	svc      *OAuthService
	users    *memUserRepo
	state    *oauth.StateSigner
	provider *httptest.Server
}

func newOAuthFixture(t *testing.T) *oauthFixture {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "at-123"})
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer at-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":     "google-uid-1",
			"email":   "ivan@example.com",
			"name":    "Ivan",
			"picture": "https://img.example.com/ivan.png",
		})
	})
	provider := httptest.NewServer(mux)
	t.Cleanup(provider.Close)

	registry := oauth.NewRegistry(config.OAuthConfig{Providers: []config.OAuthProviderConfig{{
		Name:       "google",
		ClientID:   "cid",
		AuthURL:    provider.URL + "/auth",
		TokenURL:   provider.URL + "/token",
		ProfileURL: provider.URL + "/profile",
		Scopes:     []string{"openid", "email"},
	}}}, "https://app.example.com", zap.NewNop())

	users := newMemUserRepo()
	state := oauth.NewStateSigner("test-secret", 10*time.Minute)
	harness := newSessionHarness()

	svc := NewOAuthService(registry, state, users, harness.sessions, events.NewInMemoryDispatcher(), zap.NewNop())
	return &oauthFixture{harness: harness, svc: svc, users: users, state: state, provider: provider}
}

func TestOAuthCallbackProvisionsAndLogsIn(t *testing.T) {
	t.Parallel()

	f := newOAuthFixture(t)
	ctx := context.Background()

	state, err := f.state.Sign("google")
	require.NoError(t, err)

	hasSession, err := f.harness.run(t, func(sess *session.Session) error {
		user, callErr := f.svc.Callback(ctx, sess, "google", "good-code", state)
		if callErr != nil {
			return callErr
		}
		require.Equal(t, "ivan@example.com", user.Email)
		require.Equal(t, domain.MethodGoogle, user.Method)
		require.True(t, user.IsVerified)
		return nil
	})
	require.NoError(t, err)
	require.True(t, hasSession)
	require.Len(t, f.users.users, 1)

	// A second callback with the same identity logs in without creating
	// another user.
	state, err = f.state.Sign("google")
	require.NoError(t, err)
	hasSession, err = f.harness.run(t, func(sess *session.Session) error {
		_, callErr := f.svc.Callback(ctx, sess, "google", "good-code", state)
		return callErr
	})
	require.NoError(t, err)
	require.True(t, hasSession)
	require.Len(t, f.users.users, 1)
}

func TestOAuthCallbackRejectsForeignState(t *testing.T) {
	t.Parallel()

	f := newOAuthFixture(t)
	state, err := f.state.Sign("github")
	require.NoError(t, err)

	hasSession, err := f.harness.run(t, func(sess *session.Session) error {
		_, callErr := f.svc.Callback(context.Background(), sess, "google", "good-code", state)
		return callErr
	})
	require.True(t, apperrors.IsCode(err, "INVALID"))
	require.False(t, hasSession)
	require.Empty(t, f.users.users)
}

func TestOAuthCallbackExchangeFailureLeavesNoState(t *testing.T) {
	t.Parallel()

	f := newOAuthFixture(t)
	state, err := f.state.Sign("google")
	require.NoError(t, err)

	hasSession, err := f.harness.run(t, func(sess *session.Session) error {
		_, callErr := f.svc.Callback(context.Background(), sess, "google", "bad-code", state)
		return callErr
	})
	require.True(t, apperrors.IsCode(err, "TOKEN_EXCHANGE_FAILED"))
	require.False(t, hasSession)
	require.Empty(t, f.users.users)
}

func TestOAuthAuthorizationURLUnknownProvider(t *testing.T) {
	t.Parallel()

	f := newOAuthFixture(t)
	_, err := f.svc.AuthorizationURL("facebook")
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
