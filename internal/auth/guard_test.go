package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plankit/project-service/internal/config"
	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/oauth"
	apperrors "github.com/plankit/project-service/pkg/util"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateVerified(_ context.Context, user *domain.User, verified bool) error {
	user.IsVerified = verified
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, user *domain.User, hash string) error {
	user.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) UpdateTwoFactor(_ context.Context, user *domain.User, enabled bool) error {
	user.IsTwoFactorEnabled = enabled
	return nil
}

type fakeMembershipRepo struct {
	rows map[string]*domain.Membership
}

func membershipKey(userID, projectID string) string {
	return userID + "|" + projectID
}

func (f *fakeMembershipRepo) Find(_ context.Context, userID, projectID string) (*domain.Membership, error) {
	return f.rows[membershipKey(userID, projectID)], nil
}

func (f *fakeMembershipRepo) Upsert(_ context.Context, m *domain.Membership) error {
	f.rows[membershipKey(m.UserID, m.ProjectID)] = m
	return nil
}

func (f *fakeMembershipRepo) ListByProject(_ context.Context, projectID string) ([]domain.Membership, error) {
	var out []domain.Membership
	for _, m := range f.rows {
		if m.ProjectID == projectID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMembershipRepo) Delete(_ context.Context, userID, projectID string) error {
	delete(f.rows, membershipKey(userID, projectID))
	return nil
}

type guardFixture struct {
	app         *fiber.App
	sessions    *SessionManager
	users       *fakeUserRepo
	memberships *fakeMembershipRepo
	guard       *Guard
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()

	users := &fakeUserRepo{users: map[string]*domain.User{
		"u-regular": {ID: "u-regular", Email: "regular@example.com", Role: domain.RoleRegular},
		"u-admin":   {ID: "u-admin", Email: "admin@example.com", Role: domain.RoleAdmin},
	}}
	memberships := &fakeMembershipRepo{rows: map[string]*domain.Membership{}}

	sessions := NewSessionManager(nil, config.SessionConfig{CookieName: "sid", TTLHours: 1, CookieHTTPOnly: true})
	guard := NewGuard(sessions, users, memberships, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})

	// Test-only login endpoint to mint a session cookie.
	app.Post("/test/login/:id", func(c *fiber.Ctx) error {
		sess, err := sessions.Handle(c)
		if err != nil {
			return err
		}
		if err := sessions.OpenSession(sess, c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	})

	ok := func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) }
	app.Get("/authed", guard.RequireAuth(), ok)
	app.Get("/admin-only", guard.RequireAuth(), guard.RequireRoles(domain.RoleAdmin), ok)
	app.Get("/projects/:projectId", guard.RequireAuth(), guard.RequireProjectRoles(domain.MembershipAdmin, domain.MembershipMember), ok)
	app.Post("/reports", guard.RequireAuth(), guard.RequireProjectRoles(domain.MembershipAdmin, domain.MembershipMember), ok)

	return &guardFixture{app: app, sessions: sessions, users: users, memberships: memberships, guard: guard}
}

func (f *guardFixture) login(t *testing.T, userID string) string {
	t.Helper()
	resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, "/test/login/"+userID, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "sid" {
			return cookie.Value
		}
	}
	t.Fatal("no session cookie issued")
	return ""
}

func (f *guardFixture) get(t *testing.T, path, sid string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	f := newGuardFixture(t)

	require.Equal(t, http.StatusUnauthorized, f.get(t, "/authed", ""))

	sid := f.login(t, "u-regular")
	require.Equal(t, http.StatusOK, f.get(t, "/authed", sid))

	// A session bound to a vanished user does not authenticate.
	ghost := f.login(t, "u-gone")
	require.Equal(t, http.StatusUnauthorized, f.get(t, "/authed", ghost))
}

func TestRoleGuard(t *testing.T) {
	t.Parallel()
	f := newGuardFixture(t)

	require.Equal(t, http.StatusUnauthorized, f.get(t, "/admin-only", ""))

	regular := f.login(t, "u-regular")
	require.Equal(t, http.StatusForbidden, f.get(t, "/admin-only", regular))

	admin := f.login(t, "u-admin")
	require.Equal(t, http.StatusOK, f.get(t, "/admin-only", admin))
}

func TestMembershipGuard(t *testing.T) {
	t.Parallel()
	f := newGuardFixture(t)
	sid := f.login(t, "u-regular")

	// No membership row.
	require.Equal(t, http.StatusForbidden, f.get(t, "/projects/p1", sid))

	f.memberships.rows[membershipKey("u-regular", "p1")] = &domain.Membership{
		UserID: "u-regular", ProjectID: "p1", Role: domain.MembershipVisitor,
	}
	require.Equal(t, http.StatusForbidden, f.get(t, "/projects/p1", sid))

	f.memberships.rows[membershipKey("u-regular", "p1")].Role = domain.MembershipMember
	require.Equal(t, http.StatusOK, f.get(t, "/projects/p1", sid))

	// Global role does not substitute for membership.
	admin := f.login(t, "u-admin")
	require.Equal(t, http.StatusForbidden, f.get(t, "/projects/p1", admin))
}

func TestMembershipGuardResolvesProjectFromBodyAndQuery(t *testing.T) {
	t.Parallel()
	f := newGuardFixture(t)
	sid := f.login(t, "u-regular")
	f.memberships.rows[membershipKey("u-regular", "p2")] = &domain.Membership{
		UserID: "u-regular", ProjectID: "p2", Role: domain.MembershipAdmin,
	}

	post := func(path, body string) int {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		resp, err := f.app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, http.StatusOK, post("/reports", `{"project_id":"p2"}`))
	require.Equal(t, http.StatusOK, post("/reports?project_id=p2", ""))
	// No resolvable project id.
	require.Equal(t, http.StatusForbidden, post("/reports", ""))
}

func TestProviderGuard(t *testing.T) {
	t.Parallel()
	f := newGuardFixture(t)

	registry := oauth.NewRegistry(config.OAuthConfig{Providers: []config.OAuthProviderConfig{
		{Name: "google", ClientID: "id"},
	}}, "https://app.example.com", zap.NewNop())

	f.app.Get("/oauth/:provider", f.guard.RequireProvider(registry), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	require.Equal(t, http.StatusOK, f.get(t, "/oauth/google", ""))
	require.Equal(t, http.StatusNotFound, f.get(t, "/oauth/facebook", ""))
}
