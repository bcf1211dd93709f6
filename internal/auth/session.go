package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/plankit/project-service/internal/config"
	apperrors "github.com/plankit/project-service/pkg/util"
)

const sessionUserKey = "user_id"

// SessionManager binds user ids into server-side sessions. A session is
// binary: bound to a user id, or anonymous.
type SessionManager struct {
	store *session.Store
}

// NewSessionManager builds the manager on top of a fiber storage backend.
func NewSessionManager(storage fiber.Storage, cfg config.SessionConfig) *SessionManager {
	store := session.New(session.Config{
		Storage:        storage,
		Expiration:     cfg.TTL(),
		KeyLookup:      "cookie:" + cfg.CookieName,
		CookieSecure:   cfg.CookieSecure,
		CookieHTTPOnly: cfg.CookieHTTPOnly,
		CookieSameSite: "Lax",
	})
	return &SessionManager{store: store}
}

// Handle returns the session bound to the request.
func (m *SessionManager) Handle(c *fiber.Ctx) (*session.Session, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return sess, nil
}

// OpenSession binds userID into the session and forces a durable save.
// A save failure is fatal to the request; the caller is not logged in.
func (m *SessionManager) OpenSession(sess *session.Session, userID string) error {
	sess.Set(sessionUserKey, userID)
	if err := sess.Save(); err != nil {
		return apperrors.NewSessionSaveFailed(err)
	}
	return nil
}

// CloseSession invalidates the session.
func (m *SessionManager) CloseSession(sess *session.Session) error {
	if err := sess.Destroy(); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// UserID reads the bound user id, if any.
func (m *SessionManager) UserID(sess *session.Session) (string, bool) {
	val := sess.Get(sessionUserKey)
	userID, ok := val.(string)
	return userID, ok && userID != ""
}
