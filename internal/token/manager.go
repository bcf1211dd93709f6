// Package token implements the single-use token lifecycle shared by email
// verification, password reset, two-factor codes and project invites.
package token

import (
	"context"
	"time"

	"github.com/plankit/project-service/internal/domain"
	"github.com/plankit/project-service/internal/observability"
	"github.com/plankit/project-service/internal/repository"
	apperrors "github.com/plankit/project-service/pkg/util"
)

// Manager owns every token mutation. Validation and consumption are split
// so a caller can finish dependent work between proving a token valid and
// irreversibly spending it.
type Manager struct {
	tokens  repository.TokenRepository
	metrics *observability.Metrics
	now     func() time.Time
}

// NewManager builds the lifecycle manager.
func NewManager(tokens repository.TokenRepository, metrics *observability.Metrics) *Manager {
	return &Manager{tokens: tokens, metrics: metrics, now: time.Now}
}

// Issue replaces any live token for (email, kind) with a fresh one.
// A failed delete aborts the issue; a value collision is surfaced, never
// overwritten.
func (m *Manager) Issue(ctx context.Context, email string, kind domain.TokenKind, ttl time.Duration, gen Generator) (*domain.Token, error) {
	return m.issue(ctx, email, kind, ttl, gen, nil)
}

// IssueWithPayload is Issue with an invite payload attached to the row.
func (m *Manager) IssueWithPayload(ctx context.Context, email string, kind domain.TokenKind, ttl time.Duration, gen Generator, payload *domain.InvitePayload) (*domain.Token, error) {
	return m.issue(ctx, email, kind, ttl, gen, payload)
}

func (m *Manager) issue(ctx context.Context, email string, kind domain.TokenKind, ttl time.Duration, gen Generator, payload *domain.InvitePayload) (*domain.Token, error) {
	if err := m.tokens.DeleteByEmailAndKind(ctx, email, kind); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	value, err := gen.Generate()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	token := &domain.Token{
		SubjectEmail: email,
		Value:        value,
		Kind:         kind,
		Payload:      payload,
		ExpiresAt:    m.now().Add(ttl),
	}
	if err := m.tokens.Create(ctx, token); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	m.metrics.RecordTokenIssued(string(kind))
	return token, nil
}

// ValidateByCredentials checks the submitted code against the live token
// for (email, kind). The token is returned unconsumed.
func (m *Manager) ValidateByCredentials(ctx context.Context, email, submitted string, kind domain.TokenKind) (*domain.Token, error) {
	token, err := m.tokens.FindLive(ctx, email, kind)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if token == nil {
		m.metrics.RecordTokenValidationFailure(string(kind), "not_found")
		return nil, apperrors.NewNotFound("token", nil)
	}
	if token.Value != submitted {
		m.metrics.RecordTokenValidationFailure(string(kind), "mismatch")
		return nil, apperrors.NewInvalid("token value mismatch")
	}
	return m.checkExpiry(ctx, token)
}

// ValidateByValue looks the token up by its own value, for link-based
// flows where no separate submitted code exists.
func (m *Manager) ValidateByValue(ctx context.Context, value string, kind domain.TokenKind) (*domain.Token, error) {
	token, err := m.tokens.FindByValue(ctx, value, kind)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if token == nil {
		m.metrics.RecordTokenValidationFailure(string(kind), "not_found")
		return nil, apperrors.NewNotFound("token", nil)
	}
	return m.checkExpiry(ctx, token)
}

// checkExpiry eagerly deletes a stale row so it cannot be retried.
func (m *Manager) checkExpiry(ctx context.Context, token *domain.Token) (*domain.Token, error) {
	if token.Expired(m.now()) {
		m.metrics.RecordTokenValidationFailure(string(token.Kind), "expired")
		if _, err := m.tokens.DeleteByID(ctx, token.ID, token.Kind); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		return nil, apperrors.NewExpired("token expired")
	}
	return token, nil
}

// Consume spends a token. Deleting an already-absent token is not an
// error, but only an actual removal counts as a consumption.
func (m *Manager) Consume(ctx context.Context, id string, kind domain.TokenKind) error {
	deleted, err := m.tokens.DeleteByID(ctx, id, kind)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if deleted {
		m.metrics.RecordTokenConsumed(string(kind))
	}
	return nil
}
