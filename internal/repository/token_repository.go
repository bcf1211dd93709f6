package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plankit/project-service/internal/domain"
)

// ErrValueTaken reports a collision on the globally unique token value.
// A collision is a generation fault; the existing row is never overwritten.
var ErrValueTaken = errors.New("token value already exists")

// TokenRepository persists single-use token records. Lookups that find no
// record return (nil, nil), not an error.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	FindLive(ctx context.Context, email string, kind domain.TokenKind) (*domain.Token, error)
	FindByValue(ctx context.Context, value string, kind domain.TokenKind) (*domain.Token, error)
	DeleteByEmailAndKind(ctx context.Context, email string, kind domain.TokenKind) error
	DeleteByID(ctx context.Context, id string, kind domain.TokenKind) (bool, error)
}

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository returns a Postgres-backed implementation.
func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &tokenRepository{pool: pool}
}

const uniqueViolation = "23505"

func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	payload, err := marshalPayload(token.Payload)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO tokens (subject_email, value, kind, payload, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	err = r.pool.QueryRow(ctx, query,
		token.SubjectEmail,
		token.Value,
		token.Kind,
		payload,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: kind=%s", ErrValueTaken, token.Kind)
	}
	return err
}

func (r *tokenRepository) FindLive(ctx context.Context, email string, kind domain.TokenKind) (*domain.Token, error) {
	// The most recently persisted row wins when a rare concurrent issue
	// leaves two rows for the same pair.
	const query = `
        SELECT id, subject_email, value, kind, payload, expires_at, created_at
        FROM tokens WHERE subject_email=$1 AND kind=$2
        ORDER BY created_at DESC LIMIT 1`
	return r.findOne(ctx, query, email, kind)
}

func (r *tokenRepository) FindByValue(ctx context.Context, value string, kind domain.TokenKind) (*domain.Token, error) {
	const query = `
        SELECT id, subject_email, value, kind, payload, expires_at, created_at
        FROM tokens WHERE value=$1 AND kind=$2`
	return r.findOne(ctx, query, value, kind)
}

func (r *tokenRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Token, error) {
	var (
		token   domain.Token
		payload []byte
	)
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&token.ID,
		&token.SubjectEmail,
		&token.Value,
		&token.Kind,
		&payload,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if token.Payload, err = unmarshalPayload(payload); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) DeleteByEmailAndKind(ctx context.Context, email string, kind domain.TokenKind) error {
	const query = `DELETE FROM tokens WHERE subject_email=$1 AND kind=$2`
	_, err := r.pool.Exec(ctx, query, email, kind)
	return err
}

// DeleteByID removes a token row, reporting whether one existed.
func (r *tokenRepository) DeleteByID(ctx context.Context, id string, kind domain.TokenKind) (bool, error) {
	const query = `DELETE FROM tokens WHERE id=$1 AND kind=$2`
	tag, err := r.pool.Exec(ctx, query, id, kind)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func marshalPayload(payload *domain.InvitePayload) ([]byte, error) {
	if payload == nil {
		return nil, nil
	}
	return json.Marshal(payload)
}

func unmarshalPayload(raw []byte) (*domain.InvitePayload, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var payload domain.InvitePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
