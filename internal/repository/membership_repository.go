package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plankit/project-service/internal/domain"
)

// MembershipRepository persists (user, project, role) associations.
// Find returns (nil, nil) when the user is not a member.
type MembershipRepository interface {
	Find(ctx context.Context, userID, projectID string) (*domain.Membership, error)
	Upsert(ctx context.Context, membership *domain.Membership) error
	ListByProject(ctx context.Context, projectID string) ([]domain.Membership, error)
	Delete(ctx context.Context, userID, projectID string) error
}

type membershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository returns a Postgres-backed implementation.
func NewMembershipRepository(pool *pgxpool.Pool) MembershipRepository {
	return &membershipRepository{pool: pool}
}

func (r *membershipRepository) Find(ctx context.Context, userID, projectID string) (*domain.Membership, error) {
	const query = `
        SELECT user_id, project_id, role, created_at
        FROM memberships WHERE user_id=$1 AND project_id=$2`

	var membership domain.Membership
	err := r.pool.QueryRow(ctx, query, userID, projectID).Scan(
		&membership.UserID,
		&membership.ProjectID,
		&membership.Role,
		&membership.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepository) Upsert(ctx context.Context, membership *domain.Membership) error {
	const query = `
        INSERT INTO memberships (user_id, project_id, role)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, project_id) DO UPDATE SET role=EXCLUDED.role
        RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		membership.UserID,
		membership.ProjectID,
		membership.Role,
	).Scan(&membership.CreatedAt)
}

func (r *membershipRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Membership, error) {
	const query = `
        SELECT user_id, project_id, role, created_at
        FROM memberships WHERE project_id=$1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(&m.UserID, &m.ProjectID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *membershipRepository) Delete(ctx context.Context, userID, projectID string) error {
	const query = `DELETE FROM memberships WHERE user_id=$1 AND project_id=$2`
	_, err := r.pool.Exec(ctx, query, userID, projectID)
	return err
}
