package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agreeto/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, membership, created_at, updated_at`

// GetByID returns one user.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.Membership, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns the user owning the given email, either directly or
// through a linked account.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users u
		WHERE u.email = $1
		   OR EXISTS (SELECT 1 FROM accounts a WHERE a.user_id = u.id AND a.email = $1)
		LIMIT 1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.Membership, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateMembership moves the user to a new subscription tier and returns the
// updated record.
func (r *Repository) UpdateMembership(ctx context.Context, id uuid.UUID, membership models.Membership) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `UPDATE users SET membership = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, membership).
		Scan(&u.ID, &u.Email, &u.Name, &u.Membership, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
