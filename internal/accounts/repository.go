package accounts

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agreeto/backend/internal/models"
)

// Repository handles account persistence. Tokens are written only by the
// OAuth linking collaborator; this repository only reads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an account repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, user_id, provider, email, access_token, refresh_token, is_primary, created_at`

// ListByUser returns all accounts linked by the user.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts
		WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Provider, &a.Email, &a.AccessToken, &a.RefreshToken, &a.IsPrimary, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// GetByID returns one account.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id).
		Scan(&a.ID, &a.UserID, &a.Provider, &a.Email, &a.AccessToken, &a.RefreshToken, &a.IsPrimary, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListRelated returns the caller's other linked accounts as a slim
// projection, excluding the given account id and email when provided.
func (r *Repository) ListRelated(ctx context.Context, userID uuid.UUID, excludeID *uuid.UUID, excludeEmail *string) ([]models.AccountRef, error) {
	const q = `SELECT id, provider, email FROM accounts
		WHERE user_id = $1
		  AND ($2::uuid IS NULL OR id != $2)
		  AND ($3::text IS NULL OR email != $3)
		ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, q, userID, excludeID, excludeEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.AccountRef
	for rows.Next() {
		var ref models.AccountRef
		if err := rows.Scan(&ref.ID, &ref.Provider, &ref.Email); err != nil {
			return nil, err
		}
		list = append(list, ref)
	}
	return list, rows.Err()
}
