package eventgroups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agreeto/backend/internal/models"
)

// Repository handles event group and event persistence. Rows are never
// hard-deleted through this interface; deleted_at marks dead rows and every
// read filters on it.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event group repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, event_group_id, user_id, account_id, microsoft_id, title, description,
	start_date, end_date, attendees, is_agreeto_event, deleted_at, created_at, updated_at`

// CreateGroup inserts the group and all its child events in one transaction;
// either every row becomes visible or none do.
func (r *Repository) CreateGroup(ctx context.Context, g *models.EventGroup) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const groupQ = `INSERT INTO event_groups (id, user_id, account_id, title, create_blocker)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	if err := tx.QueryRow(ctx, groupQ, g.ID, g.UserID, g.AccountID, g.Title, g.CreateBlocker).
		Scan(&g.CreatedAt, &g.UpdatedAt); err != nil {
		return fmt.Errorf("insert event group: %w", err)
	}

	const eventQ = `INSERT INTO events (id, event_group_id, user_id, account_id, title, description,
			start_date, end_date, attendees, is_agreeto_event)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	for i := range g.Events {
		ev := &g.Events[i]
		attendees, err := marshalAttendees(ev.Attendees)
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, eventQ,
			ev.ID, g.ID, ev.UserID, ev.AccountID, ev.Title, ev.Description,
			ev.StartDate, ev.EndDate, attendees, ev.IsAgreeToEvent,
		).Scan(&ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetGroupByID returns a live group with its owning account and live child
// events, ordered by start date ascending. Soft-deleted groups are ErrNotFound.
func (r *Repository) GetGroupByID(ctx context.Context, id uuid.UUID) (*models.EventGroup, error) {
	const q = `SELECT g.id, g.user_id, g.account_id, g.title, g.create_blocker, g.deleted_at, g.created_at, g.updated_at,
			a.id, a.user_id, a.provider, a.email, a.access_token, a.refresh_token, a.is_primary, a.created_at
		FROM event_groups g
		JOIN accounts a ON a.id = g.account_id
		WHERE g.id = $1 AND g.deleted_at IS NULL`

	var g models.EventGroup
	var a models.Account
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&g.ID, &g.UserID, &g.AccountID, &g.Title, &g.CreateBlocker, &g.DeletedAt, &g.CreatedAt, &g.UpdatedAt,
		&a.ID, &a.UserID, &a.Provider, &a.Email, &a.AccessToken, &a.RefreshToken, &a.IsPrimary, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	g.Account = &a

	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events
		WHERE event_group_id = $1 AND deleted_at IS NULL
		ORDER BY start_date ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		g.Events = append(g.Events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetEventByID returns a live event. Soft-deleted events are ErrNotFound.
func (r *Repository) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events
		WHERE id = $1 AND deleted_at IS NULL`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// SetEventMicrosoftID stores the provider-native id written back from Azure
// after blocker materialization.
func (r *Repository) SetEventMicrosoftID(ctx context.Context, id uuid.UUID, microsoftID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE events SET microsoft_id = $2, updated_at = NOW() WHERE id = $1`, id, microsoftID)
	return err
}

// UpdateEventConfirmed applies the confirmed title and attendee set to the
// winning event and returns the updated row.
func (r *Repository) UpdateEventConfirmed(ctx context.Context, id uuid.UUID, title string, attendees []models.Attendee) (*models.Event, error) {
	raw, err := marshalAttendees(attendees)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `UPDATE events SET title = $2, attendees = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+eventColumns, id, title, raw)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// SoftDeleteEvents marks the given events deleted. Already-deleted rows are
// restamped; the operation is idempotent.
func (r *Repository) SoftDeleteEvents(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `UPDATE events SET deleted_at = NOW(), updated_at = NOW() WHERE id = ANY($1)`, ids)
	return err
}

// SoftDeleteGroup marks the group and all its child events deleted and
// returns the soft-deleted group record.
func (r *Repository) SoftDeleteGroup(ctx context.Context, id uuid.UUID) (*models.EventGroup, error) {
	if _, err := r.pool.Exec(ctx, `UPDATE events SET deleted_at = NOW(), updated_at = NOW()
		WHERE event_group_id = $1`, id); err != nil {
		return nil, err
	}

	var g models.EventGroup
	err := r.pool.QueryRow(ctx, `UPDATE event_groups SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, account_id, title, create_blocker, deleted_at, created_at, updated_at`, id).
		Scan(&g.ID, &g.UserID, &g.AccountID, &g.Title, &g.CreateBlocker, &g.DeletedAt, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func marshalAttendees(attendees []models.Attendee) ([]byte, error) {
	if attendees == nil {
		attendees = []models.Attendee{}
	}
	raw, err := json.Marshal(attendees)
	if err != nil {
		return nil, fmt.Errorf("marshal attendees: %w", err)
	}
	return raw, nil
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var ev models.Event
	var attendees []byte
	err := row.Scan(
		&ev.ID, &ev.EventGroupID, &ev.UserID, &ev.AccountID, &ev.MicrosoftID, &ev.Title, &ev.Description,
		&ev.StartDate, &ev.EndDate, &attendees, &ev.IsAgreeToEvent, &ev.DeletedAt, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(attendees) > 0 {
		if err := json.Unmarshal(attendees, &ev.Attendees); err != nil {
			return nil, fmt.Errorf("unmarshal attendees: %w", err)
		}
	}
	return &ev, nil
}
