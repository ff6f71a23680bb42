package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/castqueue/castqueue/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresCastRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCastRepository(pool *pgxpool.Pool) *PostgresCastRepository {
	return &PostgresCastRepository{pool: pool}
}

func (r *PostgresCastRepository) Create(ctx context.Context, cast *models.ScheduledCast) error {
	query := `INSERT INTO scheduled_casts (fid, content, scheduled_time, status)
              VALUES ($1, $2, $3, 'pending')
              RETURNING id, status, created_at`

	err := r.pool.QueryRow(ctx, query, cast.Fid, cast.Content, cast.ScheduledTime).
		Scan(&cast.ID, &cast.Status, &cast.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scheduled cast: %w", err)
	}
	return nil
}

func (r *PostgresCastRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduledCast, error) {
	query := `SELECT id, fid, content, scheduled_time, status, cast_hash, error_message, sent_at, created_at, updated_at
	          FROM scheduled_casts WHERE id = $1`

	var cast models.ScheduledCast
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&cast.ID,
		&cast.Fid,
		&cast.Content,
		&cast.ScheduledTime,
		&cast.Status,
		&cast.CastHash,
		&cast.ErrorMessage,
		&cast.SentAt,
		&cast.CreatedAt,
		&cast.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cast: %w", err)
	}
	return &cast, nil
}

func (r *PostgresCastRepository) ListByFid(ctx context.Context, fid int64, limit int) ([]*models.ScheduledCast, error) {
	query := `SELECT id, fid, content, scheduled_time, status, cast_hash, error_message, sent_at, created_at, updated_at
	          FROM scheduled_casts
	          WHERE fid = $1 AND status IN ('pending', 'sent', 'failed')
	          ORDER BY scheduled_time ASC
	          LIMIT $2`

	rows, err := r.pool.Query(ctx, query, fid, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query casts: %w", err)
	}
	defer rows.Close()

	var casts []*models.ScheduledCast
	for rows.Next() {
		var cast models.ScheduledCast
		err := rows.Scan(
			&cast.ID,
			&cast.Fid,
			&cast.Content,
			&cast.ScheduledTime,
			&cast.Status,
			&cast.CastHash,
			&cast.ErrorMessage,
			&cast.SentAt,
			&cast.CreatedAt,
			&cast.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cast: %w", err)
		}
		casts = append(casts, &cast)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating casts: %w", err)
	}

	return casts, nil
}

// SelectDue returns pending casts whose scheduled time has passed, joined
// with the owner's signer and plan. Owners without a signer are skipped;
// their casts stay pending until the account reconnects.
func (r *PostgresCastRepository) SelectDue(ctx context.Context, limit int) ([]*models.PendingCast, error) {
	query := `SELECT c.id, c.fid, c.content, c.scheduled_time, u.signer_uuid, u.plan
	          FROM scheduled_casts c
	          JOIN users u ON u.fid = c.fid
	          WHERE c.status = 'pending'
	            AND c.scheduled_time <= NOW()
	            AND u.signer_uuid IS NOT NULL
	          ORDER BY c.scheduled_time ASC
	          LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due casts: %w", err)
	}
	defer rows.Close()

	var casts []*models.PendingCast
	for rows.Next() {
		var cast models.PendingCast
		err := rows.Scan(&cast.ID, &cast.Fid, &cast.Content, &cast.ScheduledTime, &cast.SignerUUID, &cast.Plan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due cast: %w", err)
		}
		casts = append(casts, &cast)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due casts: %w", err)
	}

	return casts, nil
}

// MarkSent transitions pending -> sent. The status guard keeps a cast
// re-selected by an overlapping run from being transitioned twice.
func (r *PostgresCastRepository) MarkSent(ctx context.Context, id uuid.UUID, castHash string) error {
	query := `UPDATE scheduled_casts
	          SET status = 'sent', cast_hash = $1, sent_at = NOW(), updated_at = NOW()
	          WHERE id = $2 AND status = 'pending'`

	result, err := r.pool.Exec(ctx, query, castHash, id)
	if err != nil {
		return fmt.Errorf("failed to mark cast sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresCastRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `UPDATE scheduled_casts
	          SET status = 'failed', error_message = $1, updated_at = NOW()
	          WHERE id = $2 AND status = 'pending'`

	result, err := r.pool.Exec(ctx, query, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark cast failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Cancel transitions pending -> cancelled for the owner's cast. A cast that
// is missing, not owned by fid, or already terminal all come back ErrNotFound;
// callers cannot tell those cases apart.
func (r *PostgresCastRepository) Cancel(ctx context.Context, id uuid.UUID, fid int64) (*models.ScheduledCast, error) {
	query := `UPDATE scheduled_casts
	          SET status = 'cancelled', updated_at = NOW()
	          WHERE id = $1 AND fid = $2 AND status = 'pending'
	          RETURNING id, fid, content, scheduled_time, status, cast_hash, error_message, sent_at, created_at, updated_at`

	var cast models.ScheduledCast
	err := r.pool.QueryRow(ctx, query, id, fid).Scan(
		&cast.ID,
		&cast.Fid,
		&cast.Content,
		&cast.ScheduledTime,
		&cast.Status,
		&cast.CastHash,
		&cast.ErrorMessage,
		&cast.SentAt,
		&cast.CreatedAt,
		&cast.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel cast: %w", err)
	}
	return &cast, nil
}
