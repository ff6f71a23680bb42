package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/castqueue/castqueue/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Upsert inserts the user or, when the fid already exists, refreshes the
// profile fields and signer. One row per fid, always.
func (r *PostgresUserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (fid, username, display_name, pfp_url, custody_address, signer_uuid)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (fid) DO UPDATE SET
                  username = EXCLUDED.username,
                  display_name = EXCLUDED.display_name,
                  pfp_url = EXCLUDED.pfp_url,
                  custody_address = EXCLUDED.custody_address,
                  signer_uuid = EXCLUDED.signer_uuid,
                  updated_at = NOW()
              RETURNING plan, casts_used, max_free_casts, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Fid,
		user.Username,
		user.DisplayName,
		user.PfpURL,
		user.CustodyAddress,
		user.SignerUUID,
	).Scan(&user.Plan, &user.CastsUsed, &user.MaxFreeCasts, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByFid(ctx context.Context, fid int64) (*models.User, error) {
	query := `SELECT fid, username, display_name, pfp_url, custody_address, signer_uuid,
	                 plan, casts_used, max_free_casts, created_at, updated_at
	          FROM users WHERE fid = $1`

	row := r.pool.QueryRow(ctx, query, fid)

	var user models.User
	err := row.Scan(&user.Fid, &user.Username, &user.DisplayName, &user.PfpURL,
		&user.CustodyAddress, &user.SignerUUID, &user.Plan, &user.CastsUsed,
		&user.MaxFreeCasts, &user.CreatedAt, &user.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) SetSignerUUID(ctx context.Context, fid int64, signerUUID string) error {
	query := `UPDATE users SET signer_uuid = $1, updated_at = NOW() WHERE fid = $2`

	result, err := r.pool.Exec(ctx, query, signerUUID, fid)
	if err != nil {
		return fmt.Errorf("failed to set signer uuid: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementCastsUsed bumps the usage counter by one in a single UPDATE so
// concurrent dispatch runs cannot undercount.
func (r *PostgresUserRepository) IncrementCastsUsed(ctx context.Context, fid int64) error {
	query := `UPDATE users SET casts_used = casts_used + 1, updated_at = NOW() WHERE fid = $1`

	result, err := r.pool.Exec(ctx, query, fid)
	if err != nil {
		return fmt.Errorf("failed to increment casts_used: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) SetPlan(ctx context.Context, fid int64, plan models.Plan) error {
	query := `UPDATE users SET plan = $1, updated_at = NOW() WHERE fid = $2`

	result, err := r.pool.Exec(ctx, query, plan, fid)
	if err != nil {
		return fmt.Errorf("failed to set plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
