package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/castqueue/castqueue/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

func (r *PostgresPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `INSERT INTO payments (fid, transaction_hash, from_address, amount, token, network, status, completed_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		payment.Fid,
		payment.TransactionHash,
		payment.FromAddress,
		payment.Amount,
		payment.Token,
		payment.Network,
		payment.Status,
		payment.CompletedAt,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *PostgresPaymentRepository) GetByTransactionHash(ctx context.Context, txHash string) (*models.Payment, error) {
	query := `SELECT id, fid, transaction_hash, from_address, amount, token, network, status, completed_at, created_at
	          FROM payments WHERE transaction_hash = $1`

	var payment models.Payment
	err := r.pool.QueryRow(ctx, query, txHash).Scan(
		&payment.ID,
		&payment.Fid,
		&payment.TransactionHash,
		&payment.FromAddress,
		&payment.Amount,
		&payment.Token,
		&payment.Network,
		&payment.Status,
		&payment.CompletedAt,
		&payment.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}
