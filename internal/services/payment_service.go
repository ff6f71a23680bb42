package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/models"
	"github.com/castqueue/castqueue/internal/repositories"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainReader reads transaction receipts; satisfied by ethclient.Client.
type ChainReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

const (
	paymentAmount  = 10
	paymentToken   = "USDC"
	paymentNetwork = "base"

	// Give the chain a moment to index a just-submitted transaction before
	// asking for its receipt.
	receiptDelay = 3 * time.Second
)

// PaymentService verifies an upgrade payment on-chain and flips the payer's
// plan to unlimited. Idempotent by transaction hash.
type PaymentService struct {
	payments repositories.PaymentRepository
	users    repositories.UserRepository
	chain    ChainReader
	logger   *slog.Logger

	receiptDelay time.Duration
}

func NewPaymentService(payments repositories.PaymentRepository, users repositories.UserRepository, chain ChainReader, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		payments:     payments,
		users:        users,
		chain:        chain,
		logger:       logger,
		receiptDelay: receiptDelay,
	}
}

// Record validates the receipt of txHash, stores the payment and upgrades
// the user. A transaction hash can only ever be recorded once.
func (s *PaymentService) Record(ctx context.Context, fid int64, txHash, fromAddress string) error {
	if fid == 0 || txHash == "" || fromAddress == "" {
		return apperrors.InvalidArg("fid, txHash and address are required")
	}

	existing, err := s.payments.GetByTransactionHash(ctx, txHash)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeInternal, "failed to check existing payment", err)
	}
	if existing != nil {
		return apperrors.InvalidArg("payment already recorded")
	}

	select {
	case <-time.After(s.receiptDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	receipt, err := s.chain.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnavailable, "failed to read transaction receipt", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return apperrors.InvalidArg("transaction failed")
	}

	now := time.Now()
	payment := &models.Payment{
		Fid:             fid,
		TransactionHash: txHash,
		FromAddress:     fromAddress,
		Amount:          paymentAmount,
		Token:           paymentToken,
		Network:         paymentNetwork,
		Status:          "completed",
		CompletedAt:     &now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "failed to record payment", err)
	}

	if err := s.users.SetPlan(ctx, fid, models.PlanUnlimited); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "failed to upgrade plan", err)
	}

	s.logger.Info("payment recorded and plan upgraded", "fid", fid, "tx_hash", txHash)
	return nil
}
