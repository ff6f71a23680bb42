package repositories

import (
	"context"

	"github.com/castqueue/castqueue/internal/models"
	"github.com/google/uuid"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByFid(ctx context.Context, fid int64) (*models.User, error)
	SetSignerUUID(ctx context.Context, fid int64, signerUUID string) error
	IncrementCastsUsed(ctx context.Context, fid int64) error
	SetPlan(ctx context.Context, fid int64, plan models.Plan) error
}

type CastRepository interface {
	Create(ctx context.Context, cast *models.ScheduledCast) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ScheduledCast, error)
	ListByFid(ctx context.Context, fid int64, limit int) ([]*models.ScheduledCast, error)
	SelectDue(ctx context.Context, limit int) ([]*models.PendingCast, error)
	MarkSent(ctx context.Context, id uuid.UUID, castHash string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
	Cancel(ctx context.Context, id uuid.UUID, fid int64) (*models.ScheduledCast, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByTransactionHash(ctx context.Context, txHash string) (*models.Payment, error)
}

// NotificationStore is the notification-details KV. Backed by redis when one
// is configured, by a process-lifetime map otherwise; same contract either way.
type NotificationStore interface {
	Get(ctx context.Context, fid int64) (*models.NotificationDetails, error)
	Set(ctx context.Context, fid int64, details *models.NotificationDetails) error
	Delete(ctx context.Context, fid int64) error
}
