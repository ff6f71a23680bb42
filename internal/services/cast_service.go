package services

import (
	"context"
	"errors"
	"time"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/models"
	"github.com/castqueue/castqueue/internal/repositories"
	"github.com/google/uuid"
)

// ErrUpgradeRequired marks a schedule rejection callers should turn into an
// upgrade prompt rather than a plain validation error.
var ErrUpgradeRequired = apperrors.Forbidden("free limit reached, upgrade to unlimited for unlimited scheduled casts")

const listLimit = 50

type CastService struct {
	casts repositories.CastRepository
	users repositories.UserRepository
}

func NewCastService(casts repositories.CastRepository, users repositories.UserRepository) *CastService {
	return &CastService{casts: casts, users: users}
}

// Schedule validates and inserts a pending cast for the owner. The owner
// must exist, hold a signer and, on the free plan, be under the cap.
func (s *CastService) Schedule(ctx context.Context, fid int64, content string, scheduledTime time.Time) (*models.ScheduledCast, error) {
	if content == "" {
		return nil, apperrors.InvalidArg("content is required")
	}
	if len([]rune(content)) > models.MaxCastLength {
		return nil, apperrors.InvalidArg("cast content too long (max 320 characters)")
	}
	if scheduledTime.IsZero() {
		return nil, apperrors.InvalidArg("scheduled_time is required")
	}
	if !scheduledTime.After(time.Now()) {
		return nil, apperrors.InvalidArg("scheduled time must be in the future")
	}

	user, err := s.users.GetByFid(ctx, fid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to load user", err)
	}

	if user.SignerUUID == nil || *user.SignerUUID == "" {
		return nil, apperrors.Forbidden("no signer found, please connect your account")
	}

	if !user.HasFreeCastsLeft() {
		return nil, ErrUpgradeRequired
	}

	cast := &models.ScheduledCast{
		Fid:           fid,
		Content:       content,
		ScheduledTime: scheduledTime,
	}
	if err := s.casts.Create(ctx, cast); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to schedule cast", err)
	}
	return cast, nil
}

// Cancel marks the owner's pending cast cancelled. Missing, foreign and
// already-processed casts are indistinguishable to the caller.
func (s *CastService) Cancel(ctx context.Context, fid int64, castID uuid.UUID) (*models.ScheduledCast, error) {
	cast, err := s.casts.Cancel(ctx, castID, fid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("cast not found or already processed")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to cancel cast", err)
	}
	return cast, nil
}

// List returns the owner's casts, soonest first. Cancelled casts are omitted.
func (s *CastService) List(ctx context.Context, fid int64) ([]*models.ScheduledCast, error) {
	casts, err := s.casts.ListByFid(ctx, fid, listLimit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to list casts", err)
	}
	return casts, nil
}
