package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/castqueue/castqueue/internal/models"
	"github.com/castqueue/castqueue/internal/repositories"
	"golang.org/x/sync/errgroup"
)

type DispatchResult struct {
	CastID string `json:"cast_id"`
	Status string `json:"status"`
	Hash   string `json:"hash,omitempty"`
}

type DispatchSummary struct {
	Success   bool             `json:"success"`
	Processed int              `json:"processed"`
	Results   []DispatchResult `json:"results"`
	Timestamp time.Time        `json:"timestamp"`
}

// DispatchService is the batch publisher behind the cron endpoint. Each Run
// is a single pass: select due pending casts, publish every one of them
// independently, record the outcome on the cast row.
type DispatchService struct {
	casts     repositories.CastRepository
	users     repositories.UserRepository
	client    SignerClient
	batchSize int
	workers   int
	logger    *slog.Logger
}

func NewDispatchService(casts repositories.CastRepository, users repositories.UserRepository, client SignerClient, batchSize, workers int, logger *slog.Logger) *DispatchService {
	if workers < 1 {
		workers = 1
	}
	return &DispatchService{
		casts:     casts,
		users:     users,
		client:    client,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
	}
}

// Run processes one batch of due casts. Only a selection failure aborts the
// run; per-cast publish failures are recorded on the cast and the rest of
// the batch continues.
func (s *DispatchService) Run(ctx context.Context) (*DispatchSummary, error) {
	pending, err := s.casts.SelectDue(ctx, s.batchSize)
	if err != nil {
		return nil, err
	}

	summary := &DispatchSummary{Success: true, Results: []DispatchResult{}, Timestamp: time.Now()}
	if len(pending) == 0 {
		return summary, nil
	}

	s.logger.Info("dispatching due casts", "count", len(pending))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, cast := range pending {
		g.Go(func() error {
			result := s.dispatchOne(gctx, cast)
			mu.Lock()
			summary.Results = append(summary.Results, result)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only orders the appends.
	_ = g.Wait()

	summary.Processed = len(summary.Results)
	return summary, nil
}

func (s *DispatchService) dispatchOne(ctx context.Context, cast *models.PendingCast) DispatchResult {
	hash, err := s.client.PublishCast(ctx, cast.SignerUUID, cast.Content)
	if err != nil {
		s.logger.Error("failed to send cast", "cast_id", cast.ID, "fid", cast.Fid, "error", err)
		if markErr := s.casts.MarkFailed(ctx, cast.ID, err.Error()); markErr != nil {
			s.logger.Error("failed to record cast failure", "cast_id", cast.ID, "error", markErr)
		}
		return DispatchResult{CastID: cast.ID.String(), Status: string(models.CastStatusFailed)}
	}

	if err := s.casts.MarkSent(ctx, cast.ID, hash); err != nil {
		// The cast went out; the row is out of date until the next operator
		// look. Never retried, a resend would duplicate the cast.
		s.logger.Error("cast sent but status update failed", "cast_id", cast.ID, "hash", hash, "error", err)
	}

	if cast.Plan == models.PlanFree {
		if err := s.users.IncrementCastsUsed(ctx, cast.Fid); err != nil {
			s.logger.Error("failed to increment casts_used", "fid", cast.Fid, "error", err)
		}
	}

	s.logger.Info("sent cast", "cast_id", cast.ID, "fid", cast.Fid, "hash", hash)
	return DispatchResult{CastID: cast.ID.String(), Status: string(models.CastStatusSent), Hash: hash}
}
