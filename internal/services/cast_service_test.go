package services

import (
	"context"
	"testing"
	"time"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userWithSigner(t *testing.T, users *fakeUserRepo, fid int64) *models.User {
	t.Helper()
	user := &models.User{Fid: fid, Username: "alice"}
	signerUUID := "signer-1"
	user.SignerUUID = &signerUUID
	require.NoError(t, users.Upsert(context.Background(), user))
	return users.users[fid]
}

func TestCastService_Schedule(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	casts := newFakeCastRepo()
	userWithSigner(t, users, 42)

	svc := NewCastService(casts, users)

	cast, err := svc.Schedule(ctx, 42, "gm", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.CastStatusPending, cast.Status)
	assert.NotEqual(t, uuid.Nil, cast.ID)
	assert.Equal(t, int64(42), cast.Fid)
}

func TestCastService_Schedule_Validation(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	casts := newFakeCastRepo()
	userWithSigner(t, users, 42)

	svc := NewCastService(casts, users)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		fid     int64
		content string
		at      time.Time
		code    apperrors.Code
	}{
		{"empty content", 42, "", future, apperrors.CodeInvalidArgument},
		{"content too long", 42, string(make([]rune, 321)), future, apperrors.CodeInvalidArgument},
		{"time in the past", 42, "gm", time.Now().Add(-time.Minute), apperrors.CodeInvalidArgument},
		{"zero time", 42, "gm", time.Time{}, apperrors.CodeInvalidArgument},
		{"unknown user", 7, "gm", future, apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Schedule(ctx, tt.fid, tt.content, tt.at)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}
	assert.Empty(t, casts.casts, "no cast rows on rejected requests")
}

func TestCastService_Schedule_RequiresSigner(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	casts := newFakeCastRepo()
	require.NoError(t, users.Upsert(ctx, &models.User{Fid: 42}))

	svc := NewCastService(casts, users)

	_, err := svc.Schedule(ctx, 42, "gm", time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))
}

func TestCastService_Schedule_FreeLimitReached(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	casts := newFakeCastRepo()
	user := userWithSigner(t, users, 42)
	user.CastsUsed = 5
	user.MaxFreeCasts = 5

	svc := NewCastService(casts, users)

	_, err := svc.Schedule(ctx, 42, "gm", time.Now().Add(time.Hour))
	require.ErrorIs(t, err, ErrUpgradeRequired)
	assert.Empty(t, casts.casts, "no row inserted at the cap")
}

func TestCastService_Schedule_UnlimitedPlanIgnoresCap(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	casts := newFakeCastRepo()
	user := userWithSigner(t, users, 42)
	user.Plan = models.PlanUnlimited
	user.CastsUsed = 100

	svc := NewCastService(casts, users)

	_, err := svc.Schedule(ctx, 42, "gm", time.Now().Add(time.Hour))
	require.NoError(t, err)
}

func TestCastService_Cancel(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	casts := newFakeCastRepo()
	userWithSigner(t, users, 42)

	svc := NewCastService(casts, users)

	cast, err := svc.Schedule(ctx, 42, "gm", time.Now().Add(time.Hour))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, 42, cast.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CastStatusCancelled, cancelled.Status)
}

func TestCastService_Cancel_NotFoundCases(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	casts := newFakeCastRepo()
	userWithSigner(t, users, 42)

	svc := NewCastService(casts, users)

	cast, err := svc.Schedule(ctx, 42, "gm", time.Now().Add(time.Hour))
	require.NoError(t, err)

	// Someone else's cast and a missing cast produce the same answer.
	_, err = svc.Cancel(ctx, 43, cast.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	_, err = svc.Cancel(ctx, 42, uuid.New())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	// Cancelling twice: the second attempt hits a non-pending cast.
	_, err = svc.Cancel(ctx, 42, cast.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, 42, cast.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}
