package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/models"
	"github.com/castqueue/castqueue/internal/neynar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSignerServiceForTest(client *fakeSignerClient, users *fakeUserRepo, cfg SignerServiceConfig, signer *fakeKeySigner) *SignerService {
	s := NewSignerService(client, users, cfg, discardLogger())
	if signer != nil {
		s.newWallet = func(string) (KeySigner, error) { return signer, nil }
	}
	return s
}

func TestSignerService_CreateSigner_SponsoredURL(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	registered := false
	client := &fakeSignerClient{
		createSigner: func(ctx context.Context) (*neynar.Signer, error) {
			return &neynar.Signer{
				SignerUUID:        "signer-1",
				PublicKey:         "0xabc",
				SignerApprovalURL: "https://client.example/approve/1",
			}, nil
		},
		registerSignedKey: func(ctx context.Context, signerUUID string, appFid int64, deadline int64, signature string, sponsored bool) (*neynar.Signer, error) {
			registered = true
			return nil, errors.New("should not be called")
		},
	}

	svc := newSignerServiceForTest(client, users, SignerServiceConfig{SignerDeadline: 24 * time.Hour}, nil)

	result, err := svc.CreateSigner(ctx, CreateSignerRequest{Fid: 42, Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "https://client.example/approve/1", result.ApprovalURL)
	assert.Equal(t, "signer-1", result.SignerUUID)
	assert.False(t, registered, "provider-sponsored path must skip registration")

	user, err := users.GetByFid(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, user.SignerUUID)
	assert.Equal(t, "signer-1", *user.SignerUUID)
}

func TestSignerService_CreateSigner_RegistrationFallback(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	keySigner := &fakeKeySigner{address: "0xAppAddress"}

	var gotAppFid, gotDeadline int64
	var gotSignature string
	var gotSponsored bool
	client := &fakeSignerClient{
		createSigner: func(ctx context.Context) (*neynar.Signer, error) {
			return &neynar.Signer{SignerUUID: "signer-2", PublicKey: "0x1234"}, nil
		},
		registerSignedKey: func(ctx context.Context, signerUUID string, appFid int64, deadline int64, signature string, sponsored bool) (*neynar.Signer, error) {
			gotAppFid = appFid
			gotDeadline = deadline
			gotSignature = signature
			gotSponsored = sponsored
			return &neynar.Signer{SignerUUID: signerUUID, SignerApprovalURL: "https://client.example/approve/2"}, nil
		},
	}

	cfg := SignerServiceConfig{
		SeedPhrase:     "test test test",
		DeveloperFid:   777,
		SponsorSigner:  true,
		SignerDeadline: 24 * time.Hour,
	}
	svc := newSignerServiceForTest(client, users, cfg, keySigner)

	before := time.Now()
	result, err := svc.CreateSigner(ctx, CreateSignerRequest{Fid: 42})
	require.NoError(t, err)

	assert.Equal(t, "https://client.example/approve/2", result.ApprovalURL)
	assert.Equal(t, int64(777), gotAppFid)
	assert.Equal(t, "0xsig-0", gotSignature)
	assert.True(t, gotSponsored)

	// Deadline fixed at signing time, ~24h out.
	assert.Equal(t, keySigner.lastDL.Unix(), gotDeadline)
	assert.Greater(t, gotDeadline, before.Unix())
	assert.InDelta(t, before.Add(24*time.Hour).Unix(), gotDeadline, 5)
	assert.Equal(t, "0x1234", keySigner.lastKey)
}

func TestSignerService_CreateSigner_ResolvesAppFidByCustody(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	keySigner := &fakeKeySigner{address: "0xAppAddress"}

	client := &fakeSignerClient{
		createSigner: func(ctx context.Context) (*neynar.Signer, error) {
			return &neynar.Signer{SignerUUID: "signer-3", PublicKey: "0x1234"}, nil
		},
		searchUserByAddress: func(ctx context.Context, address string) (*neynar.User, error) {
			assert.Equal(t, "0xAppAddress", address)
			return &neynar.User{Fid: 999}, nil
		},
		registerSignedKey: func(ctx context.Context, signerUUID string, appFid int64, deadline int64, signature string, sponsored bool) (*neynar.Signer, error) {
			assert.Equal(t, int64(999), appFid)
			return &neynar.Signer{SignerApprovalURL: "https://client.example/approve/3"}, nil
		},
	}

	svc := newSignerServiceForTest(client, users, SignerServiceConfig{SeedPhrase: "x", SignerDeadline: time.Hour}, keySigner)

	_, err := svc.CreateSigner(ctx, CreateSignerRequest{Fid: 42})
	require.NoError(t, err)
}

func TestSignerService_CreateSigner_MissingSeedPhrase(t *testing.T) {
	users := newFakeUserRepo()
	client := &fakeSignerClient{
		createSigner: func(ctx context.Context) (*neynar.Signer, error) {
			return &neynar.Signer{SignerUUID: "signer-4", PublicKey: "0x1234"}, nil
		},
	}

	svc := newSignerServiceForTest(client, users, SignerServiceConfig{SignerDeadline: time.Hour}, nil)

	_, err := svc.CreateSigner(context.Background(), CreateSignerRequest{Fid: 42})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFailedPrecondition, apperrors.CodeOf(err))
	assert.Equal(t, 0, users.upserts, "no partial user row on failure")
}

func TestSignerService_CreateSigner_UnresolvableAppFid(t *testing.T) {
	users := newFakeUserRepo()
	keySigner := &fakeKeySigner{address: "0xApp"}
	client := &fakeSignerClient{
		createSigner: func(ctx context.Context) (*neynar.Signer, error) {
			return &neynar.Signer{SignerUUID: "signer-5", PublicKey: "0x1234"}, nil
		},
		searchUserByAddress: func(ctx context.Context, address string) (*neynar.User, error) {
			return nil, nil
		},
	}

	svc := newSignerServiceForTest(client, users, SignerServiceConfig{SeedPhrase: "x", SignerDeadline: time.Hour}, keySigner)

	_, err := svc.CreateSigner(context.Background(), CreateSignerRequest{Fid: 42})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFailedPrecondition, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "FARCASTER_DEVELOPER_FID")
}

func TestSignerService_CreateSigner_MissingApprovalURLIsFatal(t *testing.T) {
	users := newFakeUserRepo()
	keySigner := &fakeKeySigner{address: "0xApp"}
	client := &fakeSignerClient{
		createSigner: func(ctx context.Context) (*neynar.Signer, error) {
			return &neynar.Signer{SignerUUID: "signer-6", PublicKey: "0x1234"}, nil
		},
		registerSignedKey: func(ctx context.Context, signerUUID string, appFid int64, deadline int64, signature string, sponsored bool) (*neynar.Signer, error) {
			return &neynar.Signer{SignerUUID: signerUUID}, nil
		},
	}

	svc := newSignerServiceForTest(client, users, SignerServiceConfig{SeedPhrase: "x", DeveloperFid: 1, SignerDeadline: time.Hour}, keySigner)

	_, err := svc.CreateSigner(context.Background(), CreateSignerRequest{Fid: 42})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
	assert.Equal(t, 0, users.upserts)
}

func TestSignerService_CreateSigner_UpsertSupersedes(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	n := 0
	client := &fakeSignerClient{
		createSigner: func(ctx context.Context) (*neynar.Signer, error) {
			n++
			return &neynar.Signer{
				SignerUUID:        fmt.Sprintf("signer-%d", n),
				PublicKey:         "0xabc",
				SignerApprovalURL: "https://client.example/approve",
			}, nil
		},
	}

	svc := newSignerServiceForTest(client, users, SignerServiceConfig{SignerDeadline: time.Hour}, nil)

	_, err := svc.CreateSigner(ctx, CreateSignerRequest{Fid: 42})
	require.NoError(t, err)
	result, err := svc.CreateSigner(ctx, CreateSignerRequest{Fid: 42})
	require.NoError(t, err)

	// Still exactly one row for the fid, pointing at the latest signer.
	assert.Len(t, users.users, 1)
	user, err := users.GetByFid(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, result.SignerUUID, *user.SignerUUID)
}

func TestSignerService_Status_PersistsOnApproval(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	require.NoError(t, users.Upsert(ctx, &models.User{Fid: 42, Username: "alice"}))

	client := &fakeSignerClient{
		lookupSigner: func(ctx context.Context, signerUUID string) (*neynar.Signer, error) {
			return &neynar.Signer{SignerUUID: signerUUID, Status: neynar.SignerStatusApproved, Fid: 42}, nil
		},
	}

	svc := newSignerServiceForTest(client, users, SignerServiceConfig{}, nil)

	status, err := svc.Status(ctx, "signer-x")
	require.NoError(t, err)
	assert.Equal(t, neynar.SignerStatusApproved, status.Status)
	assert.Equal(t, int64(42), status.Fid)

	user, err := users.GetByFid(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, user.SignerUUID)
	assert.Equal(t, "signer-x", *user.SignerUUID)
}

func TestSignerService_Status_PendingLeavesUserAlone(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	client := &fakeSignerClient{
		lookupSigner: func(ctx context.Context, signerUUID string) (*neynar.Signer, error) {
			return &neynar.Signer{SignerUUID: signerUUID, Status: neynar.SignerStatusPendingApproval}, nil
		},
	}

	svc := newSignerServiceForTest(client, users, SignerServiceConfig{}, nil)

	status, err := svc.Status(ctx, "signer-y")
	require.NoError(t, err)
	assert.Equal(t, neynar.SignerStatusPendingApproval, status.Status)
	assert.Empty(t, users.users)
}
