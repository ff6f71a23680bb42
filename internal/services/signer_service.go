package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/models"
	"github.com/castqueue/castqueue/internal/neynar"
	"github.com/castqueue/castqueue/internal/repositories"
	"github.com/castqueue/castqueue/internal/wallet"
)

type SignerServiceConfig struct {
	SeedPhrase     string
	DeveloperFid   int64
	SponsorSigner  bool
	SignerDeadline time.Duration
}

// SignerService owns the authorization flow: provider signer creation, the
// signed-key-request registration fallback, and the user upsert that binds
// the signer to its account.
type SignerService struct {
	client SignerClient
	users  repositories.UserRepository
	cfg    SignerServiceConfig
	logger *slog.Logger

	// replaced in tests
	newWallet func(mnemonic string) (KeySigner, error)
}

func NewSignerService(client SignerClient, users repositories.UserRepository, cfg SignerServiceConfig, logger *slog.Logger) *SignerService {
	return &SignerService{
		client: client,
		users:  users,
		cfg:    cfg,
		logger: logger,
		newWallet: func(mnemonic string) (KeySigner, error) {
			return wallet.NewFromMnemonic(mnemonic)
		},
	}
}

type CreateSignerRequest struct {
	Fid            int64
	Username       string
	DisplayName    string
	PfpURL         string
	CustodyAddress string
}

type CreateSignerResult struct {
	SignerUUID  string       `json:"signer_uuid"`
	PublicKey   string       `json:"public_key"`
	ApprovalURL string       `json:"signer_approval_url"`
	User        *models.User `json:"user"`
}

// CreateSigner provisions a signer for the given account and returns the URL
// its owner must visit to approve it. When the provider hands back a signer
// without an approval URL, the app registers it itself via a signed key
// request. The user row is upserted by fid so a repeat attempt supersedes the
// previous signer instead of accumulating.
func (s *SignerService) CreateSigner(ctx context.Context, req CreateSignerRequest) (*CreateSignerResult, error) {
	if req.Fid == 0 {
		return nil, apperrors.InvalidArg("fid is required")
	}

	signer, err := s.client.CreateSigner(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "failed to create signer", err)
	}

	approvalURL := signer.SignerApprovalURL
	if approvalURL == "" {
		approvalURL, err = s.registerSignedKey(ctx, signer)
		if err != nil {
			return nil, err
		}
	}

	user := &models.User{
		Fid:         req.Fid,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		PfpURL:      req.PfpURL,
		SignerUUID:  &signer.SignerUUID,
	}
	if req.CustodyAddress != "" {
		user.CustodyAddress = &req.CustodyAddress
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		// The remote signer exists but we lost the local record; log enough
		// to reconcile by hand.
		s.logger.Error("signer registered but user upsert failed",
			"fid", req.Fid, "signer_uuid", signer.SignerUUID, "error", err)
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to save user", err)
	}

	return &CreateSignerResult{
		SignerUUID:  signer.SignerUUID,
		PublicKey:   signer.PublicKey,
		ApprovalURL: approvalURL,
		User:        user,
	}, nil
}

// registerSignedKey is the fallback path for providers that do not sponsor
// signer approval: derive the app wallet, resolve the app fid, sign the key
// request and register it.
func (s *SignerService) registerSignedKey(ctx context.Context, signer *neynar.Signer) (string, error) {
	if s.cfg.SeedPhrase == "" {
		return "", apperrors.FailedPrecondition("SEED_PHRASE is required to register a signer without a sponsored approval URL")
	}

	w, err := s.newWallet(s.cfg.SeedPhrase)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeFailedPrecondition, "failed to derive app wallet from SEED_PHRASE", err)
	}

	appFid, err := s.resolveAppFid(ctx, w)
	if err != nil {
		return "", err
	}

	deadline := time.Now().Add(s.cfg.SignerDeadline)
	signature, err := w.SignKeyRequest(appFid, signer.PublicKey, deadline)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, "failed to sign key request", err)
	}

	registered, err := s.client.RegisterSignedKey(ctx, signer.SignerUUID, appFid, deadline.Unix(), signature, s.cfg.SponsorSigner)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUnavailable, "failed to register signed key", err)
	}

	if registered.SignerApprovalURL == "" {
		// The provider accepted the registration but returned no approval
		// URL; nothing downstream can proceed, surface it.
		return "", apperrors.Internal("signer registration returned no approval URL")
	}
	return registered.SignerApprovalURL, nil
}

func (s *SignerService) resolveAppFid(ctx context.Context, w KeySigner) (int64, error) {
	if s.cfg.DeveloperFid != 0 {
		return s.cfg.DeveloperFid, nil
	}

	user, err := s.client.SearchUserByAddress(ctx, w.AddressHex())
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeUnavailable, "failed to look up app fid by custody address", err)
	}
	if user == nil {
		return 0, apperrors.FailedPrecondition(
			"could not resolve the app fid: set FARCASTER_DEVELOPER_FID or register the seed wallet's address as a Farcaster custody address")
	}
	return user.Fid, nil
}

type SignerStatus struct {
	Status string `json:"status"`
	Fid    int64  `json:"fid,omitempty"`
}

// Status fetches the remote signer state. On approval the signer/fid linkage
// is persisted; a persistence failure there is logged but does not mask the
// approved status.
func (s *SignerService) Status(ctx context.Context, signerUUID string) (*SignerStatus, error) {
	if signerUUID == "" {
		return nil, apperrors.InvalidArg("signer_uuid is required")
	}

	signer, err := s.client.LookupSigner(ctx, signerUUID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "failed to check signer status", err)
	}

	if signer.Status == neynar.SignerStatusApproved {
		if err := s.users.SetSignerUUID(ctx, signer.Fid, signerUUID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			s.logger.Error("failed to persist approved signer",
				"fid", signer.Fid, "signer_uuid", signerUUID, "error", err)
		}
	}

	return &SignerStatus{Status: signer.Status, Fid: signer.Fid}, nil
}

// ResolveFid finds the Farcaster account owning an address, matching either
// the custody address or any verified address.
func (s *SignerService) ResolveFid(ctx context.Context, address string) (*neynar.User, error) {
	if address == "" {
		return nil, apperrors.InvalidArg("address is required")
	}

	user, err := s.client.SearchUserByAddress(ctx, address)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "failed to search user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("no Farcaster account found for this address")
	}
	return user, nil
}
