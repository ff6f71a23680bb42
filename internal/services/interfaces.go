package services

import (
	"context"
	"time"

	"github.com/castqueue/castqueue/internal/neynar"
)

// SignerClient is the slice of the Neynar API the services consume.
type SignerClient interface {
	CreateSigner(ctx context.Context) (*neynar.Signer, error)
	LookupSigner(ctx context.Context, signerUUID string) (*neynar.Signer, error)
	RegisterSignedKey(ctx context.Context, signerUUID string, appFid int64, deadline int64, signature string, sponsored bool) (*neynar.Signer, error)
	SearchUserByAddress(ctx context.Context, address string) (*neynar.User, error)
	PublishCast(ctx context.Context, signerUUID, text string) (string, error)
}

// KeySigner produces the app's signed key requests.
type KeySigner interface {
	AddressHex() string
	SignKeyRequest(requestFid int64, publicKey string, deadline time.Time) (string, error)
}
