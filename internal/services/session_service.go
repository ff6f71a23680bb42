package services

import (
	"context"
	"strconv"
	"time"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/neynar"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = apperrors.Unauthorized("invalid or expired token")

// SessionService issues and verifies the HS256 tokens that identify a fid on
// the cast endpoints. A token is only handed out for a signer the provider
// reports approved.
type SessionService struct {
	client SignerClient
	secret string
	expiry time.Duration
}

func NewSessionService(client SignerClient, secret string, expiry time.Duration) *SessionService {
	return &SessionService{client: client, secret: secret, expiry: expiry}
}

type SessionResponse struct {
	Token     string    `json:"token"`
	Fid       int64     `json:"fid"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueForSigner exchanges an approved signer for a session token.
func (s *SessionService) IssueForSigner(ctx context.Context, signerUUID string) (*SessionResponse, error) {
	if signerUUID == "" {
		return nil, apperrors.InvalidArg("signer_uuid is required")
	}

	signer, err := s.client.LookupSigner(ctx, signerUUID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnavailable, "failed to verify signer", err)
	}
	if signer.Status != neynar.SignerStatusApproved {
		return nil, apperrors.Forbidden("signer is not approved")
	}

	expiresAt := time.Now().Add(s.expiry)
	token, err := s.generateToken(signer.Fid, expiresAt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to generate token", err)
	}

	return &SessionResponse{Token: token, Fid: signer.Fid, ExpiresAt: expiresAt}, nil
}

func (s *SessionService) generateToken(fid int64, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(fid, 10),
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyToken returns the fid a valid token belongs to.
func (s *SessionService) VerifyToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Unauthorized("unexpected signing method")
		}
		return []byte(s.secret), nil
	})

	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrInvalidToken
	}
	fid, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || fid == 0 {
		return 0, ErrInvalidToken
	}

	return fid, nil
}
