// Package neynar is the adapter for the Neynar Farcaster API: signer
// lifecycle, user lookup and cast publishing.
package neynar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.neynar.com"

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateSigner asks the provider for a fresh signer key pair. Depending on
// the provider's sponsorship settings the response may already carry an
// approval URL; when it does not, the caller has to register a signed key
// request before anyone can approve the signer.
func (c *Client) CreateSigner(ctx context.Context) (*Signer, error) {
	var signer Signer
	if err := c.doJSON(ctx, http.MethodPost, "/v2/farcaster/signer", nil, &signer); err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	return &signer, nil
}

// LookupSigner fetches the current status of a signer. Status is owned by
// the provider; callers must never cache an "approved" locally.
func (c *Client) LookupSigner(ctx context.Context, signerUUID string) (*Signer, error) {
	path := "/v2/farcaster/signer?signer_uuid=" + url.QueryEscape(signerUUID)
	var signer Signer
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &signer); err != nil {
		return nil, fmt.Errorf("lookup signer: %w", err)
	}
	return &signer, nil
}

// RegisterSignedKey submits the app-signed key request for a signer. The
// response carries the approval URL the end user has to visit.
func (c *Client) RegisterSignedKey(ctx context.Context, signerUUID string, appFid int64, deadline int64, signature string, sponsored bool) (*Signer, error) {
	body := registerSignedKeyRequest{
		SignerUUID: signerUUID,
		AppFid:     appFid,
		Deadline:   deadline,
		Signature:  signature,
	}
	if sponsored {
		body.Sponsor = &struct {
			SponsoredByNeynar bool `json:"sponsored_by_neynar"`
		}{SponsoredByNeynar: true}
	}

	var signer Signer
	if err := c.doJSON(ctx, http.MethodPost, "/v2/farcaster/signer/signed_key", body, &signer); err != nil {
		return nil, fmt.Errorf("register signed key: %w", err)
	}
	return &signer, nil
}

// SearchUserByAddress resolves a custody or verified address to a Farcaster
// user. Returns nil when no user matches.
func (c *Client) SearchUserByAddress(ctx context.Context, address string) (*User, error) {
	path := "/v2/farcaster/user/search?q=" + url.QueryEscape(address)
	var resp searchUserResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("search user: %w", err)
	}

	normalized := strings.ToLower(address)
	for i := range resp.Result.Users {
		u := &resp.Result.Users[i]
		if strings.ToLower(u.CustodyAddress) == normalized {
			return u, nil
		}
		for _, verified := range u.VerifiedAddresses.EthAddresses {
			if strings.ToLower(verified) == normalized {
				return u, nil
			}
		}
	}
	return nil, nil
}

// PublishCast posts content on behalf of an approved signer and returns the
// cast hash.
func (c *Client) PublishCast(ctx context.Context, signerUUID, text string) (string, error) {
	body := publishCastRequest{SignerUUID: signerUUID, Text: text}

	var resp publishCastResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v2/farcaster/cast", body, &resp); err != nil {
		return "", fmt.Errorf("publish cast: %w", err)
	}
	return resp.Cast.Hash, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	var reader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", c.APIKey)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
