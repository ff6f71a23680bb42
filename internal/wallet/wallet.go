// Package wallet derives the application's custody account from its seed
// phrase and produces the EIP-712 signature that authorizes a new signer key.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

// Domain constants for the Farcaster signed-key-request validator contract.
// These are pinned on-chain values; a signature over any other domain will
// not validate.
const (
	validatorDomainName    = "Farcaster SignedKeyRequestValidator"
	validatorDomainVersion = "1"
	validatorChainID       = 10
	validatorContract      = "0x00000000FC700472606ED4fA22623Acf62c60553"
)

var derivationPath = hdwallet.MustParseDerivationPath("m/44'/60'/0'/0/0")

type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewFromMnemonic derives the first account of the standard Ethereum path
// from a BIP-39 seed phrase.
func NewFromMnemonic(mnemonic string) (*Wallet, error) {
	hd, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("invalid seed phrase: %w", err)
	}

	account, err := hd.Derive(derivationPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account: %w", err)
	}

	privateKey, err := hd.PrivateKey(account)
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}

	return &Wallet{privateKey: privateKey, address: account.Address}, nil
}

func (w *Wallet) Address() common.Address {
	return w.address
}

// AddressHex returns the checksummed 0x address of the derived account.
func (w *Wallet) AddressHex() string {
	return w.address.Hex()
}

// SignKeyRequest signs the typed-data message authorizing publicKey to act
// for requestFid until deadline. The deadline is fixed here, at signing time,
// and must be in the future.
func (w *Wallet) SignKeyRequest(requestFid int64, publicKey string, deadline time.Time) (string, error) {
	if !deadline.After(time.Now()) {
		return "", fmt.Errorf("deadline %s is not in the future", deadline)
	}

	keyBytes, err := hexutil.Decode(publicKey)
	if err != nil {
		return "", fmt.Errorf("invalid signer public key: %w", err)
	}

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"SignedKeyRequest": []apitypes.Type{
				{Name: "requestFid", Type: "uint256"},
				{Name: "key", Type: "bytes"},
				{Name: "deadline", Type: "uint256"},
			},
		},
		PrimaryType: "SignedKeyRequest",
		Domain: apitypes.TypedDataDomain{
			Name:              validatorDomainName,
			Version:           validatorDomainVersion,
			ChainId:           math.NewHexOrDecimal256(validatorChainID),
			VerifyingContract: validatorContract,
		},
		Message: apitypes.TypedDataMessage{
			"requestFid": (*math.HexOrDecimal256)(big.NewInt(requestFid)),
			"key":        hexutil.Bytes(keyBytes),
			"deadline":   (*math.HexOrDecimal256)(big.NewInt(deadline.Unix())),
		},
	}

	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return "", fmt.Errorf("failed to hash typed data: %w", err)
	}

	signature, err := crypto.Sign(digest, w.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign key request: %w", err)
	}

	// Recovery id to Ethereum convention.
	signature[64] += 27

	return hexutil.Encode(signature), nil
}
