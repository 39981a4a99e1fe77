package eip712

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/ports"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

var errEmptySecret = errors.New("secret key is empty")

type Wallet struct {
	key     *ecdsa.PrivateKey
	address domain.AccountAddress
}

var _ ports.Wallet = (*Wallet)(nil)

type Factory struct{}

var _ ports.WalletFactory = Factory{}

func (Factory) FromSecret(secret string) (ports.Wallet, error) {
	return NewWallet(secret)
}

// NewWallet derives the account identity from a hex secp256k1 private key,
// with or without the 0x prefix.
func NewWallet(secret string) (*Wallet, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(secret), "0x")
	if trimmed == "" {
		return nil, errEmptySecret
	}

	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse secret key: %w", err)
	}

	return &Wallet{
		key:     key,
		address: domain.AccountAddress(crypto.PubkeyToAddress(key.PublicKey).Hex()),
	}, nil
}

func (w *Wallet) Address() domain.AccountAddress {
	return w.address
}

func (w *Wallet) SignChallenge(challenge domain.Challenge) (domain.SignedChallenge, error) {
	typed := BuildChallenge(challenge.Address, challenge.Nonce, challenge.RequestID, challenge.IssuedAt)

	signature, err := Sign(typed, w.key)
	if err != nil {
		return domain.SignedChallenge{}, err
	}

	domainDoc, typesDoc, valueDoc, err := Serialize(challenge)
	if err != nil {
		return domain.SignedChallenge{}, err
	}

	return domain.SignedChallenge{
		Signature: signature,
		Domain:    domainDoc,
		Types:     typesDoc,
		Value:     valueDoc,
	}, nil
}

// Sign hashes typed per EIP-712 and returns the 65-byte signature as hex,
// with the recovery id in the 27/28 form wallets emit.
func Sign(typed apitypes.TypedData, key *ecdsa.PrivateKey) (string, error) {
	digest, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return "", fmt.Errorf("hash typed data: %w", err)
	}

	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return "", fmt.Errorf("sign typed data: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), nil
}

// Recover returns the address that produced signature over typed.
func Recover(typed apitypes.TypedData, signature string) (domain.AccountAddress, error) {
	digest, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return "", fmt.Errorf("hash typed data: %w", err)
	}

	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature length %d, want %d", len(sig), crypto.SignatureLength)
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}

	return domain.AccountAddress(crypto.PubkeyToAddress(*pub).Hex()), nil
}
