package eip712

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	DomainName        = "Synthelix"
	DomainVersion     = "1"
	ChainID           = 1
	VerifyingContract = "0x0000000000000000000000000000000000000000"
	PrimaryType       = "Authentication"
	Statement         = "Sign in to enter Synthelix Dashboard."

	issuedAtLayout = "2006-01-02T15:04:05.000Z07:00"
)

type field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

var authenticationFields = []field{
	{Name: "address", Type: "address"},
	{Name: "statement", Type: "string"},
	{Name: "nonce", Type: "string"},
	{Name: "requestId", Type: "string"},
	{Name: "issuedAt", Type: "string"},
}

// Field order of these wire structs is what the server re-serializes, so it
// must not change.
type domainJSON struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	ChainID           int64  `json:"chainId"`
	VerifyingContract string `json:"verifyingContract"`
}

type typesJSON struct {
	Authentication []field `json:"Authentication"`
}

type valueJSON struct {
	Address   string `json:"address"`
	Statement string `json:"statement"`
	Nonce     string `json:"nonce"`
	RequestID string `json:"requestId"`
	IssuedAt  string `json:"issuedAt"`
}

// FormatIssuedAt renders t as an ISO-8601 UTC timestamp with millisecond
// precision.
func FormatIssuedAt(t time.Time) string {
	return t.UTC().Format(issuedAtLayout)
}

// BuildChallenge returns the typed-data sign-in message. It is a pure
// function of its inputs.
func BuildChallenge(address domain.AccountAddress, nonce, requestID string, issuedAt time.Time) apitypes.TypedData {
	authTypes := make([]apitypes.Type, 0, len(authenticationFields))
	for _, f := range authenticationFields {
		authTypes = append(authTypes, apitypes.Type{Name: f.Name, Type: f.Type})
	}

	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			PrimaryType: authTypes,
		},
		PrimaryType: PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			Version:           DomainVersion,
			ChainId:           math.NewHexOrDecimal256(ChainID),
			VerifyingContract: VerifyingContract,
		},
		Message: apitypes.TypedDataMessage{
			"address":   string(address),
			"statement": Statement,
			"nonce":     nonce,
			"requestId": requestID,
			"issuedAt":  FormatIssuedAt(issuedAt),
		},
	}
}

// Serialize returns the JSON documents submitted alongside the signature.
func Serialize(challenge domain.Challenge) (domainDoc, typesDoc, valueDoc string, err error) {
	d, err := json.Marshal(domainJSON{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainID:           ChainID,
		VerifyingContract: VerifyingContract,
	})
	if err != nil {
		return "", "", "", fmt.Errorf("encode challenge domain: %w", err)
	}

	ty, err := json.Marshal(typesJSON{Authentication: authenticationFields})
	if err != nil {
		return "", "", "", fmt.Errorf("encode challenge types: %w", err)
	}

	v, err := json.Marshal(valueJSON{
		Address:   string(challenge.Address),
		Statement: Statement,
		Nonce:     challenge.Nonce,
		RequestID: challenge.RequestID,
		IssuedAt:  FormatIssuedAt(challenge.IssuedAt),
	})
	if err != nil {
		return "", "", "", fmt.Errorf("encode challenge value: %w", err)
	}

	return string(d), string(ty), string(v), nil
}
