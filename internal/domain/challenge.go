package domain

import "time"

// Challenge is the variable part of the structured sign-in message.
type Challenge struct {
	Address   AccountAddress
	Nonce     string
	RequestID string
	IssuedAt  time.Time
}

// SignedChallenge carries the signature plus the exact serialized
// domain/types/value the server re-derives the message from.
type SignedChallenge struct {
	Signature string
	Domain    string
	Types     string
	Value     string
}

type SignInRequest struct {
	Address      AccountAddress
	Signed       SignedChallenge
	CSRF         CSRF
	ReferralCode string
}
