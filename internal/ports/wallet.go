package ports

import "github.com/bnema/synthelix-nodes/internal/domain"

// Wallet is an account identity derived from a secret key. It proves address
// ownership by signing the sign-in challenge locally.
type Wallet interface {
	Address() domain.AccountAddress
	SignChallenge(challenge domain.Challenge) (domain.SignedChallenge, error)
}

type WalletFactory interface {
	FromSecret(secret string) (Wallet, error)
}
