package ports

import "context"

type CredentialSource interface {
	// SecretKeys returns the ordered secret keys. An empty result is an error.
	SecretKeys(ctx context.Context) ([]string, error)
	// Proxies returns the ordered proxy URLs. A missing source yields
	// domain.ErrProxiesMissing, which callers treat as a warning.
	Proxies(ctx context.Context) ([]string, error)
	ReferralCode(ctx context.Context) string
}
