package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/ports"
	"go.uber.org/zap"
)

// Roster is the ordered set of accounts a run manages.
type Roster struct {
	Members      []Member
	ReferralCode string
}

// LoadRoster reads the credential source, derives every identity and pairs
// account i with proxy i. Accounts beyond the proxy list run direct.
func LoadRoster(ctx context.Context, source ports.CredentialSource, wallets ports.WalletFactory, logger *zap.Logger) (Roster, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	keys, err := source.SecretKeys(ctx)
	if err != nil {
		return Roster{}, fmt.Errorf("load secret keys: %w", err)
	}
	if len(keys) == 0 {
		return Roster{}, domain.ErrNoKeys
	}
	logger.Info("loaded wallets", zap.Int("count", len(keys)))

	proxies, err := source.Proxies(ctx)
	switch {
	case errors.Is(err, domain.ErrProxiesMissing):
		logger.Warn("proxy list not found, running without proxies")
		proxies = nil
	case err != nil:
		return Roster{}, fmt.Errorf("load proxies: %w", err)
	default:
		logger.Info("loaded proxies", zap.Int("count", len(proxies)))
	}

	if len(proxies) > 0 && len(proxies) < len(keys) {
		logger.Warn("fewer proxies than wallets, some wallets will run without proxies",
			zap.Int("proxies", len(proxies)), zap.Int("wallets", len(keys)))
	}

	members := make([]Member, 0, len(keys))
	seen := make(map[domain.AccountAddress]string, len(keys))
	for i, key := range keys {
		label := fmt.Sprintf("Wallet %d", i+1)

		wallet, err := wallets.FromSecret(key)
		if err != nil {
			return Roster{}, fmt.Errorf("derive %s: %w", label, err)
		}

		if first, dup := seen[wallet.Address()]; dup {
			logger.Warn("duplicate wallet skipped", zap.String("wallet", label), zap.String("duplicate_of", first))
			continue
		}
		seen[wallet.Address()] = label

		var proxy string
		if i < len(proxies) {
			proxy = proxies[i]
		}

		members = append(members, Member{
			Account: domain.Account{Label: label, Address: wallet.Address(), ProxyURL: proxy},
			Wallet:  wallet,
		})
	}

	return Roster{Members: members, ReferralCode: source.ReferralCode(ctx)}, nil
}
