package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRosterPairsProxiesByPosition(t *testing.T) {
	wallets := mocks.NewMockWalletFactory(t)
	for i, addr := range []domain.AccountAddress{"0x01", "0x02", "0x03"} {
		wallets.EXPECT().FromSecret([]string{"k1", "k2", "k3"}[i]).Return(&fakeWallet{address: addr}, nil)
	}

	roster, err := LoadRoster(context.Background(), fakeCredentials{
		keys:     []string{"k1", "k2", "k3"},
		proxies:  []string{"http://p1:8080", "http://p2:8080"},
		referral: "custom",
	}, wallets, nil)
	require.NoError(t, err)

	require.Len(t, roster.Members, 3)
	assert.Equal(t, "custom", roster.ReferralCode)
	assert.Equal(t, domain.Account{Label: "Wallet 1", Address: "0x01", ProxyURL: "http://p1:8080"}, roster.Members[0].Account)
	assert.Equal(t, domain.Account{Label: "Wallet 2", Address: "0x02", ProxyURL: "http://p2:8080"}, roster.Members[1].Account)
	assert.Equal(t, domain.Account{Label: "Wallet 3", Address: "0x03"}, roster.Members[2].Account)
}

func TestLoadRosterMissingProxiesRunsDirect(t *testing.T) {
	wallets := mocks.NewMockWalletFactory(t)
	wallets.EXPECT().FromSecret("k1").Return(&fakeWallet{address: "0x01"}, nil)

	roster, err := LoadRoster(context.Background(), fakeCredentials{
		keys:       []string{"k1"},
		proxiesErr: domain.ErrProxiesMissing,
	}, wallets, nil)
	require.NoError(t, err)

	require.Len(t, roster.Members, 1)
	assert.Empty(t, roster.Members[0].Account.ProxyURL)
}

func TestLoadRosterSkipsDuplicateKeys(t *testing.T) {
	wallets := mocks.NewMockWalletFactory(t)
	wallets.EXPECT().FromSecret("k1").Return(&fakeWallet{address: "0x01"}, nil).Twice()

	roster, err := LoadRoster(context.Background(), fakeCredentials{keys: []string{"k1", "k1"}}, wallets, nil)
	require.NoError(t, err)

	require.Len(t, roster.Members, 1)
	assert.Equal(t, "Wallet 1", roster.Members[0].Account.Label)
}

func TestLoadRosterFailures(t *testing.T) {
	t.Run("no keys", func(t *testing.T) {
		_, err := LoadRoster(context.Background(), fakeCredentials{keysErr: domain.ErrNoKeys}, mocks.NewMockWalletFactory(t), nil)
		require.ErrorIs(t, err, domain.ErrNoKeys)
	})

	t.Run("empty keys", func(t *testing.T) {
		_, err := LoadRoster(context.Background(), fakeCredentials{}, mocks.NewMockWalletFactory(t), nil)
		require.ErrorIs(t, err, domain.ErrNoKeys)
	})

	t.Run("unreadable proxies", func(t *testing.T) {
		_, err := LoadRoster(context.Background(), fakeCredentials{
			keys:       []string{"k1"},
			proxiesErr: errors.New("permission denied"),
		}, mocks.NewMockWalletFactory(t), nil)
		require.ErrorContains(t, err, "load proxies")
	})

	t.Run("invalid key", func(t *testing.T) {
		wallets := mocks.NewMockWalletFactory(t)
		wallets.EXPECT().FromSecret("bad").Return(nil, errors.New("invalid length"))

		_, err := LoadRoster(context.Background(), fakeCredentials{keys: []string{"bad"}}, wallets, nil)
		require.ErrorContains(t, err, "derive Wallet 1")
	})
}
