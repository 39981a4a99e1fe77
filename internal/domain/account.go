package domain

import "strings"

// AccountAddress is the checksummed public address derived from an account's
// secret key. It is the unique key of every account.
type AccountAddress string

func (a AccountAddress) Short() string {
	s := string(a)
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}

func (a AccountAddress) Equal(other AccountAddress) bool {
	return strings.EqualFold(string(a), string(other))
}

type Account struct {
	Label    string
	Address  AccountAddress
	ProxyURL string
}
