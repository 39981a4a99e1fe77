package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/ports"
)

// DefaultReferralCode is used when the referral file is absent, unreadable
// or empty.
const DefaultReferralCode = "a1xZyAsO"

const proxyScheme = "http://"

type Paths struct {
	Keys     string
	Proxies  string
	Referral string
}

// Store reads line-oriented credential files. Blank lines and lines starting
// with '#' are ignored.
type Store struct {
	paths Paths
}

var _ ports.CredentialSource = (*Store)(nil)

func NewStore(paths Paths) *Store {
	return &Store{paths: Paths{
		Keys:     cleanPath(paths.Keys),
		Proxies:  cleanPath(paths.Proxies),
		Referral: cleanPath(paths.Referral),
	}}
}

func (s *Store) SecretKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.paths.Keys == "" {
		return nil, errors.New("keys file path is empty")
	}

	data, err := os.ReadFile(s.paths.Keys)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("keys file %q not found: %w", s.paths.Keys, domain.ErrNoKeys)
		}
		return nil, fmt.Errorf("read keys file %q: %w", s.paths.Keys, err)
	}

	keys, err := readLines(data)
	if err != nil {
		return nil, fmt.Errorf("scan keys file %q: %w", s.paths.Keys, err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("keys file %q: %w", s.paths.Keys, domain.ErrNoKeys)
	}

	return keys, nil
}

// Proxies returns the entries using the plain http scheme, in file order.
func (s *Store) Proxies(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.paths.Proxies == "" {
		return nil, domain.ErrProxiesMissing
	}

	data, err := os.ReadFile(s.paths.Proxies)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("proxies file %q: %w", s.paths.Proxies, domain.ErrProxiesMissing)
		}
		return nil, fmt.Errorf("read proxies file %q: %w", s.paths.Proxies, err)
	}

	lines, err := readLines(data)
	if err != nil {
		return nil, fmt.Errorf("scan proxies file %q: %w", s.paths.Proxies, err)
	}

	proxies := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, proxyScheme) {
			proxies = append(proxies, line)
		}
	}

	return proxies, nil
}

func (s *Store) ReferralCode(ctx context.Context) string {
	if ctx.Err() != nil || s.paths.Referral == "" {
		return DefaultReferralCode
	}

	data, err := os.ReadFile(s.paths.Referral)
	if err != nil {
		return DefaultReferralCode
	}

	code := strings.TrimSpace(string(data))
	if code == "" {
		return DefaultReferralCode
	}

	return code
}

func readLines(data []byte) ([]string, error) {
	lines := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	return lines, scanner.Err()
}

func cleanPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return filepath.Clean(path)
}
