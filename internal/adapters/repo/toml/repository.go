package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	StatePathKey    = "state.path"
	stateFileMode   = 0o600
	stateDirMode    = 0o700
	stateConfigDir  = ".config/synthelix"
	stateConfigFile = "state.toml"
	tempFilePattern = ".state-*.toml.tmp"
)

// Repository keeps the last snapshot of every account in a single TOML file.
// Writes replace the file atomically.
type Repository struct {
	statePath string
	mu        *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SnapshotRepository = (*Repository)(nil)

func DefaultStatePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, stateConfigDir, stateConfigFile), nil
}

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	statePath := cfg.GetString(StatePathKey)
	if statePath == "" {
		defaultPath, err := DefaultStatePath()
		if err != nil {
			return nil, err
		}
		statePath = defaultPath
	}

	statePath, err := normalizeStatePath(statePath)
	if err != nil {
		return nil, err
	}

	return &Repository{statePath: statePath, mu: lockForPath(statePath)}, nil
}

func (r *Repository) Path() string {
	return r.statePath
}

// Save upserts the snapshot keyed by address, compared case-insensitively.
func (r *Repository) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	encoded := toSchema(snapshot)
	updated := false
	for i := range file.Snapshots {
		if domain.AccountAddress(file.Snapshots[i].Address).Equal(snapshot.Address) {
			file.Snapshots[i] = encoded
			updated = true
			break
		}
	}

	if !updated {
		file.Snapshots = append(file.Snapshots, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) Get(ctx context.Context, address domain.AccountAddress) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Snapshot{}, err
	}

	for _, entry := range file.Snapshots {
		if address.Equal(domain.AccountAddress(entry.Address)) {
			return fromSchema(entry), nil
		}
	}

	return domain.Snapshot{}, domain.ErrSnapshotNotFound
}

// List returns every snapshot ordered by label.
func (r *Repository) List(ctx context.Context) ([]domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.Snapshot, 0, len(file.Snapshots))
	for _, entry := range file.Snapshots {
		snapshots = append(snapshots, fromSchema(entry))
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return labelLess(snapshots[i].Label, snapshots[j].Label)
	})

	return snapshots, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.statePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read state file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode state file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeStatePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve state path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.statePath), stateDirMode); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.statePath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}

	if err := tempFile.Chmod(stateFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp state file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tempName, r.statePath); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	cleanup = false
	return nil
}

func toSchema(snapshot domain.Snapshot) snapshotSchema {
	return snapshotSchema{
		Address: string(snapshot.Address),
		Label:   snapshot.Label,
		Node: nodeSchema{
			Running:          snapshot.Status.Running,
			SecondsRemaining: snapshot.Status.SecondsRemaining,
			EarnedCredits:    snapshot.Status.EarnedCredits,
			CreditsPerHour:   snapshot.Status.CreditsPerHour,
		},
		TotalPoints: snapshot.Points.TotalPoints,
		UpdatedAt:   formatTime(snapshot.UpdatedAt),
		LastError:   snapshot.LastError,
	}
}

func fromSchema(entry snapshotSchema) domain.Snapshot {
	return domain.Snapshot{
		Address: domain.AccountAddress(entry.Address),
		Label:   entry.Label,
		Status: domain.NodeStatus{
			Running:          entry.Node.Running,
			SecondsRemaining: entry.Node.SecondsRemaining,
			EarnedCredits:    entry.Node.EarnedCredits,
			CreditsPerHour:   entry.Node.CreditsPerHour,
		},
		Points:    domain.PointsSummary{TotalPoints: entry.TotalPoints},
		UpdatedAt: parseTime(entry.UpdatedAt),
		LastError: entry.LastError,
	}
}

// labelLess orders "Wallet 2" before "Wallet 10".
func labelLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
