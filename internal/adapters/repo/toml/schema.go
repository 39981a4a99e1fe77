package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version   int              `toml:"version"`
	Snapshots []snapshotSchema `toml:"snapshots"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported state schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type snapshotSchema struct {
	Address     string     `toml:"address"`
	Label       string     `toml:"label"`
	Node        nodeSchema `toml:"node"`
	TotalPoints float64    `toml:"total_points"`
	UpdatedAt   string     `toml:"updated_at"`
	LastError   string     `toml:"last_error,omitempty"`
}

type nodeSchema struct {
	Running          bool    `toml:"running"`
	SecondsRemaining float64 `toml:"seconds_remaining"`
	EarnedCredits    float64 `toml:"earned_credits"`
	CreditsPerHour   float64 `toml:"credits_per_hour"`
}
