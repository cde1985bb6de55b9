package toml

import "fmt"

const currentRosterSchemaVersion = 1

type rosterFileSchema struct {
	Version int      `toml:"version"`
	Blocked []string `toml:"blocked"`
	Allowed []string `toml:"allowed"`
}

func (s *rosterFileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentRosterSchemaVersion
	}
}

func (s rosterFileSchema) validateVersion() error {
	if s.Version > currentRosterSchemaVersion {
		return fmt.Errorf("unsupported peers schema version %d (current %d)", s.Version, currentRosterSchemaVersion)
	}

	return nil
}
