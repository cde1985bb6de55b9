package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/trashbot/internal/domain"
	"github.com/bnema/trashbot/internal/ports"
)

const (
	peersPathKey    = "peers_path"
	peersFileMode   = 0o600
	peersDirMode    = 0o700
	peersConfigDir  = ".trashbot"
	peersConfigFile = "peers.toml"
	tempFilePattern = ".peers-*.toml.tmp"
)

// RosterRepository persists blocked and allowed peers in a TOML file.
type RosterRepository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.PeerRoster = (*RosterRepository)(nil)

func NewRosterRepository(cfg *viper.Viper) (*RosterRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	path := cfg.GetString(peersPathKey)
	if path == "" {
		path = filepath.Join(homeDir, peersConfigDir, peersConfigFile)
	}

	path, err = normalizePeersPath(path)
	if err != nil {
		return nil, err
	}

	return &RosterRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *RosterRepository) IsBlocked(ctx context.Context, peer domain.PeerID) (bool, error) {
	roster, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	return containsPeer(roster.Blocked, peer), nil
}

func (r *RosterRepository) IsAllowed(ctx context.Context, peer domain.PeerID) (bool, error) {
	roster, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	return containsPeer(roster.Allowed, peer), nil
}

func (r *RosterRepository) Block(ctx context.Context, peer domain.PeerID) error {
	return r.update(ctx, func(file *rosterFileSchema) {
		file.Blocked = appendUnique(file.Blocked, string(peer))
	})
}

func (r *RosterRepository) Unblock(ctx context.Context, peer domain.PeerID) error {
	return r.update(ctx, func(file *rosterFileSchema) {
		file.Blocked = removeEntry(file.Blocked, string(peer))
	})
}

func (r *RosterRepository) Allow(ctx context.Context, peer domain.PeerID) error {
	return r.update(ctx, func(file *rosterFileSchema) {
		file.Allowed = appendUnique(file.Allowed, string(peer))
	})
}

func (r *RosterRepository) List(ctx context.Context) (ports.Roster, error) {
	if err := ctx.Err(); err != nil {
		return ports.Roster{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return ports.Roster{}, err
	}

	return ports.Roster{
		Blocked: toPeerIDs(file.Blocked),
		Allowed: toPeerIDs(file.Allowed),
	}, nil
}

func (r *RosterRepository) update(ctx context.Context, apply func(*rosterFileSchema)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	apply(&file)

	return r.writeSchema(file)
}

func (r *RosterRepository) readSchema() (rosterFileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return rosterFileSchema{}, nil
		}
		return rosterFileSchema{}, fmt.Errorf("read peers file: %w", err)
	}

	var file rosterFileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return rosterFileSchema{}, fmt.Errorf("decode peers file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return rosterFileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *RosterRepository) writeSchema(file rosterFileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), peersDirMode); err != nil {
		return fmt.Errorf("create peers directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode peers file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp peers file: %w", err)
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
		return fmt.Errorf("write temp peers file: %w", err)
	}

	if err := tempFile.Chmod(peersFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp peers file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp peers file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace peers file: %w", err)
	}

	cleanup = false
	return nil
}

func normalizePeersPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve peers path: %w", err)
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

func containsPeer(peers []domain.PeerID, peer domain.PeerID) bool {
	for _, p := range peers {
		if p == peer {
			return true
		}
	}
	return false
}

func appendUnique(entries []string, entry string) []string {
	for _, e := range entries {
		if e == entry {
			return entries
		}
	}
	return append(entries, entry)
}

func removeEntry(entries []string, entry string) []string {
	result := entries[:0]
	for _, e := range entries {
		if e != entry {
			result = append(result, e)
		}
	}
	return result
}

func toPeerIDs(entries []string) []domain.PeerID {
	peers := make([]domain.PeerID, 0, len(entries))
	for _, e := range entries {
		peers = append(peers, domain.PeerID(e))
	}
	return peers
}
