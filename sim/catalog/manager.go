package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/karel-world-sim/sim/service"
	"github.com/wricardo/karel-world-sim/world"
)

var (
	ErrWorldNotFound = errors.New("world not found")
	ErrInvalidWorld  = errors.New("invalid world file")
)

// worldExt is the extension of world files in the catalog directory.
const worldExt = ".w"

// builtinSource backs the default world when the directory has none.
const builtinSource = `Dimension: (5, 5)
Karel: (1, 1); East
BeeperBag: 0
Speed: 0.5
Beeper: (3, 3); 1
`

// Manager loads and caches world files from a directory. The cache holds
// raw file contents; every LoadWorld call parses a fresh World so sessions
// never alias each other's mutable state.
type Manager struct {
	worldsDir string
	sources   map[string][]byte
	mu        sync.RWMutex
}

// NewManager creates a new world catalog over the given directory.
func NewManager(worldsDir string) (*Manager, error) {
	if _, err := os.Stat(worldsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("worlds directory does not exist: %s", worldsDir)
	}

	return &Manager{
		worldsDir: worldsDir,
		sources:   make(map[string][]byte),
	}, nil
}

// LoadWorld parses a fresh world from the named file. The default world
// falls back to a built-in minimal world when its file is missing.
func (m *Manager) LoadWorld(name string) (*world.World, error) {
	src, err := m.LoadSource(name)
	if err != nil {
		if errors.Is(err, ErrWorldNotFound) && name == m.DefaultWorldID() {
			return world.NewFromReader(strings.NewReader(builtinSource))
		}
		return nil, err
	}

	w, err := world.NewFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWorld, name, err)
	}
	return w, nil
}

// LoadSource returns the raw contents of the named world file.
func (m *Manager) LoadSource(name string) (string, error) {
	m.mu.RLock()
	if src, exists := m.sources[name]; exists {
		m.mu.RUnlock()
		return string(src), nil
	}
	m.mu.RUnlock()

	data, err := os.ReadFile(m.worldPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrWorldNotFound, name)
		}
		return "", fmt.Errorf("failed to read world file: %w", err)
	}

	m.mu.Lock()
	m.sources[name] = data
	m.mu.Unlock()

	return string(data), nil
}

// ListWorlds returns summary information about every world in the
// directory. Files that fail to parse are skipped.
func (m *Manager) ListWorlds() ([]*service.WorldInfo, error) {
	entries, err := os.ReadDir(m.worldsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read worlds directory: %w", err)
	}

	var worlds []*service.WorldInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), worldExt) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), worldExt)
		w, err := m.LoadWorld(name)
		if err != nil {
			continue
		}

		worlds = append(worlds, worldInfo(entry.Name(), name, w))
	}

	return worlds, nil
}

// DefaultWorldID returns the world used when a session names none:
// "default" if default.w exists, otherwise the alphabetically first file,
// otherwise "default" backed by the built-in world.
func (m *Manager) DefaultWorldID() string {
	if _, err := os.Stat(m.worldPath("default")); err == nil {
		return "default"
	}

	entries, err := os.ReadDir(m.worldsDir)
	if err != nil {
		return "default"
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), worldExt) {
			names = append(names, strings.TrimSuffix(entry.Name(), worldExt))
		}
	}
	if len(names) == 0 {
		return "default"
	}

	sort.Strings(names)
	return names[0]
}

// SaveWorld writes a world to disk in canonical form and refreshes the
// cache entry.
func (m *Manager) SaveWorld(name string, w *world.World) error {
	var buf bytes.Buffer
	if err := w.Encode(&buf); err != nil {
		return fmt.Errorf("failed to encode world: %w", err)
	}

	if err := os.WriteFile(m.worldPath(name), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write world file: %w", err)
	}

	m.mu.Lock()
	m.sources[name] = buf.Bytes()
	m.mu.Unlock()

	return nil
}

// RefreshCache drops all cached file contents.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = make(map[string][]byte)
}

// worldPath returns the full file path for a world name.
func (m *Manager) worldPath(name string) string {
	if !strings.HasSuffix(name, worldExt) {
		name += worldExt
	}
	return filepath.Join(m.worldsDir, name)
}

func worldInfo(filename, id string, w *world.World) *service.WorldInfo {
	beeperCount := 0
	for _, count := range w.Beepers() {
		beeperCount += count
	}

	return &service.WorldInfo{
		Filename:    filename,
		WorldID:     id,
		Avenues:     w.NumAvenues(),
		Streets:     w.NumStreets(),
		BeeperCount: beeperCount,
		WallCount:   len(w.Walls()),
	}
}
