package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wricardo/karel-world-sim/pkg/logger"
	"github.com/wricardo/karel-world-sim/world"
)

// worldServiceImpl implements the WorldService interface
type worldServiceImpl struct {
	sessions SessionManager
	catalog  WorldCatalog
	mu       sync.RWMutex
}

// NewWorldService creates a new world service instance
func NewWorldService(sessions SessionManager, catalog WorldCatalog) WorldService {
	return &worldServiceImpl{
		sessions: sessions,
		catalog:  catalog,
	}
}

// CreateSession creates a new simulation session over the named world.
// An empty worldID selects the catalog's default world.
func (s *worldServiceImpl) CreateSession(ctx context.Context, worldID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if worldID == "" {
		worldID = s.catalog.DefaultWorldID()
	}

	w, err := s.catalog.LoadWorld(worldID)
	if err != nil {
		if available, listErr := s.catalog.ListWorlds(); listErr == nil && len(available) > 0 {
			var ids []string
			for _, info := range available {
				ids = append(ids, info.WorldID)
			}
			return nil, fmt.Errorf("world '%s' not found. Available worlds: %v", worldID, ids)
		}
		return nil, fmt.Errorf("failed to load world %s: %w", worldID, err)
	}

	// Let the session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", worldID, w)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *worldServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *worldServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *worldServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// GetWorldState retrieves the current world state for a session
func (s *worldServiceImpl) GetWorldState(ctx context.Context, sessionID string) (*WorldState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return StateFromWorld(sess.World), nil
}

// AddBeeper places one beeper at a corner
func (s *worldServiceImpl) AddBeeper(ctx context.Context, sessionID string, avenue, street int) (*OpResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	sess.World.AddBeeper(avenue, street)
	count := sess.World.BeeperAt(avenue, street)

	s.autoSave(sessionID)

	return &OpResult{
		Success:    true,
		Message:    fmt.Sprintf("Beeper added at (%d, %d), now %d", avenue, street, count),
		Position:   world.Position{Avenue: avenue, Street: street},
		Count:      count,
		WorldState: StateFromWorld(sess.World),
	}, nil
}

// RemoveBeeper picks up one beeper from a corner. Removing from an empty
// corner is an operation-level failure, not a transport error.
func (s *worldServiceImpl) RemoveBeeper(ctx context.Context, sessionID string, avenue, street int) (*OpResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.World.RemoveBeeper(avenue, street); err != nil {
		if errors.Is(err, world.ErrNoBeeper) {
			return &OpResult{
				Success:    false,
				Message:    err.Error(),
				Position:   world.Position{Avenue: avenue, Street: street},
				Count:      0,
				WorldState: StateFromWorld(sess.World),
			}, nil
		}
		return nil, err
	}

	count := sess.World.BeeperAt(avenue, street)

	s.autoSave(sessionID)

	return &OpResult{
		Success:    true,
		Message:    fmt.Sprintf("Beeper removed from (%d, %d), %d remaining", avenue, street, count),
		Position:   world.Position{Avenue: avenue, Street: street},
		Count:      count,
		WorldState: StateFromWorld(sess.World),
	}, nil
}

// WallExists reports whether a wall blocks the given side of a corner
func (s *worldServiceImpl) WallExists(ctx context.Context, sessionID string, avenue, street int, direction string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return false, fmt.Errorf("session not found: %w", err)
	}

	dir, ok := world.ParseDirection(direction)
	if !ok {
		return false, fmt.Errorf("invalid direction: %s", direction)
	}

	return sess.World.WallExists(avenue, street, dir), nil
}

// InBounds reports whether a corner lies inside the world
func (s *worldServiceImpl) InBounds(ctx context.Context, sessionID string, avenue, street int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return false, fmt.Errorf("session not found: %w", err)
	}

	return sess.World.InBounds(avenue, street), nil
}

// ResetWorld restores a session's beepers to the initial layout
func (s *worldServiceImpl) ResetWorld(ctx context.Context, sessionID string) (*WorldState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	sess.World.Reset()

	s.autoSave(sessionID)

	return StateFromWorld(sess.World), nil
}

// ReloadWorld replaces a session's world with a freshly parsed copy of the
// named world file. An empty worldID reloads the session's current world.
func (s *worldServiceImpl) ReloadWorld(ctx context.Context, sessionID, worldID string) (*WorldState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	if worldID == "" {
		worldID = sess.WorldID
	}

	src, err := s.catalog.LoadSource(worldID)
	if err != nil {
		return nil, fmt.Errorf("failed to load world %s: %w", worldID, err)
	}

	if err := sess.World.Reload(strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("failed to reload world %s: %w", worldID, err)
	}
	sess.WorldID = worldID

	s.autoSave(sessionID)

	return StateFromWorld(sess.World), nil
}

// ListWorlds returns the catalog's available worlds
func (s *worldServiceImpl) ListWorlds(ctx context.Context) ([]*WorldInfo, error) {
	return s.catalog.ListWorlds()
}

// GetWorld returns the state of a catalog world without creating a session
func (s *worldServiceImpl) GetWorld(ctx context.Context, worldID string) (*WorldState, error) {
	w, err := s.catalog.LoadWorld(worldID)
	if err != nil {
		return nil, err
	}
	return StateFromWorld(w), nil
}

// SaveWorld validates a world definition and writes it to the catalog
func (s *worldServiceImpl) SaveWorld(ctx context.Context, worldID, source string) (*WorldInfo, error) {
	if worldID == "" {
		return nil, fmt.Errorf("world id is required")
	}

	w, err := world.NewFromReader(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("invalid world definition: %w", err)
	}

	if err := s.catalog.SaveWorld(worldID, w); err != nil {
		return nil, fmt.Errorf("failed to save world: %w", err)
	}

	beeperCount := 0
	for _, count := range w.Beepers() {
		beeperCount += count
	}

	return &WorldInfo{
		Filename:    worldID + ".w",
		WorldID:     worldID,
		Avenues:     w.NumAvenues(),
		Streets:     w.NumStreets(),
		BeeperCount: beeperCount,
		WallCount:   len(w.Walls()),
	}, nil
}

// autoSave persists a session after a mutation, logging failures instead
// of surfacing them.
func (s *worldServiceImpl) autoSave(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		logger.Log.WithError(err).WithField("session", sessionID).Warn("failed to persist session")
	}
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		WorldID:        sess.WorldID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		WorldState:     StateFromWorld(sess.World),
	}
}
