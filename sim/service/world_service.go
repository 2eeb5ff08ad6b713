package service

import (
	"context"
	"time"

	"github.com/wricardo/karel-world-sim/world"
)

// WorldService defines all world-related operations exposed to transports.
type WorldService interface {
	// Session management
	CreateSession(ctx context.Context, worldID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// World state and mutations
	GetWorldState(ctx context.Context, sessionID string) (*WorldState, error)
	AddBeeper(ctx context.Context, sessionID string, avenue, street int) (*OpResult, error)
	RemoveBeeper(ctx context.Context, sessionID string, avenue, street int) (*OpResult, error)

	// Queries
	WallExists(ctx context.Context, sessionID string, avenue, street int, direction string) (bool, error)
	InBounds(ctx context.Context, sessionID string, avenue, street int) (bool, error)

	// Lifecycle
	ResetWorld(ctx context.Context, sessionID string) (*WorldState, error)
	ReloadWorld(ctx context.Context, sessionID, worldID string) (*WorldState, error)

	// Catalog
	ListWorlds(ctx context.Context) ([]*WorldInfo, error)
	GetWorld(ctx context.Context, worldID string) (*WorldState, error)
	SaveWorld(ctx context.Context, worldID, source string) (*WorldInfo, error)
}

// SessionManager defines session storage operations.
type SessionManager interface {
	Create(id, worldID string, w *world.World) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// WorldCatalog handles world file loading and saving.
type WorldCatalog interface {
	LoadWorld(name string) (*world.World, error)
	LoadSource(name string) (string, error)
	ListWorlds() ([]*WorldInfo, error)
	DefaultWorldID() string
	SaveWorld(name string, w *world.World) error
}

// Session represents an active simulation session owning one world.
type Session struct {
	ID             string
	World          *world.World
	WorldID        string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
