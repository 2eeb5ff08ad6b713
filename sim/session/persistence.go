package session

import (
	"time"

	"github.com/wricardo/karel-world-sim/sim/service"
	"github.com/wricardo/karel-world-sim/world"
)

// Persistence defines session storage operations.
type Persistence interface {
	Save(session *service.Session) error
	Load(id string) (*service.Session, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// PersistedSession is the on-disk JSON form of a session. The world
// snapshot is self-contained, so loading needs no catalog round-trip.
type PersistedSession struct {
	ID             string          `json:"id"`
	WorldID        string          `json:"world_id"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAccessedAt time.Time       `json:"last_accessed_at"`
	World          *world.Snapshot `json:"world"`
}
