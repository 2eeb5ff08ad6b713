package service

import (
	"time"

	"github.com/wricardo/karel-world-sim/world"
)

// WorldState is the JSON view of a session's world sent to clients.
type WorldState struct {
	NumAvenues     int                `json:"num_avenues"`
	NumStreets     int                `json:"num_streets"`
	Beepers        []world.BeeperCell `json:"beepers"`
	Walls          []world.Wall       `json:"walls"`
	KarelStart     world.Position     `json:"karel_start"`
	KarelDirection world.Direction    `json:"karel_direction"`
	KarelBeeperBag int                `json:"karel_beeper_bag"`
	InfiniteBag    bool               `json:"infinite_bag"`
	Speed          int                `json:"speed"`
}

// StateFromWorld builds the client view of a world.
func StateFromWorld(w *world.World) *WorldState {
	snap := w.Snapshot()
	return &WorldState{
		NumAvenues:     snap.NumAvenues,
		NumStreets:     snap.NumStreets,
		Beepers:        snap.Beepers,
		Walls:          snap.Walls,
		KarelStart:     snap.KarelStart,
		KarelDirection: snap.KarelDirection,
		KarelBeeperBag: snap.KarelBeeperBag,
		InfiniteBag:    snap.KarelBeeperBag == world.InfiniteBeepers,
		Speed:          snap.Speed,
	}
}

// SessionInfo provides information about a simulation session.
type SessionInfo struct {
	ID             string      `json:"id"`
	WorldID        string      `json:"world_id"`
	CreatedAt      time.Time   `json:"created_at"`
	LastAccessedAt time.Time   `json:"last_accessed_at"`
	WorldState     *WorldState `json:"world_state"`
}

// OpResult contains the result of a beeper mutation. Success is false for
// operation-level failures (removing from an empty cell) that are not
// transport errors.
type OpResult struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Position   world.Position `json:"position"`
	Count      int            `json:"count"`
	WorldState *WorldState    `json:"world_state"`
}

// WorldInfo provides summary information about a catalog world.
type WorldInfo struct {
	Filename    string `json:"filename"`
	WorldID     string `json:"world_id"` // the identifier to use for session creation
	Avenues     int    `json:"avenues"`
	Streets     int    `json:"streets"`
	BeeperCount int    `json:"beeper_count"`
	WallCount   int    `json:"wall_count"`
}
