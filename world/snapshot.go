package world

import "sort"

// BeeperCell is one entry of a snapshot's beeper listing.
type BeeperCell struct {
	Avenue int `json:"avenue"`
	Street int `json:"street"`
	Count  int `json:"count"`
}

// Snapshot is a JSON-serializable copy of the complete world state,
// including the initial-beeper baseline Reset restores. Listings are
// sorted by street then avenue so snapshots are deterministic.
type Snapshot struct {
	NumAvenues     int          `json:"num_avenues"`
	NumStreets     int          `json:"num_streets"`
	Beepers        []BeeperCell `json:"beepers"`
	InitBeepers    []BeeperCell `json:"init_beepers"`
	Walls          []Wall       `json:"walls"`
	KarelStart     Position     `json:"karel_start"`
	KarelDirection Direction    `json:"karel_direction"`
	KarelBeeperBag int          `json:"karel_beeper_bag"`
	Speed          int          `json:"speed"`
}

// Snapshot captures the current world state for persistence.
func (w *World) Snapshot() *Snapshot {
	return &Snapshot{
		NumAvenues:     w.numAvenues,
		NumStreets:     w.numStreets,
		Beepers:        beeperCells(w.beepers),
		InitBeepers:    beeperCells(w.initBeepers),
		Walls:          sortedWalls(w.walls),
		KarelStart:     w.karelStart,
		KarelDirection: w.karelDir,
		KarelBeeperBag: w.karelBeepers,
		Speed:          w.speed,
	}
}

// FromSnapshot rebuilds a world from a persisted snapshot. The restored
// world shares no state with the snapshot.
func FromSnapshot(s *Snapshot) *World {
	w := New()
	w.numAvenues = s.NumAvenues
	w.numStreets = s.NumStreets
	w.beepers = beeperMap(s.Beepers)
	w.initBeepers = beeperMap(s.InitBeepers)
	for _, wall := range s.Walls {
		w.walls[wall] = struct{}{}
	}
	w.karelStart = s.KarelStart
	w.karelDir = s.KarelDirection
	w.karelBeepers = s.KarelBeeperBag
	w.speed = s.Speed
	return w
}

func beeperCells(beepers map[Position]int) []BeeperCell {
	cells := make([]BeeperCell, 0, len(beepers))
	for pos, count := range beepers {
		cells = append(cells, BeeperCell{Avenue: pos.Avenue, Street: pos.Street, Count: count})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Street != cells[j].Street {
			return cells[i].Street < cells[j].Street
		}
		return cells[i].Avenue < cells[j].Avenue
	})
	return cells
}

func beeperMap(cells []BeeperCell) map[Position]int {
	beepers := make(map[Position]int, len(cells))
	for _, cell := range cells {
		beepers[Position{Avenue: cell.Avenue, Street: cell.Street}] = cell.Count
	}
	return beepers
}

func sortedWalls(set map[Wall]struct{}) []Wall {
	walls := make([]Wall, 0, len(set))
	for wall := range set {
		walls = append(walls, wall)
	}
	sort.Slice(walls, func(i, j int) bool {
		if walls[i].Street != walls[j].Street {
			return walls[i].Street < walls[j].Street
		}
		if walls[i].Avenue != walls[j].Avenue {
			return walls[i].Avenue < walls[j].Avenue
		}
		return walls[i].Direction < walls[j].Direction
	})
	return walls
}
