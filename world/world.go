package world

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoBeeper is returned by RemoveBeeper when the target cell holds no
// beepers. The execution engine uses it to refuse a pick-up on an empty
// corner.
var ErrNoBeeper = errors.New("no beeper present to remove")

// World is the mutable in-memory model of a Karel world. It is owned by a
// single simulation driver; no internal locking is performed.
type World struct {
	numAvenues int
	numStreets int

	// Beeper count per cell. Absent keys mean zero; lookups never insert.
	beepers map[Position]int

	walls map[Wall]struct{}

	karelStart   Position
	karelDir     Direction
	karelBeepers int

	speed int

	// Beeper state captured once after each full load, restored by Reset.
	initBeepers map[Position]int
}

// New creates an empty 1x1 world with default Karel state.
func New() *World {
	w := &World{}
	w.setDefaults()
	w.initBeepers = clonedBeepers(w.beepers)
	return w
}

// NewFromReader creates a world loaded from the given source.
func NewFromReader(r io.Reader) (*World, error) {
	w := &World{}
	w.setDefaults()
	if err := w.load(r); err != nil {
		return nil, err
	}
	w.initBeepers = clonedBeepers(w.beepers)
	return w, nil
}

// NewFromFile creates a world loaded from a world file on disk.
func NewFromFile(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w, err := NewFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// setDefaults resets every piece of state to its constructed value.
func (w *World) setDefaults() {
	w.numAvenues = 1
	w.numStreets = 1
	w.beepers = make(map[Position]int)
	w.walls = make(map[Wall]struct{})
	w.karelStart = Position{Avenue: 1, Street: 1}
	w.karelDir = East
	w.karelBeepers = 0
	w.speed = DefaultSpeed
}

// load consumes every line of the source in order. Lines the parser
// rejects are skipped silently; a recognized keyword missing a required
// parameter fails the load with the offending line number.
func (w *World) load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		keyword, params, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		if err := w.apply(keyword, params); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

// Reload discards all state, loads the world from a new source, and
// re-captures the initial beeper baseline. On error the world is left at
// whatever the partial load produced.
func (w *World) Reload(r io.Reader) error {
	w.setDefaults()
	if err := w.load(r); err != nil {
		return err
	}
	w.initBeepers = clonedBeepers(w.beepers)
	return nil
}

// ReloadFile reloads the world from a world file on disk.
func (w *World) ReloadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := w.Reload(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Reset restores beepers to the baseline captured after the most recent
// load. Walls, dimensions, and Karel's starting state are untouched.
func (w *World) Reset() {
	w.beepers = clonedBeepers(w.initBeepers)
}

// NumAvenues returns the number of avenues (columns) in the world.
func (w *World) NumAvenues() int {
	return w.numAvenues
}

// NumStreets returns the number of streets (rows) in the world.
func (w *World) NumStreets() int {
	return w.numStreets
}

// SetDimensions overwrites the grid dimensions.
func (w *World) SetDimensions(avenues, streets int) {
	w.numAvenues = avenues
	w.numStreets = streets
}

// KarelStart returns Karel's starting location.
func (w *World) KarelStart() Position {
	return w.karelStart
}

// KarelDirection returns Karel's starting direction.
func (w *World) KarelDirection() Direction {
	return w.karelDir
}

// SetKarelStart overwrites Karel's starting location and direction.
func (w *World) SetKarelStart(pos Position, dir Direction) {
	w.karelStart = pos
	w.karelDir = dir
}

// KarelBeeperBag returns Karel's starting beeper count, possibly
// InfiniteBeepers.
func (w *World) KarelBeeperBag() int {
	return w.karelBeepers
}

// SetKarelBeeperBag overwrites Karel's starting beeper count.
func (w *World) SetKarelBeeperBag(count int) {
	w.karelBeepers = count
}

// Speed returns the initial playback delay.
func (w *World) Speed() int {
	return w.speed
}

// SetSpeed overwrites the initial playback delay.
func (w *World) SetSpeed(delay int) {
	w.speed = delay
}

// BeeperAt returns the beeper count at a cell, zero for untouched cells.
func (w *World) BeeperAt(avenue, street int) int {
	return w.beepers[Position{Avenue: avenue, Street: street}]
}

// Beepers returns a copy of the full beeper mapping.
func (w *World) Beepers() map[Position]int {
	return clonedBeepers(w.beepers)
}

// Walls returns a copy of the wall set.
func (w *World) Walls() []Wall {
	walls := make([]Wall, 0, len(w.walls))
	for wall := range w.walls {
		walls = append(walls, wall)
	}
	return walls
}

// AddBeeper increments the beeper count at a cell by one. Always succeeds.
func (w *World) AddBeeper(avenue, street int) {
	w.beepers[Position{Avenue: avenue, Street: street}]++
}

// RemoveBeeper decrements the beeper count at a cell by one. Removing from
// a cell with no beepers returns ErrNoBeeper and leaves the count at zero.
func (w *World) RemoveBeeper(avenue, street int) error {
	pos := Position{Avenue: avenue, Street: street}
	if w.beepers[pos] == 0 {
		return fmt.Errorf("(%d, %d): %w", avenue, street, ErrNoBeeper)
	}
	w.beepers[pos]--
	if w.beepers[pos] == 0 {
		delete(w.beepers, pos)
	}
	return nil
}

// AddWall inserts a wall record. Inserting an existing record is a no-op.
func (w *World) AddWall(wall Wall) {
	w.walls[wall] = struct{}{}
}

// RemoveWall deletes a wall record if present.
func (w *World) RemoveWall(wall Wall) {
	delete(w.walls, wall)
}

// WallExists reports whether a wall with that exact triple is present.
func (w *World) WallExists(avenue, street int, dir Direction) bool {
	_, ok := w.walls[Wall{Avenue: avenue, Street: street, Direction: dir}]
	return ok
}

// InBounds reports whether a cell lies within the world dimensions.
func (w *World) InBounds(avenue, street int) bool {
	return avenue > 0 && street > 0 && avenue <= w.numAvenues && street <= w.numStreets
}

// clonedBeepers produces an independent copy so live and snapshot state
// never alias.
func clonedBeepers(src map[Position]int) map[Position]int {
	dst := make(map[Position]int, len(src))
	for pos, count := range src {
		dst[pos] = count
	}
	return dst
}
