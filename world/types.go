package world

import "strings"

// Direction is one of the four compass directions.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// ParseDirection matches a direction literal case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(strings.ToLower(s)); d {
	case North, South, East, West:
		return d, true
	}
	return "", false
}

func (d Direction) String() string {
	return string(d)
}

// Label returns the direction capitalized the way world files spell it.
func (d Direction) Label() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[0])) + string(d[1:])
}

// Position addresses one cell of the grid.
type Position struct {
	Avenue int `json:"avenue"`
	Street int `json:"street"`
}

// Wall is a barrier on the named side of a cell. Walls compare by value, so
// the world's wall set holds at most one record per triple.
type Wall struct {
	Avenue    int       `json:"avenue"`
	Street    int       `json:"street"`
	Direction Direction `json:"direction"`
}

const (
	// InfiniteBeepers is the beeper-bag count for a bag with no bottom.
	InfiniteBeepers = -1

	// DefaultSpeed is the playback delay used when a world file sets none.
	DefaultSpeed = 50
)
