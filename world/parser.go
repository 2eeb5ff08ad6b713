package world

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	keywordDelim = ":"
	paramDelim   = ";"
)

// validKeywords is the fixed set of recognized world-file keywords.
var validKeywords = map[string]bool{
	"dimension": true,
	"wall":      true,
	"beeper":    true,
	"karel":     true,
	"speed":     true,
	"beeperbag": true,
}

// lineParams holds the classified parameters of one world-file line. At
// most one value of each class is kept; a later token of the same class
// overwrites an earlier one within the line.
type lineParams struct {
	dir    Direction
	hasDir bool
	loc    Position
	hasLoc bool
	val    int
	hasVal bool
}

// parseLine splits one raw line into a keyword and its classified
// parameters. ok is false for blank lines, lines without the keyword
// delimiter, and lines with unrecognized keywords; callers skip those.
func parseLine(line string) (string, lineParams, bool) {
	var params lineParams

	line = strings.TrimSpace(line)
	if line == "" || !strings.Contains(line, keywordDelim) {
		return "", params, false
	}

	components := strings.Split(line, keywordDelim)
	keyword := strings.ToLower(components[0])
	if !validKeywords[keyword] {
		return "", params, false
	}

	for _, param := range strings.Split(components[1], paramDelim) {
		param = strings.ToLower(strings.TrimSpace(param))

		// Classification order matters: direction literal first, then the
		// coordinate pattern, then a numeric value. Unmatched tokens are
		// ignored.
		if dir, ok := ParseDirection(param); ok {
			params.dir = dir
			params.hasDir = true
			continue
		}
		if loc, ok := parseCoordinate(param); ok {
			params.loc = loc
			params.hasLoc = true
			continue
		}
		if val, ok := parseNumeric(keyword, param); ok {
			params.val = val
			params.hasVal = true
		}
	}

	return keyword, params, true
}

// parseCoordinate matches the "(avenue, street)" pattern. Spaces are
// allowed after the comma only.
func parseCoordinate(s string) (Position, bool) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return Position{}, false
	}

	first, second, found := strings.Cut(s[1:len(s)-1], ",")
	if !found {
		return Position{}, false
	}
	second = strings.TrimLeft(second, " \t")

	if !isDigits(first) || !isDigits(second) {
		return Position{}, false
	}

	avenue, _ := strconv.Atoi(first)
	street, _ := strconv.Atoi(second)
	return Position{Avenue: avenue, Street: street}, true
}

// parseNumeric classifies a numeric token. Plain non-negative integers
// parse directly for any keyword. Decimal values are accepted only for
// speed and stored as int(100 * value). beeperbag additionally accepts the
// infinity sentinel. Anything else is dropped without failing the line.
func parseNumeric(keyword, param string) (int, bool) {
	if isDigits(param) {
		val, err := strconv.Atoi(param)
		if err != nil {
			return 0, false
		}
		return val, true
	}

	switch keyword {
	case "speed":
		f, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return 0, false
		}
		return int(100 * f), true
	case "beeperbag":
		if param == "infinity" || param == "infinite" {
			return InfiniteBeepers, true
		}
	}

	return 0, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// apply merges one parsed line into the world state. A recognized keyword
// missing a required parameter is an error; Load wraps it with the line
// number.
func (w *World) apply(keyword string, params lineParams) error {
	switch keyword {
	case "dimension":
		if !params.hasLoc {
			return fmt.Errorf("dimension line missing (avenues, streets) parameter")
		}
		w.numAvenues = params.loc.Avenue
		w.numStreets = params.loc.Street

	case "wall":
		if !params.hasLoc {
			return fmt.Errorf("wall line missing location parameter")
		}
		if !params.hasDir {
			return fmt.Errorf("wall line missing direction parameter")
		}
		w.walls[Wall{Avenue: params.loc.Avenue, Street: params.loc.Street, Direction: params.dir}] = struct{}{}

	case "beeper":
		if !params.hasLoc {
			return fmt.Errorf("beeper line missing location parameter")
		}
		if !params.hasVal {
			return fmt.Errorf("beeper line missing count parameter")
		}
		w.beepers[params.loc] += params.val

	case "karel":
		if !params.hasLoc {
			return fmt.Errorf("karel line missing location parameter")
		}
		if !params.hasDir {
			return fmt.Errorf("karel line missing direction parameter")
		}
		w.karelStart = params.loc
		w.karelDir = params.dir

	case "beeperbag":
		if !params.hasVal {
			return fmt.Errorf("beeperbag line missing count parameter")
		}
		w.karelBeepers = params.val

	case "speed":
		if !params.hasVal {
			return fmt.Errorf("speed line missing delay parameter")
		}
		w.speed = params.val
	}

	return nil
}
