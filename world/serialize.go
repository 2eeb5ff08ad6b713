package world

import (
	"bufio"
	"fmt"
	"io"
)

// Encode writes the world in the world-file format. Output is canonical:
// one Dimension line, then Karel, BeeperBag, Speed, then walls and beepers
// in sorted order. Anything Encode writes parses back to an equal world.
func (w *World) Encode(out io.Writer) error {
	buf := bufio.NewWriter(out)

	fmt.Fprintf(buf, "Dimension: (%d, %d)\n", w.numAvenues, w.numStreets)
	fmt.Fprintf(buf, "Karel: (%d, %d); %s\n", w.karelStart.Avenue, w.karelStart.Street, w.karelDir.Label())

	if w.karelBeepers == InfiniteBeepers {
		fmt.Fprintln(buf, "BeeperBag: infinity")
	} else {
		fmt.Fprintf(buf, "BeeperBag: %d\n", w.karelBeepers)
	}

	// The raw delay round-trips through the parser's integer branch; a
	// decimal form would be rescaled by 100 on the next load.
	fmt.Fprintf(buf, "Speed: %d\n", w.speed)

	for _, wall := range sortedWalls(w.walls) {
		fmt.Fprintf(buf, "Wall: (%d, %d); %s\n", wall.Avenue, wall.Street, wall.Direction.Label())
	}

	for _, cell := range beeperCells(w.beepers) {
		fmt.Fprintf(buf, "Beeper: (%d, %d); %d\n", cell.Avenue, cell.Street, cell.Count)
	}

	return buf.Flush()
}
