// Command analyze prints quick, human-readable heuristics about world files
// in a worlds directory. It summarizes dimensions, Karel's start, beeper and
// wall counts, and highlights entities placed outside the world bounds.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/karel-world-sim/world"
)

func main() {
	worldsDir := "worlds"
	if len(os.Args) > 1 {
		worldsDir = os.Args[1]
	}

	entries, err := os.ReadDir(worldsDir)
	if err != nil {
		fmt.Printf("Error reading worlds directory: %v\n", err)
		os.Exit(1)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".w") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	if len(files) == 0 {
		fmt.Printf("No world files found in %s\n", worldsDir)
		return
	}

	for _, name := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", name)
		analyzeWorld(filepath.Join(worldsDir, name))
	}
}

func analyzeWorld(path string) {
	w, err := world.NewFromFile(path)
	if err != nil {
		fmt.Printf("Error loading world: %v\n", err)
		return
	}

	fmt.Printf("Dimensions: %d x %d\n", w.NumAvenues(), w.NumStreets())

	karel := w.KarelStart()
	fmt.Printf("Karel: (%d, %d) facing %s\n", karel.Avenue, karel.Street, w.KarelDirection())

	if bag := w.KarelBeeperBag(); bag == world.InfiniteBeepers {
		fmt.Println("Beeper Bag: infinite")
	} else {
		fmt.Printf("Beeper Bag: %d\n", bag)
	}
	fmt.Printf("Speed: %d\n", w.Speed())

	beepers := w.Beepers()
	total := 0
	var outOfBounds []world.Position
	for pos, count := range beepers {
		total += count
		if !w.InBounds(pos.Avenue, pos.Street) {
			outOfBounds = append(outOfBounds, pos)
		}
	}
	fmt.Printf("Beepers: %d on %d corners\n", total, len(beepers))

	walls := w.Walls()
	fmt.Printf("Walls: %d\n", len(walls))
	for _, wall := range walls {
		if !w.InBounds(wall.Avenue, wall.Street) {
			fmt.Printf("⚠️  WARNING: wall at (%d, %d) %s is outside the world\n",
				wall.Avenue, wall.Street, wall.Direction)
		}
	}

	sort.Slice(outOfBounds, func(i, j int) bool {
		if outOfBounds[i].Street != outOfBounds[j].Street {
			return outOfBounds[i].Street < outOfBounds[j].Street
		}
		return outOfBounds[i].Avenue < outOfBounds[j].Avenue
	})
	for _, pos := range outOfBounds {
		fmt.Printf("⚠️  WARNING: beepers at (%d, %d) are outside the world\n", pos.Avenue, pos.Street)
	}

	if !w.InBounds(karel.Avenue, karel.Street) {
		fmt.Printf("⚠️  WARNING: Karel starts at (%d, %d), outside the world\n", karel.Avenue, karel.Street)
	}
}
