// Package world implements the mutable in-memory model of a Karel world.
//
// The world package covers four responsibilities:
//   - Parsing the line-oriented world-file format into keyword/parameter
//     pairs
//   - Merging parsed lines into the world state
//   - Holding grid dimensions, beeper counts, walls, Karel's starting pose
//     and inventory, and the playback speed
//   - Lifecycle management: loading, resetting beepers to the post-load
//     baseline, and reloading from a new source
//
// World File Format:
//
// Worlds are plain text, one component per line:
//
//	Dimension: (num_avenues, num_streets)
//	Wall: (avenue, street); direction
//	Beeper: (avenue, street); count
//	Karel: (avenue, street); direction
//	Speed: delay
//	BeeperBag: count
//
// Keywords are case-insensitive; parameters are separated by semicolons.
// Lines without a colon are treated as comments and skipped, as are lines
// with unrecognized keywords. Directions are East, West, North, or South
// (case-insensitive). The beeper bag count may also be "infinity" or
// "infinite". Speed accepts a decimal seconds value which is stored as
// int(100 * value).
//
// Usage:
//
//	w, err := world.NewFromFile("worlds/default.w")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	w.AddBeeper(3, 3)
//	if err := w.RemoveBeeper(1, 1); err != nil {
//		// no beeper at that corner
//	}
//	w.Reset() // back to the state right after load
//
// Coordinates:
//
// Streets run east-west (rows) and avenues run north-south (columns). Both
// are 1-based; (1, 1) is the south-west corner. Beeper and wall coordinates
// are not checked against the dimensions at load time; InBounds answers
// that question on demand.
package world
