// Package catalog manages the directory of world files.
//
// The catalog loads .w world files by name, caches their raw contents, and
// hands every caller a freshly parsed world so sessions never share mutable
// state. It also lists available worlds with summary information and writes
// worlds back to disk in canonical form.
//
// Usage:
//
//	manager, err := catalog.NewManager("worlds")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	w, err := manager.LoadWorld("default")
//	infos, err := manager.ListWorlds()
package catalog
