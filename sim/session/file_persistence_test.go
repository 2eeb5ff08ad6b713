package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/karel-world-sim/sim/service"
	"github.com/wricardo/karel-world-sim/world"
)

func persistedTestWorld(t *testing.T) *world.World {
	t.Helper()

	source := `Dimension: (4, 3)
Karel: (2, 1); North
BeeperBag: 5
Speed: 0.75
Wall: (2, 2); East
Beeper: (3, 3); 2
`
	w, err := world.NewFromReader(strings.NewReader(source))
	if err != nil {
		t.Fatalf("Failed to build test world: %v", err)
	}
	return w
}

func TestFilePersistence(t *testing.T) {
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := &service.Session{
		ID:             "test1",
		World:          persistedTestWorld(t),
		WorldID:        "maze",
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	t.Run("Save and Load Session", func(t *testing.T) {
		err := persistence.Save(session)
		if err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		if !persistence.Exists("test1") {
			t.Error("Session file should exist after save")
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		if loadedSession.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loadedSession.ID)
		}
		if loadedSession.WorldID != session.WorldID {
			t.Errorf("Expected world ID %s, got %s", session.WorldID, loadedSession.WorldID)
		}
		if loadedSession.World.NumAvenues() != 4 || loadedSession.World.NumStreets() != 3 {
			t.Errorf("Expected 4x3 world, got %dx%d",
				loadedSession.World.NumAvenues(), loadedSession.World.NumStreets())
		}
		if loadedSession.World.BeeperAt(3, 3) != 2 {
			t.Errorf("Expected 2 beepers at (3, 3), got %d", loadedSession.World.BeeperAt(3, 3))
		}
		if !loadedSession.World.WallExists(2, 2, world.East) {
			t.Error("Expected wall at (2, 2) east to survive persistence")
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		session.World.AddBeeper(1, 1)

		err := persistence.Save(session)
		if err != nil {
			t.Fatalf("Failed to save updated session: %v", err)
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load updated session: %v", err)
		}

		if loadedSession.World.BeeperAt(1, 1) != 1 {
			t.Error("Beeper changes not persisted correctly")
		}
	})

	t.Run("Reset After Load", func(t *testing.T) {
		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		// The snapshot carries the initial beeper layout, so a reset on a
		// freshly loaded world must drop changes made after the first save.
		loadedSession.World.Reset()
		if loadedSession.World.BeeperAt(3, 3) != 2 {
			t.Errorf("Expected initial beepers at (3, 3) after reset, got %d",
				loadedSession.World.BeeperAt(3, 3))
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		session2 := &service.Session{
			ID:             "test2",
			World:          persistedTestWorld(t),
			WorldID:        "maze",
			CreatedAt:      time.Now(),
			LastAccessedAt: time.Now(),
		}
		err := persistence.Save(session2)
		if err != nil {
			t.Fatalf("Failed to save second session: %v", err)
		}

		sessionIDs, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}

		if len(sessionIDs) != 2 {
			t.Errorf("Expected 2 sessions, got %d", len(sessionIDs))
		}

		found := make(map[string]bool)
		for _, id := range sessionIDs {
			found[id] = true
		}
		if !found["test1"] || !found["test2"] {
			t.Error("Expected sessions not found in list")
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		err := persistence.Delete("test2")
		if err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}

		if persistence.Exists("test2") {
			t.Error("Session should not exist after delete")
		}

		_, err = persistence.Load("test2")
		if err == nil {
			t.Error("Should not be able to load deleted session")
		}
	})

	t.Run("Error Cases", func(t *testing.T) {
		_, err := persistence.Load("nonexistent")
		if err == nil {
			t.Error("Should get error when loading non-existent session")
		}

		err = persistence.Delete("nonexistent")
		if err == nil {
			t.Error("Should get error when deleting non-existent session")
		}

		err = persistence.Save(nil)
		if err == nil {
			t.Error("Should get error when saving nil session")
		}
	})
}

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := &service.Session{
		ID:             "file_test",
		World:          persistedTestWorld(t),
		WorldID:        "maze",
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	err = persistence.Save(session)
	if err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	expectedFile := filepath.Join(tempDir, "file_test.json")
	if _, err := os.Stat(expectedFile); os.IsNotExist(err) {
		t.Errorf("Expected file %s does not exist", expectedFile)
	}

	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	if len(data) == 0 {
		t.Error("Session file should not be empty")
	}

	content := string(data)
	expectedFields := []string{"\"id\"", "\"world_id\"", "\"created_at\"", "\"world\""}
	for _, field := range expectedFields {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain field %s", field)
		}
	}
}

func TestManagerPersistenceRoundTrip(t *testing.T) {
	tempDir := t.TempDir()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	manager := NewManagerWithPersistence(persistence)
	created, err := manager.Create("round", "maze", persistedTestWorld(t))
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	// A fresh manager over the same directory should recover the session.
	manager2 := NewManagerWithPersistence(persistence)
	if err := manager2.LoadPersistedSessions(); err != nil {
		t.Fatalf("Failed to load persisted sessions: %v", err)
	}

	loaded, err := manager2.Get("round")
	if err != nil {
		t.Fatalf("Failed to get recovered session: %v", err)
	}
	if loaded.ID != created.ID || loaded.WorldID != created.WorldID {
		t.Errorf("Recovered session does not match: got %s/%s", loaded.ID, loaded.WorldID)
	}

	if err := manager2.Delete("round"); err != nil {
		t.Fatalf("Failed to delete recovered session: %v", err)
	}
	if persistence.Exists("round") {
		t.Error("Session file should be gone after delete")
	}
}
