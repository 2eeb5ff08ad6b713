package mcp

import (
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/karel-world-sim/sim/service"
	"github.com/wricardo/karel-world-sim/world"
)

func TestNewServer(t *testing.T) {
	srv := NewServer(nil)

	if srv == nil {
		t.Fatal("Expected server to be created")
	}

	if srv.MCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestCornerArgs(t *testing.T) {
	t.Run("valid arguments", func(t *testing.T) {
		var request mcp.CallToolRequest
		request.Params.Arguments = map[string]interface{}{
			"session_id": "abc1",
			"avenue":     float64(3),
			"street":     float64(2),
		}

		sessionID, avenue, street, err := cornerArgs(request)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if sessionID != "abc1" || avenue != 3 || street != 2 {
			t.Errorf("Got %s, %d, %d", sessionID, avenue, street)
		}
	})

	t.Run("missing coordinates", func(t *testing.T) {
		var request mcp.CallToolRequest
		request.Params.Arguments = map[string]interface{}{
			"session_id": "abc1",
		}

		_, _, _, err := cornerArgs(request)
		if err == nil {
			t.Error("Expected error for missing avenue")
		}
	})
}

func TestFormatWorldState(t *testing.T) {
	state := &service.WorldState{
		NumAvenues: 3,
		NumStreets: 2,
		Beepers: []world.BeeperCell{
			{Avenue: 2, Street: 2, Count: 3},
			{Avenue: 3, Street: 1, Count: 12},
		},
		Walls:          []world.Wall{{Avenue: 1, Street: 2, Direction: world.North}},
		KarelStart:     world.Position{Avenue: 1, Street: 1},
		KarelDirection: world.East,
		KarelBeeperBag: world.InfiniteBeepers,
		InfiniteBag:    true,
		Speed:          50,
	}

	out := formatWorldState(state)

	if !strings.Contains(out, "World: 3x2") {
		t.Errorf("Missing dimensions header:\n%s", out)
	}
	if !strings.Contains(out, "Karel: (1, 1) facing east") {
		t.Errorf("Missing Karel summary:\n%s", out)
	}
	if !strings.Contains(out, "Bag: infinite") {
		t.Errorf("Missing infinite bag marker:\n%s", out)
	}

	// Street 2 prints first (top), street 1 last. Karel at (1, 1), a
	// 3-beeper stack at (2, 2), and a two-digit stack collapsed to *.
	lines := strings.Split(out, "\n")
	var grid []string
	for _, line := range lines {
		if len(line) == 5 && (line[0] == '.' || line[0] == 'K' || (line[0] >= '0' && line[0] <= '9') || line[0] == '*') {
			grid = append(grid, line)
		}
	}
	if len(grid) != 2 {
		t.Fatalf("Expected 2 grid rows, got %d:\n%s", len(grid), out)
	}
	if grid[0] != ". 3 ." {
		t.Errorf("Top row wrong: %q", grid[0])
	}
	if grid[1] != "K . *" {
		t.Errorf("Bottom row wrong: %q", grid[1])
	}

	if !strings.Contains(out, "Walls:") || !strings.Contains(out, "(1, 2) north") {
		t.Errorf("Missing wall listing:\n%s", out)
	}
}

func TestFormatWorldStateNil(t *testing.T) {
	if out := formatWorldState(nil); !strings.Contains(out, "No world state") {
		t.Errorf("Unexpected nil rendering: %q", out)
	}
}
