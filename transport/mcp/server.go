package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/karel-world-sim/sim/service"
	"github.com/wricardo/karel-world-sim/world"
)

// Server exposes the world service as MCP tools.
type Server struct {
	service   service.WorldService
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server over the given world service.
func NewServer(worldService service.WorldService) *Server {
	s := &Server{
		service: worldService,
	}

	s.initMCPServer()
	return s
}

// initMCPServer initializes the MCP server with all tools
func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Karel World Simulator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Karel World Simulator - MCP Interface

Worlds are rectangular grids of corners addressed by (avenue, street),
both 1-based, with (1, 1) at the bottom-left. Corners hold beepers, wall
segments block the sides of corners, and Karel has a start position,
direction, and beeper bag.

AVAILABLE TOOLS:
- list_worlds: List the world files in the catalog
- create_session: Create a session over a world
- list_sessions / get_session / delete_session: Session management
- world_state: Render the current world of a session
- add_beeper / remove_beeper: Mutate beepers at a corner
- reset_world: Restore the initial beeper layout
- reload_world: Re-read the world file from scratch
- check_wall / check_bounds: World queries

In the world rendering, K marks Karel's start corner, digits are beeper
counts, and . is an empty corner.`),
	)

	s.registerTools()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	sessionIDProperty := map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
	cornerProperties := map[string]interface{}{
		"session_id": sessionIDProperty,
		"avenue": map[string]interface{}{
			"type":        "integer",
			"description": "Avenue (column) of the corner, 1-based",
		},
		"street": map[string]interface{}{
			"type":        "integer",
			"description": "Street (row) of the corner, 1-based",
		},
	}

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_worlds",
		Description: "List the world files available in the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListWorlds)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new simulation session with an optional world selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"world_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the world to load (optional, defaults to the catalog default)",
				},
			},
		},
	}, s.handleCreateSession)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active simulation sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListSessions)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
			Required: []string{"session_id"},
		},
	}, s.handleGetSession)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
			Required: []string{"session_id"},
		},
	}, s.handleDeleteSession)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "world_state",
		Description: "Render the current world state of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
			Required: []string{"session_id"},
		},
	}, s.handleWorldState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "add_beeper",
		Description: "Place one beeper at a corner",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cornerProperties,
			Required:   []string{"session_id", "avenue", "street"},
		},
	}, s.handleAddBeeper)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "remove_beeper",
		Description: "Pick up one beeper from a corner. Fails softly when the corner is empty.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cornerProperties,
			Required:   []string{"session_id", "avenue", "street"},
		},
	}, s.handleRemoveBeeper)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_world",
		Description: "Restore the session's beepers to the initial layout",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
			Required: []string{"session_id"},
		},
	}, s.handleResetWorld)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "reload_world",
		Description: "Re-read the session's world file from scratch, optionally switching worlds",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
				"world_id": map[string]interface{}{
					"type":        "string",
					"description": "World to load (optional, defaults to the session's current world)",
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleReloadWorld)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "check_wall",
		Description: "Check whether a wall segment blocks a side of a corner",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
				"avenue": map[string]interface{}{
					"type":        "integer",
					"description": "Avenue of the corner, 1-based",
				},
				"street": map[string]interface{}{
					"type":        "integer",
					"description": "Street of the corner, 1-based",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"north", "south", "east", "west"},
					"description": "Side of the corner to check",
				},
			},
			Required: []string{"session_id", "avenue", "street", "direction"},
		},
	}, s.handleCheckWall)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "check_bounds",
		Description: "Check whether a corner lies inside the world",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cornerProperties,
			Required:   []string{"session_id", "avenue", "street"},
		},
	}, s.handleCheckBounds)
}

// MCPServer returns the underlying MCP server for serving
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tool handlers

func (s *Server) handleListWorlds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	worlds, err := s.service.ListWorlds(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(worlds) == 0 {
		return mcp.NewToolResultText("No worlds available"), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Available Worlds (%d):\n\n", len(worlds)))
	for _, info := range worlds {
		b.WriteString(fmt.Sprintf("- %s (%dx%d, %d beepers, %d walls)\n",
			info.WorldID, info.Avenues, info.Streets, info.BeeperCount, info.WallCount))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	worldID, _ := args["world_id"].(string)

	session, err := s.service.CreateSession(ctx, worldID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nWorld: %s\n\n%s",
		session.ID, session.WorldID, formatWorldState(session.WorldState))
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.service.ListSessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Active Sessions (%d):\n\n", len(sessions)))
	for _, sess := range sessions {
		b.WriteString(fmt.Sprintf("- %s (World: %s, Created: %s)\n",
			sess.ID, sess.WorldID, sess.CreatedAt.Format("15:04:05")))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	session, err := s.service.GetSession(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Session: %s\nWorld: %s\nCreated: %s\n\n%s",
		session.ID, session.WorldID,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatWorldState(session.WorldState))
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	if err := s.service.DeleteSession(ctx, sessionID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s deleted", sessionID)), nil
}

func (s *Server) handleWorldState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	state, err := s.service.GetWorldState(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatWorldState(state)), nil
}

func (s *Server) handleAddBeeper(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, avenue, street, err := cornerArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.AddBeeper(ctx, sessionID, avenue, street)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("%s\n\n%s", result.Message, formatWorldState(result.WorldState))
	return mcp.NewToolResultText(response), nil
}

func (s *Server) handleRemoveBeeper(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, avenue, street, err := cornerArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.RemoveBeeper(ctx, sessionID, avenue, street)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status := "✓"
	if !result.Success {
		status = "✗"
	}
	response := fmt.Sprintf("%s %s\n\n%s", status, result.Message, formatWorldState(result.WorldState))
	return mcp.NewToolResultText(response), nil
}

func (s *Server) handleResetWorld(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	state, err := s.service.ResetWorld(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("World reset to initial beeper layout\n\n%s", formatWorldState(state))
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleReloadWorld(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	worldID, _ := args["world_id"].(string)

	state, err := s.service.ReloadWorld(ctx, sessionID, worldID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("World reloaded\n\n%s", formatWorldState(state))
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleCheckWall(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, avenue, street, err := cornerArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := request.Params.Arguments.(map[string]interface{})
	direction, _ := args["direction"].(string)

	exists, err := s.service.WallExists(ctx, sessionID, avenue, street, direction)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if exists {
		return mcp.NewToolResultText(fmt.Sprintf("Wall present %s of (%d, %d)", direction, avenue, street)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("No wall %s of (%d, %d)", direction, avenue, street)), nil
}

func (s *Server) handleCheckBounds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, avenue, street, err := cornerArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inside, err := s.service.InBounds(ctx, sessionID, avenue, street)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if inside {
		return mcp.NewToolResultText(fmt.Sprintf("(%d, %d) is inside the world", avenue, street)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("(%d, %d) is outside the world", avenue, street)), nil
}

// cornerArgs extracts the session ID and corner coordinates shared by the
// beeper and query tools. JSON numbers arrive as float64.
func cornerArgs(request mcp.CallToolRequest) (string, int, int, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", 0, 0, fmt.Errorf("invalid arguments")
	}

	sessionID, _ := args["session_id"].(string)
	avenueF, ok := args["avenue"].(float64)
	if !ok {
		return "", 0, 0, fmt.Errorf("avenue parameter required")
	}
	streetF, ok := args["street"].(float64)
	if !ok {
		return "", 0, 0, fmt.Errorf("street parameter required")
	}

	return sessionID, int(avenueF), int(streetF), nil
}

// Formatting helpers

// formatWorldState renders a world as text. Streets are printed top down
// so street 1 ends up at the bottom, matching the usual Karel picture.
func formatWorldState(state *service.WorldState) string {
	if state == nil {
		return "No world state available"
	}

	var b strings.Builder

	bag := fmt.Sprintf("%d", state.KarelBeeperBag)
	if state.InfiniteBag {
		bag = "infinite"
	}
	b.WriteString(fmt.Sprintf("World: %dx%d | Karel: (%d, %d) facing %s | Bag: %s | Speed: %d\n\n",
		state.NumAvenues, state.NumStreets,
		state.KarelStart.Avenue, state.KarelStart.Street, state.KarelDirection,
		bag, state.Speed))

	beepers := make(map[world.Position]int, len(state.Beepers))
	for _, cell := range state.Beepers {
		beepers[world.Position{Avenue: cell.Avenue, Street: cell.Street}] = cell.Count
	}

	for street := state.NumStreets; street >= 1; street-- {
		for avenue := 1; avenue <= state.NumAvenues; avenue++ {
			pos := world.Position{Avenue: avenue, Street: street}
			switch {
			case pos == state.KarelStart:
				b.WriteString("K")
			case beepers[pos] > 9:
				b.WriteString("*")
			case beepers[pos] > 0:
				b.WriteString(fmt.Sprintf("%d", beepers[pos]))
			default:
				b.WriteString(".")
			}
			if avenue < state.NumAvenues {
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}

	if len(state.Walls) > 0 {
		b.WriteString("\nWalls:\n")
		for _, wall := range state.Walls {
			b.WriteString(fmt.Sprintf("- (%d, %d) %s\n", wall.Avenue, wall.Street, wall.Direction))
		}
	}

	return b.String()
}
