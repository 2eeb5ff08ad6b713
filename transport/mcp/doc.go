// Package mcp exposes the world simulator over the Model Context
// Protocol so AI agents can inspect and manipulate worlds.
//
// The mcp package implements:
//   - MCP server wrapping the world service directly
//   - Tool definitions for session, world, and beeper operations
//   - Text rendering of world state for agent consumption
//
// MCP Tools:
//   - list_worlds: List the world files in the catalog
//   - create_session: Create a session over a world
//   - list_sessions: List active sessions
//   - get_session: Get details of a session
//   - delete_session: Delete a session
//   - world_state: Render the current world of a session
//   - add_beeper: Place a beeper at a corner
//   - remove_beeper: Pick up a beeper from a corner
//   - reset_world: Restore the initial beeper layout
//   - reload_world: Re-read the world file from scratch
//   - check_wall: Query a wall segment
//   - check_bounds: Query whether a corner is inside the world
//
// Usage:
//
//	srv := mcp.NewServer(worldService)
//	server.ServeStdio(srv.MCPServer())
package mcp
