// Package websocket provides the WebSocket transport of the world
// simulator.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Automatic world state broadcasting on changes
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup.
//
// Message Protocol:
//
// Outgoing messages are JSON-encoded:
//
//	{"session_id": "abc1", "event": "state_update", "world_state": {...}}
//
// Clients do not send messages; the connection is read only to keep it
// alive.
//
// Session Integration:
//
// Clients specify their session ID via query parameter (?session=abc1)
// when establishing the connection. State updates are broadcast only to
// clients connected to the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	hub.BroadcastToSession("abc1", state)
package websocket
