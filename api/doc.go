// Package api provides the HTTP REST surface of the world simulator.
//
// The api package implements:
//   - Session management endpoints
//   - World state queries and beeper mutations
//   - Reset and reload lifecycle endpoints
//   - World catalog listing, inspection, and upload
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (optional world_id in body)
//   - GET /api/sessions - List all sessions
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// World Operations:
//   - GET /api/sessions/{id}/state - Current world state
//   - POST /api/sessions/{id}/beepers - Place a beeper at a corner
//   - DELETE /api/sessions/{id}/beepers - Pick up a beeper from a corner
//   - POST /api/sessions/{id}/reset - Restore the initial beeper layout
//   - POST /api/sessions/{id}/reload - Re-read the world file from scratch
//   - GET /api/sessions/{id}/wall?avenue=&street=&direction= - Wall query
//   - GET /api/sessions/{id}/bounds?avenue=&street= - Bounds query
//
// World Catalog:
//   - GET /api/worlds - List available world files
//   - GET /api/worlds/{name} - Parsed state of a world file
//   - POST /api/worlds - Save a world definition
//
// All endpoints accept and return JSON. Errors are returned as JSON with
// appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
