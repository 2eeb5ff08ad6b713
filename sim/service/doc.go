// Package service defines the world simulation service shared by every
// transport (REST, WebSocket, MCP). It owns the session and catalog
// interfaces and the view types serialized to clients, so transports stay
// thin and the simulation logic lives in one place.
package service
