// Package session manages the lifecycle of simulation sessions.
//
// A session pairs a generated ID with one live world. The Manager keys
// sessions case-insensitively, optionally persists them as JSON files
// holding a complete world snapshot, and prunes sessions that have not
// been accessed within a retention window.
package session
