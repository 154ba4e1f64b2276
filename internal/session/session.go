// Package session manages authenticated user sessions. It issues opaque
// bearer tokens at login and resolves them to user IDs, with session state
// backed by Redis.
package session
