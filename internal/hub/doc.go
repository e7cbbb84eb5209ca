// Package hub implements room-scoped WebSocket broadcast using the actor pattern.
//
// A single command goroutine owns all membership state (no mutexes); each
// connection gets a buffered writer goroutine. Joining delivers the room's
// config snapshot as a catch-up message before any subsequent broadcast.
package hub
