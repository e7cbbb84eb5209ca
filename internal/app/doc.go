// Package app wires the room store, feed poller and broadcast hub into the
// service layer behind the HTTP and WebSocket handlers.
package app
