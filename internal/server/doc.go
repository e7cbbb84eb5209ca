// Package server exposes the control surface over HTTP and the room broadcast
// channels over WebSocket, with connection limiting on the WebSocket side.
package server
