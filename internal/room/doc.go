// Package room implements the in-memory room registry.
//
// Rooms are created lazily on first reference and live for the process
// lifetime. Each room carries its own mutex; the registry never does I/O.
package room
