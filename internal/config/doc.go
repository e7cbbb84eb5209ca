// Package config loads server configuration from environment variables.
//
// Room game/feed parameters are not configured here; they arrive per room
// through the control API and live in the room registry.
package config
