// Package domain holds the shared model types of the game-room server.
//
// Rooms move through a fixed state machine driven by control actions; comments
// and reactions from the live feed are normalized here and routed onto two
// logical channels (dashboard, player) by the classifier's IsPlayerComment tag.
package domain
