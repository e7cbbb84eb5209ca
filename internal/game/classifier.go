// Package game implements the player classifier: the rules deciding which
// incoming comments count as player-join events for a room's current round.
package game

import (
	"strings"

	"github.com/VanThanhHoang/server-game/internal/domain"
)

// IntakeRoom is the slice of room state classification needs.
type IntakeRoom interface {
	// IntakeGate returns the join keyword and whether the room is admitting
	// players right now.
	IntakeGate() (keyword string, open bool)
	// AdmitPlayer records an author for the current intake phase, returning
	// false if they were admitted before.
	AdmitPlayer(authorID string) bool
}

// Classify tags player-join comments in batch and returns the tagged subset.
//
// Classification is active only while the room is in its intake phase. A
// comment qualifies when its text contains the configured keyword
// (case-insensitive; an empty keyword always matches) and its author has not
// joined this phase yet. The first qualifying comment per author wins; later
// ones stay untagged and flow to the dashboard channel only.
func Classify(r IntakeRoom, batch []domain.Comment) []domain.Comment {
	keyword, open := r.IntakeGate()
	if !open {
		return nil
	}

	needle := strings.ToLower(keyword)
	var players []domain.Comment
	for i := range batch {
		c := &batch[i]
		if needle != "" && !strings.Contains(strings.ToLower(c.Text), needle) {
			continue
		}
		if !r.AdmitPlayer(c.Author.ID) {
			continue
		}
		c.IsPlayerComment = true
		players = append(players, *c)
	}
	return players
}
