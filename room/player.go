package room

import (
	"github.com/coopgaem/server/models"
	"github.com/coopgaem/server/physics"
)

// playerColors is the fixed palette; slot n gets entry n.
var playerColors = [MaxPlayers]string{"#ff0000", "#0066ff", "#00aa00", "#ff6600"}

// Player is one participant of a room. Owned exclusively by the room; all
// access goes through the room's lock.
type Player struct {
	ID        int
	Name      string
	SessionID string
	Color     string
	Body      physics.Body
	Keys      physics.Keys
}

// Snapshot returns the player's wire representation.
func (p *Player) Snapshot() models.PlayerSnapshot {
	return models.PlayerSnapshot{
		ID:    p.ID,
		Name:  p.Name,
		X:     p.Body.X,
		Y:     p.Body.Y,
		Color: p.Color,
	}
}
