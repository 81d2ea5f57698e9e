package room

import (
	"math"

	"github.com/coopgaem/server/level"
)

// elevatorTilesPerSecond is the travel speed of every elevator car; the
// level data declares no per-elevator speed.
const elevatorTilesPerSecond = 1.5

// elevatorBody is the runtime state of one elevator: a one-tile solid car
// that rises toward its target row while its gate switch is held and
// returns to its origin otherwise.
type elevatorBody struct {
	def    level.Elevator
	y      float64
	moving bool
}

func newElevatorBody(def level.Elevator) *elevatorBody {
	return &elevatorBody{def: def, y: level.ToPixels(def.Y)}
}

// advance moves the car one tick toward its destination and returns the
// vertical displacement applied.
func (e *elevatorBody) advance(active bool, dt float64) float64 {
	target := level.ToPixels(e.def.Y)
	if active {
		target = level.ToPixels(e.def.TargetY)
	}
	step := elevatorTilesPerSecond * level.TileSize * dt
	dy := stepToward(&e.y, target, step)
	e.moving = dy != 0
	return dy
}

func (e *elevatorBody) rect() level.Rect {
	return level.Rect{X: level.ToPixels(e.def.X), Y: e.y, W: level.TileSize, H: level.TileSize}
}

// platformBody is the runtime state of one moving platform, oscillating
// between its origin and target along a single axis at its declared speed
// (tiles per second).
type platformBody struct {
	def       level.MovingPlatform
	x, y      float64
	returning bool
}

func newPlatformBody(def level.MovingPlatform) *platformBody {
	return &platformBody{def: def, x: level.ToPixels(def.X), y: level.ToPixels(def.Y)}
}

// advance moves the platform one tick and returns its displacement.
func (p *platformBody) advance(dt float64) (dx, dy float64) {
	destX := level.ToPixels(p.def.TargetX)
	destY := level.ToPixels(p.def.TargetY)
	if p.returning {
		destX = level.ToPixels(p.def.X)
		destY = level.ToPixels(p.def.Y)
	}

	step := p.def.Speed * level.TileSize * dt
	dx = stepToward(&p.x, destX, step)
	dy = stepToward(&p.y, destY, step)

	if p.x == destX && p.y == destY {
		p.returning = !p.returning
	}
	return dx, dy
}

func (p *platformBody) rect() level.Rect {
	return level.Rect{X: p.x, Y: p.y, W: level.TileSize, H: level.TileSize}
}

// stepToward moves *pos at most step toward target and returns the applied
// delta.
func stepToward(pos *float64, target, step float64) float64 {
	diff := target - *pos
	if diff == 0 {
		return 0
	}
	if math.Abs(diff) <= step {
		*pos = target
		return diff
	}
	delta := math.Copysign(step, diff)
	*pos += delta
	return delta
}
