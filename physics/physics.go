package physics

import (
	"math"

	"github.com/coopgaem/server/level"
)

// Movement constants, in pixels per tick.
const (
	WalkSpeed    = 4.0
	JumpVelocity = -12.0
	Gravity      = 0.5

	PlayerWidth  = 20.0
	PlayerHeight = 20.0
)

// Keys is one frame of input flags as reported by the client.
type Keys struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Jump  bool `json:"jump"`
}

// Body is the kinematic state of one player.
type Body struct {
	X, Y     float64
	VX, VY   float64
	OnGround bool
}

// Rect returns the body's bounding box.
func (b *Body) Rect() level.Rect {
	return level.Rect{X: b.X, Y: b.Y, W: PlayerWidth, H: PlayerHeight}
}

// Obstacles supplies the dynamic solids of a room: doors that are currently
// closed, and the rectangles of elevator cars and moving platforms.
type Obstacles interface {
	ClosedDoorAt(tx, ty int) bool
	DynamicBodies() []level.Rect
}

// ApplyInput interprets one input frame for a body and resolves the
// resulting movement. Horizontal velocity is rewritten from the flags
// (right overriding left when both are held), a jump is honored only while
// grounded, and gravity is always added before resolution.
func ApplyInput(lvl *level.Level, b *Body, keys Keys, obs Obstacles) {
	b.VX = 0
	if keys.Left {
		b.VX = -WalkSpeed
	}
	if keys.Right {
		b.VX = WalkSpeed
	}

	if keys.Jump && b.OnGround {
		b.VY = JumpVelocity
		b.OnGround = false
	}

	b.VY += Gravity

	Move(lvl, b, obs)
}

// Move resolves the body's velocity axis by axis. A horizontal collision
// reverts the position change without touching velocity; a vertical
// collision snaps the body flush against the obstruction and zeroes VY,
// grounding the body when it was falling.
func Move(lvl *level.Level, b *Body, obs Obstacles) {
	b.X += b.VX
	if _, hit := collide(lvl, b, obs); hit {
		b.X -= b.VX
	}

	b.Y += b.VY
	if blocker, hit := collide(lvl, b, obs); hit {
		if b.VY > 0 {
			b.OnGround = true
			b.VY = 0
			b.Y = blocker.Y - PlayerHeight
		} else {
			b.VY = 0
			b.Y = blocker.Y + blocker.H
		}
	} else {
		b.OnGround = false
	}

	b.X = clamp(b.X, 0, lvl.PixelWidth()-PlayerWidth)
	b.Y = clamp(b.Y, 0, lvl.PixelHeight()-PlayerHeight)
}

// collide tests the body against platform tiles, closed doors and dynamic
// bodies. On contact it returns the rectangle to resolve against: for a
// falling body the highest overlapped solid, otherwise the lowest.
func collide(lvl *level.Level, b *Body, obs Obstacles) (level.Rect, bool) {
	left := level.TileOf(b.X)
	right := level.TileOf(b.X + PlayerWidth - 1)
	top := level.TileOf(b.Y)
	bottom := level.TileOf(b.Y + PlayerHeight - 1)

	var blocker level.Rect
	hit := false
	consider := func(r level.Rect) {
		if !hit {
			blocker = r
			hit = true
			return
		}
		if b.VY > 0 {
			if r.Y < blocker.Y {
				blocker = r
			}
		} else if r.Y+r.H > blocker.Y+blocker.H {
			blocker = r
		}
	}

	for tx := left; tx <= right; tx++ {
		for ty := top; ty <= bottom; ty++ {
			if lvl.PlatformAt(tx, ty) || (obs != nil && obs.ClosedDoorAt(tx, ty)) {
				consider(level.TileRect(tx, ty))
			}
		}
	}

	if obs != nil {
		box := b.Rect()
		for _, r := range obs.DynamicBodies() {
			if box.Overlaps(r) {
				consider(r)
			}
		}
	}

	return blocker, hit
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
