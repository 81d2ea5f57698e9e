package level

import (
	"encoding/json"
	"fmt"
)

// TileSize is the side of one grid cell in pixels. Every tile↔pixel
// conversion in the server goes through the helpers below.
const TileSize = 40

// ToPixels converts a tile coordinate to its pixel origin.
func ToPixels(tile int) float64 {
	return float64(tile * TileSize)
}

// TileOf returns the tile coordinate covering a pixel coordinate.
func TileOf(px float64) int {
	t := int(px) / TileSize
	if px < 0 {
		t = -((int(-px) + TileSize - 1) / TileSize)
	}
	return t
}

// Rect is an axis-aligned pixel-space rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports whether two rectangles intersect with positive area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X && r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// TileRect returns the pixel rectangle of a single tile.
func TileRect(tx, ty int) Rect {
	return Rect{X: ToPixels(tx), Y: ToPixels(ty), W: TileSize, H: TileSize}
}

// Coord is a tile-space coordinate.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Switch is a pressure trigger occupying one tile.
type Switch struct {
	ID         int  `json:"id"`
	X          int  `json:"x"`
	Y          int  `json:"y"`
	Sequence   int  `json:"sequence,omitempty"` // rank for the sequence-chain condition, 0 = none
	Timed      bool `json:"timed,omitempty"`
	DurationMs int  `json:"duration,omitempty"` // activation window for timed switches
	Moving     bool `json:"moving,omitempty"`   // mounted on a moving platform
}

// ConditionKind enumerates how a door's open state is derived.
type ConditionKind int

const (
	// ConditionSwitch gates on one switch id.
	ConditionSwitch ConditionKind = iota
	// ConditionBoth requires at least two switches held at once.
	ConditionBoth
	// ConditionAll requires every switch in the level held at once.
	ConditionAll
	// ConditionCross requires activity on both spatial halves of the level.
	ConditionCross
	// ConditionTimed requires every timed switch held inside its window.
	ConditionTimed
	// ConditionFinal requires the sequence chain satisfied in rank order.
	ConditionFinal
	// ConditionNever marks a door that cannot open.
	ConditionNever
)

// DoorCondition is the tagged union referenced by a door: either a concrete
// switch id or one of the symbolic modes.
type DoorCondition struct {
	Kind     ConditionKind
	SwitchID int
}

func BySwitch(id int) DoorCondition { return DoorCondition{Kind: ConditionSwitch, SwitchID: id} }

var (
	Both  = DoorCondition{Kind: ConditionBoth}
	All   = DoorCondition{Kind: ConditionAll}
	Cross = DoorCondition{Kind: ConditionCross}
	Timed = DoorCondition{Kind: ConditionTimed}
	Final = DoorCondition{Kind: ConditionFinal}
	Never = DoorCondition{Kind: ConditionNever}
)

// MarshalJSON keeps the wire shape of the original level data: a bare number
// for switch-gated doors, a mode string otherwise.
func (c DoorCondition) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ConditionSwitch:
		return json.Marshal(c.SwitchID)
	case ConditionBoth:
		return json.Marshal("both")
	case ConditionAll:
		return json.Marshal("all")
	case ConditionCross:
		return json.Marshal("cross")
	case ConditionTimed:
		return json.Marshal("timed")
	case ConditionFinal:
		return json.Marshal("final")
	default:
		return json.Marshal("none")
	}
}

// Door is a tile whose solidity is gated by a condition.
type Door struct {
	X         int           `json:"x"`
	Y         int           `json:"y"`
	Condition DoorCondition `json:"switchId"`
}

// Elevator is a one-tile car that travels between its origin row and
// TargetY while its gate switch is held.
type Elevator struct {
	X        int `json:"x"`
	Y        int `json:"y"`
	TargetY  int `json:"targetY"`
	SwitchID int `json:"switchId"`
}

// MovingPlatform is a one-tile platform oscillating between its origin and
// target along a single axis. Speed is in tiles per second.
type MovingPlatform struct {
	X       int     `json:"x"`
	Y       int     `json:"y"`
	TargetX int     `json:"targetX"`
	TargetY int     `json:"targetY"`
	Speed   float64 `json:"speed"`
}

// Level is one immutable entry of the catalog.
type Level struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Width           int              `json:"width"`
	Height          int              `json:"height"`
	Platforms       []Coord          `json:"platforms"`
	Switches        []Switch         `json:"switches"`
	Doors           []Door           `json:"doors"`
	Elevators       []Elevator       `json:"elevators,omitempty"`
	MovingPlatforms []MovingPlatform `json:"movingPlatforms,omitempty"`
	Exit            Coord            `json:"exit"`
	Spawns          []Coord          `json:"spawns"`

	platformSet map[Coord]struct{}
}

// PlatformAt reports whether a platform tile occupies the coordinate.
func (l *Level) PlatformAt(tx, ty int) bool {
	_, ok := l.platformSet[Coord{X: tx, Y: ty}]
	return ok
}

// PixelWidth returns the level width in pixels.
func (l *Level) PixelWidth() float64 { return ToPixels(l.Width) }

// PixelHeight returns the level height in pixels.
func (l *Level) PixelHeight() float64 { return ToPixels(l.Height) }

func (l *Level) index() {
	l.platformSet = make(map[Coord]struct{}, len(l.Platforms))
	for _, c := range l.Platforms {
		l.platformSet[c] = struct{}{}
	}
}

func (l *Level) validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("level %d: non-positive dimensions %dx%d", l.ID, l.Width, l.Height)
	}
	if len(l.Spawns) == 0 {
		return fmt.Errorf("level %d: no spawn points", l.ID)
	}
	if l.Exit.X < 0 || l.Exit.X >= l.Width || l.Exit.Y < 0 || l.Exit.Y >= l.Height {
		return fmt.Errorf("level %d: exit %v out of bounds", l.ID, l.Exit)
	}
	ids := make(map[int]struct{}, len(l.Switches))
	for _, s := range l.Switches {
		if _, dup := ids[s.ID]; dup {
			return fmt.Errorf("level %d: duplicate switch id %d", l.ID, s.ID)
		}
		ids[s.ID] = struct{}{}
	}
	for i, d := range l.Doors {
		if d.Condition.Kind == ConditionSwitch {
			if _, ok := ids[d.Condition.SwitchID]; !ok {
				return fmt.Errorf("level %d: door %d references unknown switch %d", l.ID, i, d.Condition.SwitchID)
			}
		}
	}
	for _, e := range l.Elevators {
		if _, ok := ids[e.SwitchID]; !ok {
			return fmt.Errorf("level %d: elevator at %d,%d references unknown switch %d", l.ID, e.X, e.Y, e.SwitchID)
		}
	}
	return nil
}
