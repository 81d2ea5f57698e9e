// Package puzzle tracks the runtime state of a level's switches and doors
// and re-derives it every tick from player positions. Evaluation is pure:
// nothing here carries progress between ticks, including the sequence-chain
// condition, which is recomputed from scratch each time.
package puzzle

import (
	"time"

	"github.com/coopgaem/server/level"
)

// crossDivide is the tile column splitting the level into spatial halves
// for the cross condition.
const crossDivide = 25

// SwitchState is one switch's descriptor plus its per-tick derived state.
type SwitchState struct {
	level.Switch
	Active  bool `json:"active"`
	Expired bool `json:"isExpired"`

	lastActivated time.Time
}

// Valid reports whether the switch currently satisfies door conditions.
func (s *SwitchState) Valid() bool {
	return s.Active && !s.Expired
}

// LastActivated returns when the switch most recently went from released
// to pressed.
func (s *SwitchState) LastActivated() time.Time {
	return s.lastActivated
}

// DoorState is one door's descriptor plus its derived open flag.
type DoorState struct {
	level.Door
	Open bool `json:"open"`
}

// Board holds the mutable puzzle state for one level in one room. Switches
// keep the level's definition order, which the sequence-chain condition
// walks.
type Board struct {
	Switches []*SwitchState
	Doors    []*DoorState

	byID map[int]*SwitchState
}

// NewBoard initializes fresh switch and door state for a level.
func NewBoard(lvl *level.Level) *Board {
	b := &Board{
		Switches: make([]*SwitchState, 0, len(lvl.Switches)),
		Doors:    make([]*DoorState, 0, len(lvl.Doors)),
		byID:     make(map[int]*SwitchState, len(lvl.Switches)),
	}
	for _, s := range lvl.Switches {
		st := &SwitchState{Switch: s}
		b.Switches = append(b.Switches, st)
		b.byID[s.ID] = st
	}
	for _, d := range lvl.Doors {
		b.Doors = append(b.Doors, &DoorState{Door: d})
	}
	return b
}

// Switch returns the switch with the given id, or nil.
func (b *Board) Switch(id int) *SwitchState {
	return b.byID[id]
}

// ClosedDoorAt reports whether a closed door occupies the tile.
func (b *Board) ClosedDoorAt(tx, ty int) bool {
	for _, d := range b.Doors {
		if !d.Open && d.X == tx && d.Y == ty {
			return true
		}
	}
	return false
}

// UpdateSwitches recomputes every switch's activation from the players'
// bounding boxes. The activation timestamp is stamped on the rising edge
// only, so a timed switch held past its window expires and rearms when
// released and pressed again.
func (b *Board) UpdateSwitches(players []level.Rect, now time.Time) {
	for _, s := range b.Switches {
		wasActive := s.Active
		s.Active = false

		tile := level.TileRect(s.X, s.Y)
		for _, p := range players {
			if p.Overlaps(tile) {
				s.Active = true
				break
			}
		}

		if s.Active && !wasActive {
			s.lastActivated = now
			s.Expired = false
		}
		if s.Timed && s.Active {
			s.Expired = now.Sub(s.lastActivated) > time.Duration(s.DurationMs)*time.Millisecond
		}
	}
}

// EvaluateDoors recomputes every door's open flag from current switch
// state. Order-independent across doors.
func (b *Board) EvaluateDoors() {
	for _, d := range b.Doors {
		d.Open = b.Evaluate(d.Condition)
	}
}

// Evaluate resolves one door condition against current switch state.
func (b *Board) Evaluate(cond level.DoorCondition) bool {
	switch cond.Kind {
	case level.ConditionSwitch:
		s := b.byID[cond.SwitchID]
		return s != nil && s.Valid()

	case level.ConditionBoth:
		active := 0
		for _, s := range b.Switches {
			if s.Valid() {
				active++
			}
		}
		return active >= 2

	case level.ConditionAll:
		for _, s := range b.Switches {
			if !s.Valid() {
				return false
			}
		}
		return len(b.Switches) > 0

	case level.ConditionCross:
		left, right := false, false
		for _, s := range b.Switches {
			if !s.Valid() {
				continue
			}
			if s.X < crossDivide {
				left = true
			} else {
				right = true
			}
		}
		return left && right

	case level.ConditionTimed:
		for _, s := range b.Switches {
			if s.Timed && !s.Valid() {
				return false
			}
		}
		return true

	case level.ConditionFinal:
		// Walk the chain in definition order: each held switch whose rank
		// matches the next expected position extends the chain. Reaching
		// position 8 means ranks 1..7 are simultaneously satisfied in order.
		pos := 1
		for _, s := range b.Switches {
			if s.Sequence == pos && s.Valid() {
				pos++
			}
		}
		return pos > 7

	default:
		return false
	}
}
