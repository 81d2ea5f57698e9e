package puzzle

import (
	"testing"
	"time"

	"github.com/coopgaem/server/level"
)

// standOn returns a player bounding box resting on a switch tile.
func standOn(s level.Switch) level.Rect {
	return level.Rect{X: level.ToPixels(s.X) + 10, Y: level.ToPixels(s.Y) + 20, W: 20, H: 20}
}

func TestBoard_SingleSwitchOpensDoor(t *testing.T) {
	level.MustLoad()
	lvl := level.Get(1)
	b := NewBoard(lvl)
	now := time.Now()

	b.UpdateSwitches([]level.Rect{standOn(lvl.Switches[0])}, now)
	b.EvaluateDoors()

	for _, d := range b.Doors {
		if !d.Open {
			t.Errorf("Door at %d,%d should open while the switch is held", d.X, d.Y)
		}
	}
	if b.ClosedDoorAt(15, 12) {
		t.Error("An open door should not be solid")
	}

	// Step off: the door closes again on the next scan.
	b.UpdateSwitches(nil, now.Add(33*time.Millisecond))
	b.EvaluateDoors()

	for _, d := range b.Doors {
		if d.Open {
			t.Errorf("Door at %d,%d should close once the switch is released", d.X, d.Y)
		}
	}
	if !b.ClosedDoorAt(15, 12) {
		t.Error("A closed door should be solid")
	}
}

func TestBoard_BothConditionNeedsTwo(t *testing.T) {
	level.MustLoad()
	lvl := level.Get(2)
	b := NewBoard(lvl)
	now := time.Now()

	b.UpdateSwitches([]level.Rect{standOn(lvl.Switches[0])}, now)
	b.EvaluateDoors()
	if b.Doors[0].Open {
		t.Error("One held switch should not satisfy the two-switch condition")
	}

	b.UpdateSwitches([]level.Rect{standOn(lvl.Switches[0]), standOn(lvl.Switches[1])}, now)
	b.EvaluateDoors()
	if !b.Doors[0].Open {
		t.Error("Two held switches should satisfy the two-switch condition")
	}
}

func TestBoard_AllConditionNeedsEverySwitch(t *testing.T) {
	level.MustLoad()
	lvl := level.Get(4)
	b := NewBoard(lvl)
	now := time.Now()

	var partial []level.Rect
	for _, s := range lvl.Switches[:3] {
		partial = append(partial, standOn(s))
	}
	b.UpdateSwitches(partial, now)
	b.EvaluateDoors()
	if b.Doors[0].Open {
		t.Error("Three of four held switches should not satisfy the all condition")
	}

	var all []level.Rect
	for _, s := range lvl.Switches {
		all = append(all, standOn(s))
	}
	b.UpdateSwitches(all, now)
	b.EvaluateDoors()
	if !b.Doors[0].Open {
		t.Error("Every switch held should satisfy the all condition")
	}
}

func TestBoard_CrossConditionNeedsBothHalves(t *testing.T) {
	level.MustLoad()
	lvl := level.Get(6)
	b := NewBoard(lvl)
	now := time.Now()

	// Switches 0 and 1 sit left of the divide; 2 and 3 right of it.
	b.UpdateSwitches([]level.Rect{standOn(lvl.Switches[0]), standOn(lvl.Switches[1])}, now)
	b.EvaluateDoors()
	if b.Doors[0].Open {
		t.Error("Two switches on the same half should not satisfy the cross condition")
	}

	b.UpdateSwitches([]level.Rect{standOn(lvl.Switches[0]), standOn(lvl.Switches[2])}, now)
	b.EvaluateDoors()
	if !b.Doors[0].Open {
		t.Error("One switch per half should satisfy the cross condition")
	}
}

func TestBoard_TimedSwitchExpiresWhenHeld(t *testing.T) {
	level.MustLoad()
	lvl := level.Get(7)
	b := NewBoard(lvl)
	t0 := time.Now()

	var all []level.Rect
	for _, s := range lvl.Switches {
		all = append(all, standOn(s))
	}

	b.UpdateSwitches(all, t0)
	b.EvaluateDoors()
	if !b.Doors[0].Open {
		t.Fatal("All timed switches freshly pressed should open the door")
	}

	// Switch id 3 has a 3000ms window; holding everything past it expires
	// that switch and shuts the door.
	b.UpdateSwitches(all, t0.Add(3500*time.Millisecond))
	b.EvaluateDoors()
	if !b.Switches[3].Expired {
		t.Error("A timed switch held past its window should expire")
	}
	if b.Doors[0].Open {
		t.Error("An expired timed switch should shut the door")
	}

	// Release and re-press: the rising edge restamps the activation and
	// rearms the switch.
	b.UpdateSwitches(all[:3], t0.Add(3600*time.Millisecond))
	b.UpdateSwitches(all, t0.Add(3700*time.Millisecond))
	b.EvaluateDoors()
	if b.Switches[3].Expired {
		t.Error("Re-pressing a timed switch should rearm it")
	}
	if !b.Doors[0].Open {
		t.Error("Rearmed switches inside their windows should reopen the door")
	}
}

func TestBoard_FinalConditionWalksSequence(t *testing.T) {
	level.MustLoad()
	lvl := level.Get(10)
	b := NewBoard(lvl)
	now := time.Now()

	finalDoor := func() *DoorState {
		for _, d := range b.Doors {
			if d.Condition == level.Final {
				return d
			}
		}
		t.Fatal("Level 10 should carry a sequence-gated door")
		return nil
	}

	// Ranks 1..7 held at once satisfies the chain.
	var first7 []level.Rect
	for _, s := range lvl.Switches[:7] {
		first7 = append(first7, standOn(s))
	}
	b.UpdateSwitches(first7, now)
	b.EvaluateDoors()
	if !finalDoor().Open {
		t.Error("Ranks 1..7 held together should open the sequence door")
	}

	// Breaking the chain at rank 3 fails even with later ranks held.
	var broken []level.Rect
	for i, s := range lvl.Switches[:7] {
		if i == 2 {
			continue
		}
		broken = append(broken, standOn(s))
	}
	b.UpdateSwitches(broken, now.Add(33*time.Millisecond))
	b.EvaluateDoors()
	if finalDoor().Open {
		t.Error("A gap in the sequence chain should keep the door shut")
	}
}

func TestBoard_NeverConditionStaysShut(t *testing.T) {
	level.MustLoad()
	lvl := level.Get(3)
	b := NewBoard(lvl)
	now := time.Now()

	b.UpdateSwitches([]level.Rect{standOn(lvl.Switches[0])}, now)
	b.EvaluateDoors()
	if b.Doors[0].Open {
		t.Error("The permanently shut door should ignore switch state")
	}
}

func TestBoard_UnknownSwitchReference(t *testing.T) {
	level.MustLoad()
	b := NewBoard(level.Get(1))

	if b.Evaluate(level.BySwitch(42)) {
		t.Error("A condition naming an unknown switch should never be satisfied")
	}
	if b.Switch(42) != nil {
		t.Error("Switch lookup for an unknown id should return nil")
	}
}
