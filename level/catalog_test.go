package level

import (
	"encoding/json"
	"testing"
)

func TestLoad(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatalf("Load should not return an error, got: %v", err)
	}
	if Count() != 10 {
		t.Fatalf("Expected 10 levels in the catalog, got %d", Count())
	}
}

func TestGet_OutOfRange(t *testing.T) {
	MustLoad()

	if Get(0) != nil {
		t.Error("Get(0) should return nil")
	}
	if Get(Count()+1) != nil {
		t.Error("Get past the last level should return nil")
	}
}

func TestLevelOne_Geometry(t *testing.T) {
	MustLoad()
	lvl := Get(1)
	if lvl == nil {
		t.Fatal("Get(1) should return the first level")
	}

	if lvl.Name != "First Steps Together" {
		t.Errorf("Unexpected level name: %s", lvl.Name)
	}
	if lvl.Width != 25 || lvl.Height != 15 {
		t.Errorf("Expected 25x15, got %dx%d", lvl.Width, lvl.Height)
	}

	// Double floor, side walls, no ceiling.
	if !lvl.PlatformAt(12, 13) || !lvl.PlatformAt(12, 14) {
		t.Error("Floor rows should be solid")
	}
	if !lvl.PlatformAt(0, 5) || !lvl.PlatformAt(24, 5) {
		t.Error("Side walls should be solid")
	}
	if lvl.PlatformAt(12, 0) {
		t.Error("There should be no ceiling row")
	}
	if lvl.PlatformAt(5, 12) {
		t.Error("The switch tile should not be solid")
	}

	if len(lvl.Switches) != 1 || lvl.Switches[0].ID != 0 {
		t.Fatalf("Expected a single switch with id 0, got %+v", lvl.Switches)
	}
	if len(lvl.Doors) != 2 {
		t.Fatalf("Expected 2 doors, got %d", len(lvl.Doors))
	}
	for _, d := range lvl.Doors {
		if d.Condition != BySwitch(0) {
			t.Errorf("Expected door gated on switch 0, got %+v", d.Condition)
		}
	}
	if len(lvl.Spawns) != 4 {
		t.Errorf("Expected 4 spawn points, got %d", len(lvl.Spawns))
	}
}

func TestLevelThree_DoorNeverOpens(t *testing.T) {
	MustLoad()
	lvl := Get(3)

	if len(lvl.Doors) != 1 {
		t.Fatalf("Expected 1 door, got %d", len(lvl.Doors))
	}
	if lvl.Doors[0].Condition != Never {
		t.Errorf("Expected the elevator level door to be permanently shut, got %+v", lvl.Doors[0].Condition)
	}
	if len(lvl.Elevators) != 1 {
		t.Fatalf("Expected 1 elevator, got %d", len(lvl.Elevators))
	}
}

func TestDoorCondition_MarshalJSON(t *testing.T) {
	cases := []struct {
		cond DoorCondition
		want string
	}{
		{BySwitch(3), "3"},
		{Both, `"both"`},
		{All, `"all"`},
		{Cross, `"cross"`},
		{Timed, `"timed"`},
		{Final, `"final"`},
		{Never, `"none"`},
	}
	for _, c := range cases {
		got, err := json.Marshal(c.cond)
		if err != nil {
			t.Fatalf("Marshal(%+v) failed: %v", c.cond, err)
		}
		if string(got) != c.want {
			t.Errorf("Marshal(%+v) = %s, want %s", c.cond, got, c.want)
		}
	}
}

func TestTileConversions(t *testing.T) {
	if ToPixels(3) != 120 {
		t.Errorf("ToPixels(3) = %v, want 120", ToPixels(3))
	}
	if TileOf(119) != 2 {
		t.Errorf("TileOf(119) = %d, want 2", TileOf(119))
	}
	if TileOf(120) != 3 {
		t.Errorf("TileOf(120) = %d, want 3", TileOf(120))
	}
}

func TestRect_Overlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 40, H: 40}
	if !a.Overlaps(Rect{X: 20, Y: 20, W: 40, H: 40}) {
		t.Error("Intersecting rectangles should overlap")
	}
	// Touching edges have zero shared area.
	if a.Overlaps(Rect{X: 40, Y: 0, W: 40, H: 40}) {
		t.Error("Edge-adjacent rectangles should not overlap")
	}
}

func TestValidate_RejectsBadReferences(t *testing.T) {
	bad := Level{
		ID:     99,
		Width:  10,
		Height: 10,
		Doors:  []Door{{X: 5, Y: 5, Condition: BySwitch(7)}},
		Exit:   Coord{X: 8, Y: 8},
		Spawns: []Coord{{X: 1, Y: 1}},
	}
	if err := bad.validate(); err == nil {
		t.Error("A door referencing an unknown switch should fail validation")
	}

	noSpawns := Level{ID: 98, Width: 10, Height: 10, Exit: Coord{X: 8, Y: 8}}
	if err := noSpawns.validate(); err == nil {
		t.Error("A level without spawn points should fail validation")
	}
}
