package level

import (
	"fmt"
	"sync"
)

// row returns the tiles of a horizontal run, x0..x1 inclusive.
func row(y, x0, x1 int) []Coord {
	out := make([]Coord, 0, x1-x0+1)
	for x := x0; x <= x1; x++ {
		out = append(out, Coord{X: x, Y: y})
	}
	return out
}

// col returns the tiles of a vertical run, y0..y1 inclusive.
func col(x, y0, y1 int) []Coord {
	out := make([]Coord, 0, y1-y0+1)
	for y := y0; y <= y1; y++ {
		out = append(out, Coord{X: x, Y: y})
	}
	return out
}

func tiles(groups ...[]Coord) []Coord {
	var out []Coord
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// box returns the level's floor rows and side walls: two ground rows at the
// bottom plus full-height walls on both edges. Every level starts from this.
func box(width, height int) []Coord {
	return tiles(
		row(height-2, 0, width-1),
		row(height-1, 0, width-1),
		col(0, 0, height-1),
		col(width-1, 0, height-1),
	)
}

var (
	loadOnce sync.Once
	levels   []Level
	loadErr  error
)

// Load builds and validates the ten-level catalog. It is idempotent; the
// first error is remembered and returned on every call.
func Load() error {
	loadOnce.Do(func() {
		levels = buildCatalog()
		for i := range levels {
			if err := levels[i].validate(); err != nil {
				loadErr = err
				levels = nil
				return
			}
			levels[i].index()
		}
	})
	return loadErr
}

// Count returns the number of levels in the catalog.
func Count() int { return len(levels) }

// Get returns the 1-based level n, or nil if the catalog does not contain it.
func Get(n int) *Level {
	if n < 1 || n > len(levels) {
		return nil
	}
	return &levels[n-1]
}

// MustLoad is a test helper; it panics if the catalog fails validation.
func MustLoad() {
	if err := Load(); err != nil {
		panic(fmt.Sprintf("level catalog: %v", err))
	}
}

func buildCatalog() []Level {
	return []Level{
		{
			ID:          1,
			Name:        "First Steps Together",
			Description: "Simple cooperation - one switch, one door",
			Width:       25,
			Height:      15,
			Platforms: tiles(
				box(25, 15),
				row(10, 10, 12),
			),
			Switches: []Switch{{ID: 0, X: 5, Y: 12}},
			Doors: []Door{
				{X: 15, Y: 12, Condition: BySwitch(0)},
				{X: 15, Y: 11, Condition: BySwitch(0)},
			},
			Exit:   Coord{X: 22, Y: 12},
			Spawns: row(11, 2, 5),
		},
		{
			ID:          2,
			Name:        "Divided Paths",
			Description: "Two switches control one door - teamwork required",
			Width:       30,
			Height:      15,
			Platforms: tiles(
				box(30, 15),
				col(14, 5, 12), // central barrier
				row(9, 5, 7),
				row(9, 22, 24),
			),
			Switches: []Switch{
				{ID: 0, X: 6, Y: 8},
				{ID: 1, X: 23, Y: 8},
			},
			Doors: []Door{
				{X: 14, Y: 12, Condition: Both},
				{X: 14, Y: 11, Condition: Both},
			},
			Exit:   Coord{X: 27, Y: 12},
			Spawns: []Coord{{X: 2, Y: 11}, {X: 3, Y: 11}, {X: 16, Y: 11}, {X: 17, Y: 11}},
		},
		{
			ID:          3,
			Name:        "Elevator Puzzle",
			Description: "One player operates elevator for others",
			Width:       25,
			Height:      18,
			Platforms: tiles(
				box(25, 18),
				col(10, 4, 15), // elevator shaft walls
				col(14, 4, 15),
				row(5, 16, 19),
				row(10, 6, 8),
			),
			Switches:  []Switch{{ID: 0, X: 7, Y: 9}},
			Elevators: []Elevator{{X: 12, Y: 15, TargetY: 6, SwitchID: 0}},
			// The original data tags this door 'elevator', a condition the
			// evaluator never recognized; it stays permanently shut.
			Doors:  []Door{{X: 20, Y: 4, Condition: Never}},
			Exit:   Coord{X: 22, Y: 4},
			Spawns: row(14, 2, 5),
		},
		{
			ID:          4,
			Name:        "Synchronized Switches",
			Description: "All switches must be pressed simultaneously",
			Width:       35,
			Height:      15,
			Platforms: tiles(
				box(35, 15),
				row(8, 8, 10),
				row(6, 15, 17),
				row(4, 22, 24),
				row(10, 29, 31),
			),
			Switches: []Switch{
				{ID: 0, X: 9, Y: 7},
				{ID: 1, X: 16, Y: 5},
				{ID: 2, X: 23, Y: 3},
				{ID: 3, X: 30, Y: 9},
			},
			Doors: []Door{
				{X: 17, Y: 12, Condition: All},
				{X: 17, Y: 11, Condition: All},
				{X: 17, Y: 10, Condition: All},
			},
			Exit:   Coord{X: 32, Y: 12},
			Spawns: row(11, 2, 5),
		},
		{
			ID:          5,
			Name:        "Chain Reaction",
			Description: "Switches must be activated in sequence",
			Width:       40,
			Height:      16,
			Platforms: tiles(
				box(40, 16),
				row(11, 6, 8),
				row(8, 15, 17),
				row(5, 24, 26),
				row(9, 33, 35),
			),
			Switches: []Switch{
				{ID: 0, X: 7, Y: 10, Sequence: 1},
				{ID: 1, X: 16, Y: 7, Sequence: 2},
				{ID: 2, X: 25, Y: 4, Sequence: 3},
				{ID: 3, X: 34, Y: 8, Sequence: 4},
			},
			Doors: []Door{
				{X: 12, Y: 13, Condition: BySwitch(0)},
				{X: 21, Y: 13, Condition: BySwitch(1)},
				{X: 30, Y: 13, Condition: BySwitch(2)},
				{X: 37, Y: 13, Condition: BySwitch(3)},
				{X: 37, Y: 12, Condition: BySwitch(3)},
			},
			Exit:   Coord{X: 37, Y: 11},
			Spawns: row(12, 2, 5),
		},
		{
			ID:          6,
			Name:        "The Great Divide",
			Description: "Players separated - must coordinate remotely",
			Width:       50,
			Height:      20,
			Platforms: tiles(
				box(50, 20),
				col(24, 3, 17), // central dividing wall
				row(14, 8, 10),
				row(10, 15, 17),
				row(6, 5, 7),
				row(12, 32, 34),
				row(8, 40, 42),
				row(14, 45, 47),
			),
			Switches: []Switch{
				{ID: 0, X: 9, Y: 13},
				{ID: 1, X: 16, Y: 9},
				{ID: 2, X: 33, Y: 11},
				{ID: 3, X: 41, Y: 7},
			},
			Doors: []Door{
				{X: 24, Y: 17, Condition: Cross},
				{X: 24, Y: 16, Condition: Cross},
			},
			Exit:   Coord{X: 47, Y: 17},
			Spawns: []Coord{{X: 2, Y: 16}, {X: 3, Y: 16}, {X: 26, Y: 16}, {X: 27, Y: 16}},
		},
		{
			ID:          7,
			Name:        "Pressure Timing",
			Description: "Timed switches - coordination is key",
			Width:       45,
			Height:      18,
			Platforms: tiles(
				box(45, 18),
				row(12, 6, 8),
				row(8, 12, 14),
				row(12, 18, 20),
				row(6, 24, 26),
				row(10, 30, 32),
				row(4, 36, 38),
			),
			Switches: []Switch{
				{ID: 0, X: 7, Y: 11, Timed: true, DurationMs: 5000},
				{ID: 1, X: 13, Y: 7, Timed: true, DurationMs: 4000},
				{ID: 2, X: 19, Y: 11, Timed: true, DurationMs: 6000},
				{ID: 3, X: 31, Y: 9, Timed: true, DurationMs: 3000},
			},
			Doors: []Door{
				{X: 22, Y: 15, Condition: Timed},
				{X: 22, Y: 14, Condition: Timed},
				{X: 22, Y: 13, Condition: Timed},
			},
			Exit:   Coord{X: 42, Y: 15},
			Spawns: row(14, 2, 5),
		},
		{
			ID:          8,
			Name:        "Multi-Level Madness",
			Description: "3D puzzle - multiple floors to navigate",
			Width:       35,
			Height:      25,
			Platforms: tiles(
				box(35, 25),
				row(15, 10, 24), // second floor
				row(8, 5, 14),   // third floor left
				row(5, 20, 27),  // third floor right
				[]Coord{
					{X: 8, Y: 18}, {X: 9, Y: 18}, {X: 30, Y: 18}, {X: 31, Y: 18},
					{X: 12, Y: 12}, {X: 22, Y: 12}, {X: 26, Y: 10},
				},
			),
			Switches: []Switch{
				{ID: 0, X: 15, Y: 22},
				{ID: 1, X: 17, Y: 14},
				{ID: 2, X: 10, Y: 7},
				{ID: 3, X: 24, Y: 4},
			},
			Doors: []Door{
				{X: 20, Y: 22, Condition: BySwitch(0)},
				{X: 15, Y: 14, Condition: BySwitch(1)},
				{X: 18, Y: 7, Condition: BySwitch(2)},
				{X: 32, Y: 22, Condition: BySwitch(3)},
				{X: 32, Y: 21, Condition: BySwitch(3)},
			},
			Elevators: []Elevator{
				{X: 8, Y: 22, TargetY: 17, SwitchID: 0},
				{X: 30, Y: 22, TargetY: 17, SwitchID: 1},
			},
			Exit:   Coord{X: 32, Y: 20},
			Spawns: row(21, 2, 5),
		},
		{
			ID:          9,
			Name:        "The Gauntlet",
			Description: "Fast coordination required - moving platforms!",
			Width:       60,
			Height:      20,
			Platforms: tiles(
				box(60, 20),
				row(14, 8, 10),
				row(10, 20, 22),
				row(6, 35, 37),
				row(12, 50, 52),
			),
			Switches: []Switch{
				{ID: 0, X: 9, Y: 13, Moving: true},
				{ID: 1, X: 21, Y: 9, Moving: true},
				{ID: 2, X: 36, Y: 5, Moving: true},
				{ID: 3, X: 51, Y: 11, Moving: true},
			},
			MovingPlatforms: []MovingPlatform{
				{X: 15, Y: 12, TargetX: 25, TargetY: 12, Speed: 0.5},
				{X: 30, Y: 8, TargetX: 30, TargetY: 14, Speed: 0.3},
				{X: 45, Y: 15, TargetX: 55, TargetY: 15, Speed: 0.4},
			},
			Doors: []Door{
				{X: 12, Y: 17, Condition: BySwitch(0)},
				{X: 27, Y: 17, Condition: BySwitch(1)},
				{X: 42, Y: 17, Condition: BySwitch(2)},
				{X: 57, Y: 17, Condition: BySwitch(3)},
				{X: 57, Y: 16, Condition: BySwitch(3)},
			},
			Exit:   Coord{X: 57, Y: 15},
			Spawns: row(16, 2, 5),
		},
		{
			ID:          10,
			Name:        "The Ultimate Challenge",
			Description: "Master-level cooperation - everything combined!",
			Width:       70,
			Height:      30,
			Platforms: tiles(
				box(70, 30),
				// lower tier
				row(24, 10, 12),
				row(20, 20, 23),
				row(25, 35, 37),
				row(22, 50, 52),
				// middle tier
				row(16, 15, 18),
				row(12, 30, 33),
				row(18, 45, 47),
				row(14, 60, 62),
				// top tier
				row(8, 25, 28),
				row(6, 40, 42),
				row(4, 55, 58),
			),
			Switches: []Switch{
				{ID: 0, X: 11, Y: 23, Sequence: 1, Timed: true, DurationMs: 8000},
				{ID: 1, X: 21, Y: 19, Sequence: 2, Timed: true, DurationMs: 6000},
				{ID: 2, X: 16, Y: 15, Sequence: 3, Moving: true},
				{ID: 3, X: 31, Y: 11, Sequence: 4, Timed: true, DurationMs: 4000},
				{ID: 4, X: 46, Y: 17, Sequence: 5, Moving: true},
				{ID: 5, X: 26, Y: 7, Sequence: 6, Timed: true, DurationMs: 10000},
				{ID: 6, X: 41, Y: 5, Sequence: 7, Moving: true},
				{ID: 7, X: 56, Y: 3, Sequence: 8, Timed: true, DurationMs: 3000},
			},
			Doors: []Door{
				{X: 25, Y: 27, Condition: BySwitch(0)},
				{X: 25, Y: 26, Condition: BySwitch(0)},
				{X: 38, Y: 24, Condition: BySwitch(1)},
				{X: 38, Y: 23, Condition: BySwitch(1)},
				{X: 48, Y: 21, Condition: BySwitch(2)},
				{X: 34, Y: 11, Condition: BySwitch(3)},
				{X: 34, Y: 10, Condition: BySwitch(3)},
				{X: 58, Y: 13, Condition: BySwitch(4)},
				{X: 58, Y: 12, Condition: BySwitch(4)},
				{X: 43, Y: 5, Condition: BySwitch(5)},
				{X: 43, Y: 4, Condition: BySwitch(5)},
				{X: 67, Y: 27, Condition: Final},
				{X: 67, Y: 26, Condition: Final},
				{X: 67, Y: 25, Condition: Final},
				{X: 67, Y: 24, Condition: Final},
			},
			Elevators: []Elevator{
				{X: 8, Y: 27, TargetY: 23, SwitchID: 0},
				{X: 33, Y: 24, TargetY: 17, SwitchID: 1},
				{X: 43, Y: 17, TargetY: 7, SwitchID: 2},
				{X: 53, Y: 13, TargetY: 5, SwitchID: 3},
			},
			MovingPlatforms: []MovingPlatform{
				{X: 18, Y: 18, TargetX: 28, TargetY: 18, Speed: 0.3},
				{X: 38, Y: 15, TargetX: 38, TargetY: 10, Speed: 0.2},
				{X: 48, Y: 9, TargetX: 58, TargetY: 9, Speed: 0.4},
			},
			Exit:   Coord{X: 67, Y: 23},
			Spawns: row(26, 2, 5),
		},
	}
}
