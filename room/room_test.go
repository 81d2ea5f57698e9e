package room

import (
	"testing"
	"time"

	"github.com/coopgaem/server/level"
	"github.com/coopgaem/server/models"
	"github.com/coopgaem/server/network"
	"github.com/coopgaem/server/physics"
	"github.com/coopgaem/server/state"
)

// MockBroadcaster is a test double for the Broadcaster interface that
// records every message it is asked to deliver.
type MockBroadcaster struct {
	Messages []broadcastCall
}

type broadcastCall struct {
	RoomID string
	MsgID  uint16
	Data   []byte
}

func (m *MockBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	m.Messages = append(m.Messages, broadcastCall{RoomID: roomID, MsgID: msgID, Data: data})
	return nil
}

func (m *MockBroadcaster) lastMsgID() uint16 {
	if len(m.Messages) == 0 {
		return 0
	}
	return m.Messages[len(m.Messages)-1].MsgID
}

// MockCompletionSink records finished runs.
type MockCompletionSink struct {
	Records []*models.CompletionRecord
}

func (m *MockCompletionSink) RecordCompletion(rec *models.CompletionRecord) {
	m.Records = append(m.Records, rec)
}

func newTestRoom(t *testing.T) (*Room, *MockBroadcaster, *MockCompletionSink) {
	t.Helper()
	level.MustLoad()
	bc := &MockBroadcaster{}
	sink := &MockCompletionSink{}
	return NewRoom("test_room", 30, bc, sink), bc, sink
}

func TestRoom_AddPlayer_SlotsAndSpawns(t *testing.T) {
	r, _, _ := newTestRoom(t)

	if r.Phase() != state.PhasePlaying {
		t.Fatalf("A fresh room should be playing, got %s", r.Phase())
	}

	spawns := level.Get(1).Spawns
	for i, sid := range []string{"s1", "s2", "s3", "s4"} {
		p := r.AddPlayer(sid)
		if p == nil {
			t.Fatalf("Join %d should succeed", i+1)
		}
		if p.ID != i+1 {
			t.Errorf("Expected player id %d, got %d", i+1, p.ID)
		}
		if p.Color != playerColors[i] {
			t.Errorf("Expected color %s for slot %d, got %s", playerColors[i], i, p.Color)
		}
		wantX := level.ToPixels(spawns[i].X)
		wantY := level.ToPixels(spawns[i].Y)
		if p.Body.X != wantX || p.Body.Y != wantY {
			t.Errorf("Player %d spawned at %v,%v, want %v,%v", p.ID, p.Body.X, p.Body.Y, wantX, wantY)
		}
	}

	if r.AddPlayer("s5") != nil {
		t.Error("The fifth join should be refused")
	}
	if r.PlayerCount() != 4 {
		t.Errorf("Expected 4 players, got %d", r.PlayerCount())
	}
}

func TestRoom_RemovePlayer(t *testing.T) {
	r, _, _ := newTestRoom(t)
	r.AddPlayer("s1")
	r.AddPlayer("s2")

	if r.RemovePlayer("unknown") != nil {
		t.Error("Removing an absent session should return nil")
	}

	if p := r.RemovePlayer("s1"); p == nil || p.ID != 1 {
		t.Fatalf("Expected to remove player 1, got %+v", p)
	}
	if r.Phase() == state.PhaseEmpty {
		t.Error("A room with players left should not be empty")
	}

	r.RemovePlayer("s2")
	if r.Phase() != state.PhaseEmpty {
		t.Errorf("Removing the last player should empty the room, got %s", r.Phase())
	}
}

func TestRoom_ApplyInput_MovesPlayer(t *testing.T) {
	r, _, _ := newTestRoom(t)
	p := r.AddPlayer("s1")

	startX := p.Body.X
	r.ApplyInput("s1", keysRight())
	if p.Body.X != startX+4 {
		t.Errorf("Expected one walk step right, got x=%v (from %v)", p.Body.X, startX)
	}

	// Unknown sessions are dropped.
	before := p.Body.X
	r.ApplyInput("ghost", keysRight())
	if p.Body.X != before {
		t.Error("Input for an unknown session should not move anyone")
	}
}

func TestRoom_SwitchOpensDoorAndExitAdvancesLevel(t *testing.T) {
	r, bc, _ := newTestRoom(t)
	r.AddPlayer("s1")
	r.AddPlayer("s2")

	lvl := level.Get(1)
	sw := lvl.Switches[0]

	// Player 1 stands on the switch; player 2 waits short of the exit.
	r.players["s1"].Body.X = level.ToPixels(sw.X) + 10
	r.players["s1"].Body.Y = level.ToPixels(sw.Y) + 20
	r.players["s2"].Body.X = 700
	r.players["s2"].Body.Y = 500

	r.Update()

	if r.ClosedDoorAt(15, 12) || r.ClosedDoorAt(15, 11) {
		t.Fatal("Held switch should open both door tiles")
	}
	if r.CurrentLevel() != 1 {
		t.Fatalf("Nobody reached the exit yet, still expected level 1, got %d", r.CurrentLevel())
	}

	// Player 2 reaches the exit tile.
	exit := lvl.Exit
	r.players["s2"].Body.X = level.ToPixels(exit.X) + 10
	r.players["s2"].Body.Y = level.ToPixels(exit.Y) + 10

	r.Update()

	if r.CurrentLevel() != 2 {
		t.Fatalf("Expected advance to level 2, got %d", r.CurrentLevel())
	}
	if bc.lastMsgID() != network.MsgTypeLevelCompleted {
		t.Errorf("Expected a level completed broadcast, got msg id %d", bc.lastMsgID())
	}

	// Everyone respawns on the new level's spawn points, in join order.
	spawns := level.Get(2).Spawns
	if r.players["s1"].Body.X != level.ToPixels(spawns[0].X) {
		t.Error("Player 1 should respawn at the first spawn of level 2")
	}
	if r.players["s2"].Body.X != level.ToPixels(spawns[1].X) {
		t.Error("Player 2 should respawn at the second spawn of level 2")
	}
}

func TestRoom_FinishingLastLevelCompletesGame(t *testing.T) {
	r, bc, sink := newTestRoom(t)
	r.AddPlayer("s1")

	t0 := time.Now()
	r.now = func() time.Time { return t0 }
	r.startedAt = t0.Add(-5 * time.Minute)

	r.currentLevel = level.Count()
	r.initializeLevel()

	last := level.Get(level.Count())
	r.players["s1"].Body.X = level.ToPixels(last.Exit.X) + 10
	r.players["s1"].Body.Y = level.ToPixels(last.Exit.Y) + 10

	r.Update()

	if r.Phase() != state.PhaseCompleted {
		t.Fatalf("Expected completed phase, got %s", r.Phase())
	}
	if bc.lastMsgID() != network.MsgTypeGameCompleted {
		t.Errorf("Expected a game completed broadcast, got msg id %d", bc.lastMsgID())
	}

	if len(sink.Records) != 1 {
		t.Fatalf("Expected one completion record, got %d", len(sink.Records))
	}
	rec := sink.Records[0]
	if rec.Levels != level.Count() {
		t.Errorf("Expected record over %d levels, got %d", level.Count(), rec.Levels)
	}
	if rec.TotalTime != 5*time.Minute {
		t.Errorf("Expected total time 5m, got %v", rec.TotalTime)
	}
	if len(rec.Players) != 1 || rec.Players[0] != "Player1" {
		t.Errorf("Unexpected player names in record: %v", rec.Players)
	}

	// The run is over: ticks and inputs are inert now.
	before := r.players["s1"].Body.X
	r.ApplyInput("s1", keysRight())
	r.Update()
	if r.players["s1"].Body.X != before {
		t.Error("Input after completion should be dropped")
	}
	if r.Phase() != state.PhaseCompleted {
		t.Errorf("Phase should stay completed, got %s", r.Phase())
	}
}

func TestRoom_ElevatorCarriesRider(t *testing.T) {
	r, _, _ := newTestRoom(t)
	r.AddPlayer("s1")
	r.AddPlayer("s2")

	r.currentLevel = 3
	r.initializeLevel()

	lvl := level.Get(3)
	sw := lvl.Switches[0]
	car := lvl.Elevators[0]

	// Player 1 holds the gate switch, player 2 stands on the car.
	r.players["s1"].Body.X = level.ToPixels(sw.X) + 10
	r.players["s1"].Body.Y = level.ToPixels(sw.Y) + 20
	r.players["s2"].Body.X = level.ToPixels(car.X) + 10
	r.players["s2"].Body.Y = level.ToPixels(car.Y) - 20
	r.players["s2"].Body.OnGround = true

	riderY := r.players["s2"].Body.Y
	r.Update()

	// At 1.5 tiles/s and 30 ticks/s the car climbs 2px per tick.
	snap := r.Snapshot()
	if len(snap.Elevators) != 1 {
		t.Fatalf("Expected one elevator in the snapshot, got %d", len(snap.Elevators))
	}
	if got := snap.Elevators[0].CurrentY; got != level.ToPixels(car.Y)-2 {
		t.Errorf("Expected car at y=%v, got %v", level.ToPixels(car.Y)-2, got)
	}
	if !snap.Elevators[0].Moving {
		t.Error("Car should report moving while the gate is held")
	}
	if got := r.players["s2"].Body.Y; got != riderY-2 {
		t.Errorf("Expected rider carried to y=%v, got %v", riderY-2, got)
	}

	// Gate released: the car heads back down, still carrying its rider.
	r.players["s1"].Body.X = 80
	r.players["s1"].Body.Y = 500
	r.Update()
	if got := r.players["s2"].Body.Y; got != riderY {
		t.Errorf("Expected rider lowered back to y=%v, got %v", riderY, got)
	}
}

func TestRoom_SnapshotShape(t *testing.T) {
	r, _, _ := newTestRoom(t)
	r.AddPlayer("s1")

	snap := r.Snapshot()
	if snap.RoomID != "test_room" {
		t.Errorf("Unexpected room id %s", snap.RoomID)
	}
	if snap.CurrentLevel != 1 || snap.LevelName != "First Steps Together" {
		t.Errorf("Unexpected level fields: %d %q", snap.CurrentLevel, snap.LevelName)
	}
	if snap.GameState != string(state.PhasePlaying) {
		t.Errorf("Unexpected game state %q", snap.GameState)
	}
	if len(snap.Players) != 1 || snap.Players[0].Name != "Player1" {
		t.Errorf("Unexpected players: %+v", snap.Players)
	}
	if len(snap.Switches) != 1 || len(snap.Doors) != 2 {
		t.Errorf("Expected 1 switch and 2 doors, got %d and %d", len(snap.Switches), len(snap.Doors))
	}
}

func keysRight() physics.Keys {
	return physics.Keys{Right: true}
}

// rosterBroadcaster resolves the roster back through the room before
// sending, the way the production broadcaster does.
type rosterBroadcaster struct {
	room   *Room
	MsgIDs []uint16
}

func (b *rosterBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	for range b.room.SessionIDs() {
	}
	b.MsgIDs = append(b.MsgIDs, msgID)
	return nil
}

func TestRoom_CompletionEventsSentOutsideLock(t *testing.T) {
	level.MustLoad()
	bc := &rosterBroadcaster{}
	r := NewRoom("test_room", 30, bc, nil)
	bc.room = r
	r.AddPlayer("s1")

	lvl := level.Get(1)
	r.players["s1"].Body.X = level.ToPixels(lvl.Exit.X) + 10
	r.players["s1"].Body.Y = level.ToPixels(lvl.Exit.Y) + 10

	done := make(chan struct{})
	go func() {
		r.Update()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Update did not return; the completion broadcast re-entered the room under its lock")
	}

	if r.CurrentLevel() != 2 {
		t.Fatalf("Expected advance to level 2, got %d", r.CurrentLevel())
	}
	delivered := false
	for _, id := range bc.MsgIDs {
		if id == network.MsgTypeLevelCompleted {
			delivered = true
		}
	}
	if !delivered {
		t.Error("Expected the level completed event to reach the broadcaster")
	}
}
