package room

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coopgaem/server/level"
	"github.com/coopgaem/server/models"
	"github.com/coopgaem/server/network"
	"github.com/coopgaem/server/physics"
	"github.com/coopgaem/server/puzzle"
	"github.com/coopgaem/server/state"
)

// MaxPlayers is the room capacity.
const MaxPlayers = 4

// riderEpsilon is the tolerance for deciding a player stands on a body.
const riderEpsilon = 1.0

// Room owns one session's full mutable game state. Every mutation — tick or
// inbound input — runs under the room's lock, so there is exactly one
// logical writer at a time and rooms never synchronize with each other.
type Room struct {
	ID string

	mu           sync.Mutex
	players      map[string]*Player // session id -> player
	order        []string           // join order
	currentLevel int                // 1-based index into the catalog
	board        *puzzle.Board
	elevators    []*elevatorBody
	platforms    []*platformBody
	machine      *state.Machine
	levelStart   time.Time
	startedAt    time.Time
	tickSeconds  float64

	broadcaster Broadcaster
	completions CompletionSink
	now         func() time.Time

	// outbox stages events raised during a tick. The broadcaster resolves
	// the roster back through the room, so sending must wait until the
	// lock is released.
	outbox []outboundEvent
}

type outboundEvent struct {
	msgID uint16
	data  []byte
}

// NewRoom creates a room on level 1 and immediately initializes it, so a
// caller never observes the waiting phase.
func NewRoom(id string, tickRate int, broadcaster Broadcaster, completions CompletionSink) *Room {
	r := &Room{
		ID:           id,
		players:      make(map[string]*Player),
		currentLevel: 1,
		tickSeconds:  1.0 / float64(tickRate),
		broadcaster:  broadcaster,
		completions:  completions,
		now:          time.Now,
	}
	r.machine = state.NewMachine(state.NewWaitingState(r))
	r.machine.AddTransition(state.PhaseCompleted, state.PhasePlaying, func() bool { return false })
	r.startedAt = r.now()
	r.initializeLevel()
	return r
}

// GetID implements state.RoomContext.
func (r *Room) GetID() string { return r.ID }

// Phase returns the room's lifecycle phase.
func (r *Room) Phase() state.Phase {
	return r.machine.CurrentPhase()
}

// CurrentLevel returns the 1-based level index.
func (r *Room) CurrentLevel() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentLevel
}

// PlayerCount returns the number of joined players.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// SessionIDs returns the joined session ids in join order.
func (r *Room) SessionIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Info returns the room's listing entry.
func (r *Room) Info() models.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.RoomInfo{
		ID:           r.ID,
		PlayerCount:  len(r.players),
		MaxPlayers:   MaxPlayers,
		CurrentLevel: r.currentLevel,
		GameState:    string(r.machine.CurrentPhase()),
	}
}

// AddPlayer joins a session to the room, assigning the next slot and spawn
// point. Returns nil when the room is full.
func (r *Room) AddPlayer(sessionID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= MaxPlayers {
		return nil
	}
	lvl := level.Get(r.currentLevel)
	if lvl == nil {
		return nil
	}

	slot := len(r.order)
	spawn := lvl.Spawns[0]
	if slot < len(lvl.Spawns) {
		spawn = lvl.Spawns[slot]
	}

	id := slot + 1
	p := &Player{
		ID:        id,
		Name:      fmt.Sprintf("Player%d", id),
		SessionID: sessionID,
		Color:     playerColors[id-1],
		Body: physics.Body{
			X: level.ToPixels(spawn.X),
			Y: level.ToPixels(spawn.Y),
		},
	}
	r.players[sessionID] = p
	r.order = append(r.order, sessionID)
	return p
}

// RemovePlayer deletes a session's player. Idempotent: removing an absent
// player is a no-op returning nil. The last removal flips the room to the
// empty phase.
func (r *Room) RemovePlayer(sessionID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[sessionID]
	if !ok {
		return nil
	}
	delete(r.players, sessionID)
	for i, sid := range r.order {
		if sid == sessionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if len(r.players) == 0 {
		_ = r.machine.ChangeState(state.NewEmptyState(r))
	}
	return p
}

// ApplyInput records a player's key state and resolves the resulting
// movement immediately. Input for an unknown session, or arriving while
// the room is not playing, is silently dropped.
func (r *Room) ApplyInput(sessionID string, keys physics.Keys) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.machine.CurrentPhase() != state.PhasePlaying {
		return
	}
	p, ok := r.players[sessionID]
	if !ok {
		return
	}
	lvl := level.Get(r.currentLevel)
	if lvl == nil {
		return
	}

	p.Keys = keys
	physics.ApplyInput(lvl, &p.Body, keys, r)
}

// Update runs one scheduler tick: a no-op in every phase but playing.
// Events raised by the tick are broadcast after the lock is released.
func (r *Room) Update() {
	r.mu.Lock()
	r.machine.Current().OnUpdate()
	out := r.outbox
	r.outbox = nil
	r.mu.Unlock()

	if r.broadcaster == nil {
		return
	}
	for _, ev := range out {
		_ = r.broadcaster.BroadcastToRoom(r.ID, ev.msgID, ev.data)
	}
}

// Tick implements state.RoomContext: switch scan, body motion with rider
// carry, door evaluation, exit check. Runs with the room lock held (via
// Update).
func (r *Room) Tick() {
	lvl := level.Get(r.currentLevel)
	if lvl == nil {
		// Catalog is validated at startup; degrade to a dead room rather
		// than take the scheduler down.
		return
	}
	now := r.now()

	r.board.UpdateSwitches(r.playerRects(), now)
	r.advanceBodies()
	r.board.EvaluateDoors()

	exitRect := level.TileRect(lvl.Exit.X, lvl.Exit.Y)
	for _, sid := range r.order {
		if r.players[sid].Body.Rect().Overlaps(exitRect) {
			r.completeLevel(now)
			break
		}
	}
}

// ClosedDoorAt implements physics.Obstacles. Call with the room lock held.
func (r *Room) ClosedDoorAt(tx, ty int) bool {
	return r.board.ClosedDoorAt(tx, ty)
}

// DynamicBodies implements physics.Obstacles. Call with the room lock held.
func (r *Room) DynamicBodies() []level.Rect {
	out := make([]level.Rect, 0, len(r.elevators)+len(r.platforms))
	for _, e := range r.elevators {
		out = append(out, e.rect())
	}
	for _, p := range r.platforms {
		out = append(out, p.rect())
	}
	return out
}

// Snapshot returns a copy of the room's wire state. Switch and door states
// are copied by value so later ticks cannot race the caller's marshaling.
func (r *Room) Snapshot() models.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()

	lvl := level.Get(r.currentLevel)
	gs := models.GameState{
		RoomID:       r.ID,
		CurrentLevel: r.currentLevel,
		Level:        lvl,
		GameState:    string(r.machine.CurrentPhase()),
	}
	if lvl != nil {
		gs.LevelName = lvl.Name
		gs.LevelDescription = lvl.Description
	}

	gs.Players = make([]models.PlayerSnapshot, 0, len(r.order))
	for _, sid := range r.order {
		gs.Players = append(gs.Players, r.players[sid].Snapshot())
	}
	gs.Switches = make([]puzzle.SwitchState, 0, len(r.board.Switches))
	for _, s := range r.board.Switches {
		gs.Switches = append(gs.Switches, *s)
	}
	gs.Doors = make([]puzzle.DoorState, 0, len(r.board.Doors))
	for _, d := range r.board.Doors {
		gs.Doors = append(gs.Doors, *d)
	}
	gs.Elevators = make([]models.ElevatorSnapshot, 0, len(r.elevators))
	for _, e := range r.elevators {
		gs.Elevators = append(gs.Elevators, models.ElevatorSnapshot{
			Elevator: e.def,
			CurrentY: e.y,
			Moving:   e.moving,
		})
	}
	gs.Platforms = make([]models.PlatformSnapshot, 0, len(r.platforms))
	for _, p := range r.platforms {
		gs.Platforms = append(gs.Platforms, models.PlatformSnapshot{
			MovingPlatform: p.def,
			CurrentX:       p.x,
			CurrentY:       p.y,
		})
	}
	return gs
}

// initializeLevel resets all puzzle and body state for the current level,
// respawns players in join order (extras reuse the first spawn), and moves
// the room to the playing phase. Call with the room lock held.
func (r *Room) initializeLevel() {
	lvl := level.Get(r.currentLevel)
	if lvl == nil {
		return
	}

	r.board = puzzle.NewBoard(lvl)
	r.elevators = make([]*elevatorBody, 0, len(lvl.Elevators))
	for _, def := range lvl.Elevators {
		r.elevators = append(r.elevators, newElevatorBody(def))
	}
	r.platforms = make([]*platformBody, 0, len(lvl.MovingPlatforms))
	for _, def := range lvl.MovingPlatforms {
		r.platforms = append(r.platforms, newPlatformBody(def))
	}

	for i, sid := range r.order {
		spawn := lvl.Spawns[0]
		if i < len(lvl.Spawns) {
			spawn = lvl.Spawns[i]
		}
		p := r.players[sid]
		p.Body = physics.Body{
			X: level.ToPixels(spawn.X),
			Y: level.ToPixels(spawn.Y),
		}
	}

	r.levelStart = r.now()
	_ = r.machine.ChangeState(state.NewPlayingState(r))
}

// completeLevel advances to the next level or, on the last one, ends the
// game: terminal phase, completion event, completion record. Call with the
// room lock held.
func (r *Room) completeLevel(now time.Time) {
	if r.currentLevel >= level.Count() {
		_ = r.machine.ChangeState(state.NewCompletedState(r))
		total := now.Sub(r.startedAt)
		r.emit(network.MsgTypeGameCompleted, models.GameCompleted{
			Message:     fmt.Sprintf("🎉 CONGRATULATIONS! You have completed all %d levels!", level.Count()),
			TotalTimeMs: total.Milliseconds(),
		})
		if r.completions != nil {
			names := make([]string, 0, len(r.order))
			for _, sid := range r.order {
				names = append(names, r.players[sid].Name)
			}
			r.completions.RecordCompletion(&models.CompletionRecord{
				RoomID:      r.ID,
				Levels:      level.Count(),
				TotalTime:   total,
				Players:     names,
				CompletedAt: now,
			})
		}
		return
	}

	r.currentLevel++
	r.initializeLevel()
	r.emit(network.MsgTypeLevelCompleted, models.LevelCompleted{
		Level:     r.currentLevel - 1,
		NextLevel: r.currentLevel,
		Message:   fmt.Sprintf("Level %d Complete! Moving to Level %d", r.currentLevel-1, r.currentLevel),
	})
}

// advanceBodies moves elevators and platforms one tick, carrying any player
// standing on top by the same displacement. Call with the room lock held.
func (r *Room) advanceBodies() {
	for _, e := range r.elevators {
		gate := r.board.Switch(e.def.SwitchID)
		riders := r.ridersOn(e.rect())
		dy := e.advance(gate != nil && gate.Valid(), r.tickSeconds)
		r.carry(riders, 0, dy)
	}
	for _, p := range r.platforms {
		riders := r.ridersOn(p.rect())
		dx, dy := p.advance(r.tickSeconds)
		r.carry(riders, dx, dy)
	}
}

// ridersOn returns the players standing on top of a body rectangle.
func (r *Room) ridersOn(body level.Rect) []*Player {
	var riders []*Player
	for _, sid := range r.order {
		p := r.players[sid]
		bottom := p.Body.Y + physics.PlayerHeight
		if bottom >= body.Y-riderEpsilon && bottom <= body.Y+riderEpsilon &&
			p.Body.X < body.X+body.W && p.Body.X+physics.PlayerWidth > body.X {
			riders = append(riders, p)
		}
	}
	return riders
}

func (r *Room) carry(riders []*Player, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	for _, p := range riders {
		p.Body.X += dx
		p.Body.Y += dy
		p.Body.OnGround = true
	}
}

func (r *Room) playerRects() []level.Rect {
	rects := make([]level.Rect, 0, len(r.order))
	for _, sid := range r.order {
		rects = append(rects, r.players[sid].Body.Rect())
	}
	return rects
}

// emit stages an event for delivery once the current tick unlocks the room.
// Call with the room lock held.
func (r *Room) emit(msgID uint16, payload any) {
	data, _ := json.Marshal(payload)
	r.outbox = append(r.outbox, outboundEvent{msgID: msgID, data: data})
}
