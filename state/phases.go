package state

// RoomContext is the view of a room the lifecycle states need. Defined here
// to break the import cycle between room and state.
type RoomContext interface {
	GetID() string
	// Tick advances the simulation by one step: switch scan, body motion,
	// door evaluation, exit check. Only the playing state calls it.
	Tick()
}

type base struct {
	phase Phase
	room  RoomContext
}

func (b *base) OnEnter()     {}
func (b *base) OnExit()      {}
func (b *base) OnUpdate()    {}
func (b *base) Phase() Phase { return b.phase }

// WaitingState is the initial state of a freshly created room. Level
// initialization replaces it with PlayingState immediately, so a room is
// never observed waiting after construction.
type WaitingState struct{ base }

func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{base{phase: PhaseWaiting, room: room}}
}

// PlayingState runs the simulation while a level is live.
type PlayingState struct{ base }

func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{base{phase: PhasePlaying, room: room}}
}

func (s *PlayingState) OnUpdate() {
	s.room.Tick()
}

// CompletedState is terminal: all levels finished.
type CompletedState struct{ base }

func NewCompletedState(room RoomContext) *CompletedState {
	return &CompletedState{base{phase: PhaseCompleted, room: room}}
}

// EmptyState is terminal: the room has no players and is eligible for
// registry removal.
type EmptyState struct{ base }

func NewEmptyState(room RoomContext) *EmptyState {
	return &EmptyState{base{phase: PhaseEmpty, room: room}}
}
