package room

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/coopgaem/server/logger"
	"github.com/coopgaem/server/models"
	"github.com/coopgaem/server/network"
	"github.com/coopgaem/server/state"
)

// Metrics is the slice of the monitoring surface the scheduler feeds.
type Metrics interface {
	ObserveTickDuration(d time.Duration)
	SetActiveRooms(n int)
}

// Manager is the process-wide room registry and the single fixed-rate
// scheduler that drives every live room. Rooms are created on first join
// and removed once empty.
type Manager struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	tickRate int

	broadcaster Broadcaster
	completions CompletionSink
	metrics     Metrics

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewManager(tickRate int) *Manager {
	if tickRate <= 0 {
		tickRate = 30
	}
	return &Manager{
		rooms:    make(map[string]*Room),
		tickRate: tickRate,
		stopChan: make(chan struct{}),
	}
}

// SetBroadcaster wires the outbound path. Must be set before rooms exist.
func (m *Manager) SetBroadcaster(b Broadcaster) { m.broadcaster = b }

// SetCompletionSink wires the optional completion-record sink.
func (m *Manager) SetCompletionSink(c CompletionSink) { m.completions = c }

// SetMetrics wires the optional scheduler metrics.
func (m *Manager) SetMetrics(mt Metrics) { m.metrics = mt }

// GetOrCreate returns the room with the given id, creating it on level 1
// if absent. An emptied room is terminal; one still registered here only
// awaits the scheduler's sweep, so a join replaces it with a fresh room.
func (m *Manager) GetOrCreate(id string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok || r.Phase() == state.PhaseEmpty {
		r = NewRoom(id, m.tickRate, m.broadcaster, m.completions)
		m.rooms[id] = r
	}
	return r
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}

// Rooms returns a point-in-time copy of all live rooms.
func (m *Manager) Rooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

// List returns joinable rooms: those below the player cap.
func (m *Manager) List() []models.RoomInfo {
	list := make([]models.RoomInfo, 0)
	for _, r := range m.Rooms() {
		info := r.Info()
		if info.PlayerCount < MaxPlayers {
			list = append(list, info)
		}
	}
	return list
}

// Run drives every live room at the fixed tick rate until Stop. Each tick
// updates a room then, while it is playing, pushes the full snapshot to its
// players. A fault in one room is contained to that room.
func (m *Manager) Run() {
	interval := time.Second / time.Duration(m.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			rooms := m.Rooms()
			for _, r := range rooms {
				m.updateRoom(r)
			}
			if m.metrics != nil {
				m.metrics.ObserveTickDuration(time.Since(start))
				m.metrics.SetActiveRooms(len(rooms))
			}
		}
	}
}

// Stop halts the scheduler. Idempotent.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Manager) updateRoom(r *Room) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Errorf("room %s: update panic: %v", r.ID, rec)
		}
	}()

	r.Update()

	switch r.Phase() {
	case state.PhasePlaying:
		if m.broadcaster != nil {
			data, err := json.Marshal(r.Snapshot())
			if err != nil {
				logger.Log.Errorf("room %s: snapshot marshal: %v", r.ID, err)
				return
			}
			_ = m.broadcaster.BroadcastToRoom(r.ID, network.MsgTypeGameState, data)
		}
	case state.PhaseEmpty:
		m.Remove(r.ID)
	}
}
