package state

import (
	"errors"
	"sync"
)

// Phase names a room lifecycle state on the wire.
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhasePlaying   Phase = "playing"
	PhaseCompleted Phase = "completed"
	PhaseEmpty     Phase = "empty"
)

// State is one lifecycle state of a room.
type State interface {
	OnEnter()
	OnExit()
	OnUpdate()
	Phase() Phase
}

// ErrTransitionNotAllowed is returned when a phase transition is blocked.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// Machine drives a room through its lifecycle states. Transitions may carry
// a guard condition; a transition with no registered guard is allowed.
type Machine struct {
	current     State
	transitions map[Phase]map[Phase]func() bool
	mutex       sync.RWMutex
}

func NewMachine(initial State) *Machine {
	m := &Machine{
		current:     initial,
		transitions: make(map[Phase]map[Phase]func() bool),
	}
	initial.OnEnter()
	return m
}

// ChangeState moves the machine to a new state, running exit and enter
// hooks, unless a guard for the transition refuses it.
func (m *Machine) ChangeState(next State) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if guards, ok := m.transitions[m.current.Phase()]; ok {
		if guard, ok := guards[next.Phase()]; ok {
			if guard != nil && !guard() {
				return ErrTransitionNotAllowed
			}
		}
	}

	m.current.OnExit()
	m.current = next
	m.current.OnEnter()
	return nil
}

// Current returns the active state.
func (m *Machine) Current() State {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.current
}

// CurrentPhase returns the active state's phase name.
func (m *Machine) CurrentPhase() Phase {
	return m.Current().Phase()
}

// AddTransition registers a guard for the from→to transition.
func (m *Machine) AddTransition(from, to Phase, guard func() bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[Phase]func() bool)
	}
	m.transitions[from][to] = guard
}
