// Package turn holds the voice engine's state machine. Exactly one state is
// authoritative at a time; sessions may only begin from Idle.
package turn

import (
	"sync"
	"time"
)

// State is the engine's current mode.
type State int

const (
	StateIdle State = iota
	StateListening
	StateProcessing
	StateSpeaking
	StateReading
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	case StateReading:
		return "reading"
	default:
		return "unknown"
	}
}

// StateChange represents a state transition event.
type StateChange struct {
	FromState State
	ToState   State
	Timestamp time.Time
	Reason    string
}

// StateListener observes state changes.
type StateListener interface {
	OnStateChange(event StateChange)
}

// ListenerFunc adapts a function to the StateListener interface.
type ListenerFunc func(event StateChange)

func (f ListenerFunc) OnStateChange(event StateChange) { f(event) }

// Machine is the finite state machine guarding session starts.
type Machine struct {
	currentState State
	mu           sync.RWMutex

	stateChangeListeners []StateListener
}

func NewMachine() *Machine {
	return &Machine{currentState: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState
}

// transitionValid checks if a state transition is valid (must be called with lock held).
func (m *Machine) transitionValid(from, to State) bool {
	// Every session type starts from Idle and returns to Idle. Processing
	// is reachable from Listening for one-shot transcription.
	validTransitions := map[State][]State{
		StateIdle:       {StateListening, StateReading, StateSpeaking},
		StateListening:  {StateIdle, StateProcessing},
		StateProcessing: {StateIdle},
		StateSpeaking:   {StateIdle},
		StateReading:    {StateIdle},
	}

	allowedStates, exists := validTransitions[from]
	if !exists {
		return false
	}
	for _, allowed := range allowedStates {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves to a new state with validation.
func (m *Machine) Transition(state State, reason string) error {
	m.mu.Lock()

	if !m.transitionValid(m.currentState, state) {
		defer m.mu.Unlock()
		return &InvalidTransitionError{
			From: m.currentState,
			To:   state,
		}
	}

	oldState := m.currentState
	m.currentState = state

	event := StateChange{
		FromState: oldState,
		ToState:   state,
		Timestamp: time.Now(),
		Reason:    reason,
	}

	// Notify listeners outside the lock to avoid deadlocks.
	listeners := make([]StateListener, len(m.stateChangeListeners))
	copy(listeners, m.stateChangeListeners)
	m.mu.Unlock()

	for _, listener := range listeners {
		listener.OnStateChange(event)
	}
	return nil
}

// ForceIdle returns the machine to Idle from any state. Used by stop paths
// where the session is being torn down regardless of what is running.
func (m *Machine) ForceIdle(reason string) {
	m.mu.Lock()
	if m.currentState == StateIdle {
		m.mu.Unlock()
		return
	}
	event := StateChange{
		FromState: m.currentState,
		ToState:   StateIdle,
		Timestamp: time.Now(),
		Reason:    reason,
	}
	m.currentState = StateIdle

	listeners := make([]StateListener, len(m.stateChangeListeners))
	copy(listeners, m.stateChangeListeners)
	m.mu.Unlock()

	for _, listener := range listeners {
		listener.OnStateChange(event)
	}
}

// AddListener registers a listener for state change events.
func (m *Machine) AddListener(listener StateListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateChangeListeners = append(m.stateChangeListeners, listener)
}

// InvalidTransitionError represents an invalid state transition attempt.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return "invalid state transition from " + e.From.String() + " to " + e.To.String()
}
