package turn

import (
	"errors"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from State
		to   State
		ok   bool
	}{
		{StateIdle, StateListening, true},
		{StateIdle, StateReading, true},
		{StateIdle, StateSpeaking, true},
		{StateListening, StateIdle, true},
		{StateListening, StateProcessing, true},
		{StateProcessing, StateIdle, true},
		{StateSpeaking, StateIdle, true},
		{StateReading, StateIdle, true},

		{StateIdle, StateProcessing, false},
		{StateListening, StateReading, false},
		{StateListening, StateSpeaking, false},
		{StateReading, StateListening, false},
		{StateReading, StateSpeaking, false},
		{StateSpeaking, StateReading, false},
		{StateProcessing, StateSpeaking, false},
	}

	for _, tc := range cases {
		m := NewMachine()
		if tc.from != StateIdle {
			forceTo(t, m, tc.from)
		}
		err := m.Transition(tc.to, "test")
		if tc.ok && err != nil {
			t.Fatalf("%s -> %s should be legal: %v", tc.from, tc.to, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%s -> %s should be rejected", tc.from, tc.to)
			}
			var ite *InvalidTransitionError
			if !errors.As(err, &ite) {
				t.Fatalf("expected InvalidTransitionError, got %T", err)
			}
			if m.State() != tc.from {
				t.Fatalf("rejected transition must not change state, now %s", m.State())
			}
		}
	}
}

// forceTo walks legal edges from Idle into the wanted starting state.
func forceTo(t *testing.T, m *Machine, s State) {
	t.Helper()
	var path []State
	switch s {
	case StateListening, StateReading, StateSpeaking:
		path = []State{s}
	case StateProcessing:
		path = []State{StateListening, StateProcessing}
	}
	for _, step := range path {
		if err := m.Transition(step, "setup"); err != nil {
			t.Fatalf("setup transition to %s failed: %v", step, err)
		}
	}
}

func TestListenersObserveChanges(t *testing.T) {
	m := NewMachine()

	var events []StateChange
	m.AddListener(ListenerFunc(func(e StateChange) {
		events = append(events, e)
	}))

	if err := m.Transition(StateListening, "session start"); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if err := m.Transition(StateIdle, "session end"); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].FromState != StateIdle || events[0].ToState != StateListening {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[0].Reason != "session start" {
		t.Fatalf("unexpected reason: %q", events[0].Reason)
	}
}

func TestForceIdle(t *testing.T) {
	m := NewMachine()
	if err := m.Transition(StateReading, "start"); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	m.ForceIdle("stop requested")
	if m.State() != StateIdle {
		t.Fatalf("expected idle, got %s", m.State())
	}

	// No-op from Idle.
	var fired bool
	m.AddListener(ListenerFunc(func(StateChange) { fired = true }))
	m.ForceIdle("already idle")
	if fired {
		t.Fatal("ForceIdle from Idle must not emit an event")
	}
}
