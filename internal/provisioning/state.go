package provisioning

import "fmt"

// State is a point in the life of one run.
type State string

const (
	StateIdle            State = "Idle"
	StateServiceStopped  State = "ServiceStopped"
	StateDataPurged      State = "DataPurged"
	StatePeerWaitElapsed State = "PeerWaitElapsed"
	StateConfiguring     State = "Configuring"
	StateConfigured      State = "Configured"
)

var (
	destructiveTransitions = map[State]State{
		StateIdle:            StateServiceStopped,
		StateServiceStopped:  StateDataPurged,
		StateDataPurged:      StatePeerWaitElapsed,
		StatePeerWaitElapsed: StateConfiguring,
		StateConfiguring:     StateConfigured,
	}
	normalTransitions = map[State]State{
		StateIdle:        StateConfiguring,
		StateConfiguring: StateConfigured,
	}
)

// StateMachine enforces the order of a run. A destructive run must pass
// through every cleanup state; a normal run goes straight to Configuring.
type StateMachine struct {
	current     State
	transitions map[State]State
	history     []State
	observer    Observer
}

// NewStateMachine starts in Idle.
func NewStateMachine(destructive bool, observer Observer) *StateMachine {
	t := normalTransitions
	if destructive {
		t = destructiveTransitions
	}
	return &StateMachine{
		current:     StateIdle,
		transitions: t,
		history:     []State{StateIdle},
		observer:    observer,
	}
}

// Current returns the current state.
func (m *StateMachine) Current() State {
	return m.current
}

// History returns every state entered so far, starting with Idle.
func (m *StateMachine) History() []State {
	return append([]State(nil), m.history...)
}

// Transition moves to next, which must be the only successor of the
// current state.
func (m *StateMachine) Transition(next State) error {
	want, ok := m.transitions[m.current]
	if !ok {
		return fmt.Errorf("no transition out of terminal state %s", m.current)
	}
	if next != want {
		return fmt.Errorf("illegal transition %s -> %s (expected %s)", m.current, next, want)
	}

	prev := m.current
	m.current = next
	m.history = append(m.history, next)
	if m.observer != nil {
		m.observer.Event(Event{
			Type:    EventStateTransition,
			Message: fmt.Sprintf("%s -> %s", prev, next),
			Fields:  map[string]string{"from": string(prev), "to": string(next)},
		})
	}
	return nil
}

// Terminal reports whether the run reached Configured.
func (m *StateMachine) Terminal() bool {
	return m.current == StateConfigured
}
