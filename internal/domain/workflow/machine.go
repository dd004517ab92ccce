package workflow

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"
)

// ErrInvalidTransition is returned when a trigger is not permitted from the current state.
var ErrInvalidTransition = apperror.New(apperror.KindInvalidTransition, "invalid state transition")

// Trigger names an action that moves an entity between states.
type Trigger string

const (
	TriggerSubmit  Trigger = "submit"
	TriggerApprove Trigger = "approve"
	TriggerReject  Trigger = "reject"
	TriggerCancel  Trigger = "cancel"
	TriggerUse     Trigger = "use"
	TriggerExpire  Trigger = "expire"
	TriggerDeliver Trigger = "deliver"
	TriggerFail    Trigger = "fail"
)

// Machine is a transition table over a string-backed state type.
// It holds no current state; callers pass the entity's state to Fire.
type Machine[S ~string] struct {
	name        string
	transitions map[S]map[Trigger]S
}

// New creates an empty machine. name is used in error messages.
func New[S ~string](name string) *Machine[S] {
	return &Machine[S]{
		name:        name,
		transitions: make(map[S]map[Trigger]S),
	}
}

// Permit registers from --trigger--> to. Registering the same pair twice panics.
func (m *Machine[S]) Permit(from S, trigger Trigger, to S) *Machine[S] {
	if m.transitions[from] == nil {
		m.transitions[from] = make(map[Trigger]S)
	}
	if existing, ok := m.transitions[from][trigger]; ok {
		panic(fmt.Sprintf("workflow %s: %s already permits %s to %s", m.name, from, trigger, existing))
	}
	m.transitions[from][trigger] = to
	return m
}

// Fire returns the target state for trigger, or ErrInvalidTransition.
func (m *Machine[S]) Fire(from S, trigger Trigger) (S, error) {
	to, ok := m.transitions[from][trigger]
	if !ok {
		return from, fmt.Errorf("%w: %s cannot %s from %s", ErrInvalidTransition, m.name, trigger, from)
	}
	return to, nil
}

func (m *Machine[S]) CanFire(from S, trigger Trigger) bool {
	_, ok := m.transitions[from][trigger]
	return ok
}

// IsTerminal reports whether no trigger leaves s.
func (m *Machine[S]) IsTerminal(s S) bool {
	return len(m.transitions[s]) == 0
}

// PermittedTriggers returns the triggers allowed from s in a stable order.
func (m *Machine[S]) PermittedTriggers(from S) []Trigger {
	triggers := make([]Trigger, 0, len(m.transitions[from]))
	for t := range m.transitions[from] {
		triggers = append(triggers, t)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}

func (m *Machine[S]) Name() string {
	return m.name
}
