package state

import (
	"context"

	"github.com/looplab/fsm"

	fsmutil "github.com/autopeer-io/gcslink/internal/pkg/util/fsm"
)

const (
	StateDisarmed = "disarmed"
	StateArmed    = "armed"

	EventArm    = "arm"
	EventDisarm = "disarm"
)

// armMachine tracks the arm state. Transitions are only requested when the
// heartbeat bit differs from the current state.
type armMachine struct {
	*fsm.FSM

	onChange func(armed bool)
}

func newArmMachine(onChange func(armed bool)) *armMachine {
	a := &armMachine{onChange: onChange}

	events := fsm.Events{
		{Name: EventArm, Src: []string{StateDisarmed}, Dst: StateArmed},
		{Name: EventDisarm, Src: []string{StateArmed}, Dst: StateDisarmed},
	}

	callbacks := fsm.Callbacks{
		"enter_state": fsmutil.WrapEvent(a.actionEnterState),
	}

	a.FSM = fsm.NewFSM(StateDisarmed, events, callbacks)
	return a
}

func (a *armMachine) actionEnterState(_ context.Context, e *fsm.Event) error {
	if a.onChange != nil {
		a.onChange(e.Dst == StateArmed)
	}
	return nil
}

// set moves the machine to the requested arm state. It is a no-op when the
// machine is already there.
func (a *armMachine) set(ctx context.Context, armed bool) error {
	if a.Armed() == armed {
		return nil
	}
	event := EventDisarm
	if armed {
		event = EventArm
	}
	return fsmutil.Fire(ctx, a.FSM, event)
}

func (a *armMachine) Armed() bool { return a.Current() == StateArmed }
