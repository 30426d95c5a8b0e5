// Package fsm holds helpers shared by the looplab/fsm state machines.
package fsm

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// WrapEvent adapts a callback returning an error to fsm.Callback. A non-nil
// error is stored on the event and returned by the Event call.
func WrapEvent(fn func(ctx context.Context, event *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Err = err
		}
	}
}

// Fire triggers event on m. Events that leave the state unchanged are not
// errors.
func Fire(ctx context.Context, m *fsm.FSM, event string) error {
	err := m.Event(ctx, event)
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}
	return err
}
