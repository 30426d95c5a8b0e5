package core

import (
	"fmt"
	"sync/atomic"

	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

// ErrorCode is reported through Listener.OnError.
type ErrorCode int

const (
	ErrTemporarilyRejected ErrorCode = ErrorCode(mavlink.ResultTemporarilyRejected)
	ErrDenied              ErrorCode = ErrorCode(mavlink.ResultDenied)
	ErrUnsupportedCommand  ErrorCode = ErrorCode(mavlink.ResultUnsupported)
	ErrFailed              ErrorCode = ErrorCode(mavlink.ResultFailed)
	ErrInProgress          ErrorCode = ErrorCode(mavlink.ResultInProgress)
	ErrCancelled           ErrorCode = ErrorCode(mavlink.ResultCancelled)

	// ErrCommandFailed reports a local failure, e.g. the message could not be written.
	ErrCommandFailed ErrorCode = 100
	// ErrUnsupported reports that no collaborator can serve the request.
	ErrUnsupported ErrorCode = 101
	// ErrPrecondition reports that the vehicle is not in the state the
	// request needs, e.g. not armed or not in the required mode.
	ErrPrecondition ErrorCode = 102
)

var errorCodeNames = map[ErrorCode]string{
	ErrTemporarilyRejected: "TemporarilyRejected",
	ErrDenied:              "Denied",
	ErrUnsupportedCommand:  "UnsupportedCommand",
	ErrFailed:              "Failed",
	ErrInProgress:          "InProgress",
	ErrCancelled:           "Cancelled",
	ErrCommandFailed:       "CommandFailed",
	ErrUnsupported:         "Unsupported",
	ErrPrecondition:        "Precondition",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// ErrorCodeFromResult maps a non-accepted MAV_RESULT onto an ErrorCode.
func ErrorCodeFromResult(r mavlink.Result) ErrorCode {
	if _, ok := errorCodeNames[ErrorCode(r)]; ok && r != mavlink.ResultAccepted {
		return ErrorCode(r)
	}
	return ErrFailed
}

// Listener receives the outcome of a command. Exactly one method is called.
type Listener interface {
	OnSuccess()
	OnError(code ErrorCode)
	OnTimeout()
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Success func()
	Error   func(code ErrorCode)
	Timeout func()
}

func (f ListenerFuncs) OnSuccess() {
	if f.Success != nil {
		f.Success()
	}
}

func (f ListenerFuncs) OnError(code ErrorCode) {
	if f.Error != nil {
		f.Error(code)
	}
}

func (f ListenerFuncs) OnTimeout() {
	if f.Timeout != nil {
		f.Timeout()
	}
}

// Nop is a Listener that ignores every outcome.
var Nop Listener = ListenerFuncs{}

type guard struct {
	resolved atomic.Bool
	l        Listener
}

// Guard wraps l so that only the first outcome is forwarded. A nil l is
// treated as Nop. Guarding an already guarded listener returns it unchanged.
func Guard(l Listener) Listener {
	if l == nil {
		l = Nop
	}
	if g, ok := l.(*guard); ok {
		return g
	}
	return &guard{l: l}
}

func (g *guard) OnSuccess() {
	if g.resolved.CompareAndSwap(false, true) {
		g.l.OnSuccess()
	}
}

func (g *guard) OnError(code ErrorCode) {
	if g.resolved.CompareAndSwap(false, true) {
		g.l.OnError(code)
	}
}

func (g *guard) OnTimeout() {
	if g.resolved.CompareAndSwap(false, true) {
		g.l.OnTimeout()
	}
}

// Always forwards the outcome to l and runs next afterwards, whatever the
// outcome was.
func Always(l Listener, next func()) Listener {
	l = Guard(l)
	return Guard(ListenerFuncs{
		Success: func() { l.OnSuccess(); next() },
		Error:   func(code ErrorCode) { l.OnError(code); next() },
		Timeout: func() { l.OnTimeout(); next() },
	})
}

// Then runs next on success and hands it l, so the last step of a chain
// resolves the caller. Errors and timeouts resolve l directly.
func Then(l Listener, next func(l Listener)) Listener {
	l = Guard(l)
	return Guard(ListenerFuncs{
		Success: func() { next(l) },
		Error:   l.OnError,
		Timeout: l.OnTimeout,
	})
}
