package link

import (
	"fmt"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/internal/pkg/metrics"
)

// ackKey identifies the reply that completes a tracked request: a
// COMMAND_ACK for a command number, or the PARAM_VALUE echo of a parameter.
type ackKey struct {
	command mavlink.Cmd
	param   string
}

func (k ackKey) String() string {
	if k.param != "" {
		return "PARAM_SET"
	}
	return fmt.Sprintf("MAV_CMD_%d", k.command)
}

type request struct {
	key      ackKey
	target   mavlink.Identity
	listener core.Listener
	timer    clock.Timer
	sent     time.Time
}

// answeredBy reports whether a reply from sender can complete r. A zero
// target id accepts any sender.
func (r *request) answeredBy(sender mavlink.Identity) bool {
	if r.target.SystemID != 0 && r.target.SystemID != sender.SystemID {
		return false
	}
	return r.target.ComponentID == 0 || r.target.ComponentID == sender.ComponentID
}

// tracker holds requests awaiting their reply. Replies complete the oldest
// request with the same key addressed to the replying system.
type tracker struct {
	clock   clock.WithDelayedExecution
	exec    core.Executor
	timeout time.Duration

	mu      sync.Mutex
	pending map[ackKey][]*request
}

func newTracker(clk clock.WithDelayedExecution, exec core.Executor, timeout time.Duration) *tracker {
	return &tracker{
		clock:   clk,
		exec:    exec,
		timeout: timeout,
		pending: make(map[ackKey][]*request),
	}
}

// add tracks l until a reply for key arrives from target or the timeout
// expires.
func (t *tracker) add(key ackKey, target mavlink.Identity, l core.Listener) *request {
	r := &request{key: key, target: target, listener: l, sent: t.clock.Now()}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[key] = append(t.pending[key], r)
	r.timer = t.clock.AfterFunc(t.timeout, func() { t.expire(r) })
	return r
}

func (t *tracker) expire(r *request) {
	// Runs on the timer itself, which must not be stopped from here.
	if !t.unlink(r, false) {
		return
	}
	metrics.CommandSentTotal.WithLabelValues("timeout", r.key.String()).Inc()
	t.exec.Post(r.listener.OnTimeout)
}

// remove drops r and stops its timer.
func (t *tracker) remove(r *request) {
	t.unlink(r, true)
}

// unlink drops r and reports whether it was still pending.
func (t *tracker) unlink(r *request, stop bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	queue := t.pending[r.key]
	for i, q := range queue {
		if q != r {
			continue
		}
		if stop {
			r.timer.Stop()
		}
		queue = append(queue[:i], queue[i+1:]...)
		if len(queue) == 0 {
			delete(t.pending, r.key)
		} else {
			t.pending[r.key] = queue
		}
		return true
	}
	return false
}

// oldest returns the position of the oldest request for key that sender
// may answer, or -1. t.mu must be held.
func (t *tracker) oldest(key ackKey, sender mavlink.Identity) int {
	for i, r := range t.pending[key] {
		if r.answeredBy(sender) {
			return i
		}
	}
	return -1
}

// take removes and returns the oldest request for key answered by sender.
func (t *tracker) take(key ackKey, sender mavlink.Identity) *request {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.oldest(key, sender)
	if i < 0 {
		return nil
	}
	queue := t.pending[key]
	r := queue[i]
	queue = append(queue[:i], queue[i+1:]...)
	if len(queue) == 0 {
		delete(t.pending, key)
	} else {
		t.pending[key] = queue
	}
	r.timer.Stop()
	return r
}

// refresh restarts the timeout of the oldest request for key answered by
// sender. Long running commands report IN_PROGRESS before their final result.
func (t *tracker) refresh(key ackKey, sender mavlink.Identity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.oldest(key, sender)
	if i < 0 {
		return
	}
	r := t.pending[key][i]
	r.timer.Stop()
	r.timer = t.clock.AfterFunc(t.timeout, func() { t.expire(r) })
}

// handle completes the request a reply from sender belongs to, if any. It
// must be called after the reply itself has been posted so that
// collaborators see the reply before the listener runs.
func (t *tracker) handle(sender mavlink.Identity, p mavlink.Payload) {
	switch m := p.(type) {
	case *mavlink.CommandAck:
		key := ackKey{command: m.Command}
		if m.Result == mavlink.ResultInProgress {
			t.refresh(key, sender)
			return
		}
		r := t.take(key, sender)
		if r == nil {
			return
		}
		t.observe(r)
		if m.Result == mavlink.ResultAccepted {
			metrics.CommandSentTotal.WithLabelValues("success", key.String()).Inc()
			t.exec.Post(r.listener.OnSuccess)
			return
		}
		code := core.ErrorCodeFromResult(m.Result)
		metrics.CommandSentTotal.WithLabelValues("error", key.String()).Inc()
		t.exec.Post(func() { r.listener.OnError(code) })
	case *mavlink.ParamValue:
		key := ackKey{param: m.ParamID}
		r := t.take(key, sender)
		if r == nil {
			return
		}
		t.observe(r)
		metrics.CommandSentTotal.WithLabelValues("success", key.String()).Inc()
		t.exec.Post(r.listener.OnSuccess)
	}
}

func (t *tracker) observe(r *request) {
	metrics.CommandLatency.WithLabelValues(r.key.String()).Observe(t.clock.Since(r.sent).Seconds())
}

// count returns the number of pending requests.
func (t *tracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, q := range t.pending {
		n += len(q)
	}
	return n
}
