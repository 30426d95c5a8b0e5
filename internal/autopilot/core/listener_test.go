package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

type countingListener struct {
	success, timeout int
	errors           []ErrorCode
}

func (c *countingListener) OnSuccess()             { c.success++ }
func (c *countingListener) OnError(code ErrorCode) { c.errors = append(c.errors, code) }
func (c *countingListener) OnTimeout()             { c.timeout++ }

func TestGuardResolvesOnce(t *testing.T) {
	rec := &countingListener{}
	g := Guard(rec)

	g.OnTimeout()
	g.OnSuccess()
	g.OnError(ErrDenied)
	g.OnTimeout()

	assert.Equal(t, 1, rec.timeout)
	assert.Zero(t, rec.success)
	assert.Empty(t, rec.errors)
	assert.Same(t, g, Guard(g))
}

func TestGuardNil(t *testing.T) {
	g := Guard(nil)
	assert.NotPanics(t, func() {
		g.OnSuccess()
		g.OnError(ErrFailed)
	})
}

func TestAlwaysRunsFollowUp(t *testing.T) {
	tests := []struct {
		name    string
		resolve func(Listener)
	}{
		{"success", func(l Listener) { l.OnSuccess() }},
		{"error", func(l Listener) { l.OnError(ErrDenied) }},
		{"timeout", func(l Listener) { l.OnTimeout() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingListener{}
			followUps := 0
			l := Always(rec, func() { followUps++ })

			tt.resolve(l)
			tt.resolve(l)

			assert.Equal(t, 1, followUps)
			assert.Equal(t, 1, rec.success+rec.timeout+len(rec.errors))
		})
	}
}

func TestThenChains(t *testing.T) {
	rec := &countingListener{}
	var steps []string

	first := Then(rec, func(l Listener) {
		steps = append(steps, "second")
		l.OnSuccess()
	})
	first.OnSuccess()

	assert.Equal(t, []string{"second"}, steps)
	assert.Equal(t, 1, rec.success)

	rec = &countingListener{}
	failed := Then(rec, func(Listener) { t.Fatal("next step must not run") })
	failed.OnError(ErrTemporarilyRejected)
	assert.Equal(t, []ErrorCode{ErrTemporarilyRejected}, rec.errors)
}

func TestErrorCodeFromResult(t *testing.T) {
	assert.Equal(t, ErrDenied, ErrorCodeFromResult(mavlink.ResultDenied))
	assert.Equal(t, ErrCancelled, ErrorCodeFromResult(mavlink.ResultCancelled))
	assert.Equal(t, ErrFailed, ErrorCodeFromResult(mavlink.ResultAccepted))
	assert.Equal(t, ErrFailed, ErrorCodeFromResult(mavlink.Result(42)))
	assert.Equal(t, "Denied", ErrDenied.String())
}
