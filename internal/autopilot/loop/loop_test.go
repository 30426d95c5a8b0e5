package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func startLoop(t *testing.T, l *Loop) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	return func() {
		cancel()
		require.NoError(t, <-errCh)
	}
}

func TestPostRunsInOrder(t *testing.T) {
	l := New(nil, nil)
	stop := startLoop(t, l)
	defer stop()

	var got []int
	for i := range 100 {
		l.Post(func() { got = append(got, i) })
	}
	require.NoError(t, l.Call(context.Background(), func() {}))

	require.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestPostFromLoop(t *testing.T) {
	l := New(nil, nil)
	stop := startLoop(t, l)
	defer stop()

	done := make(chan struct{})
	l.Post(func() {
		l.Post(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("nested post did not run")
	}
}

func TestPanicDoesNotStopLoop(t *testing.T) {
	l := New(nil, nil)
	stop := startLoop(t, l)
	defer stop()

	l.Post(func() { panic("bad message") })

	ran := false
	require.NoError(t, l.Call(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestCallAfterStop(t *testing.T) {
	l := New(nil, nil)
	stop := startLoop(t, l)
	stop()

	assert.ErrorIs(t, l.Call(context.Background(), func() {}), ErrStopped)
}

func TestEvery(t *testing.T) {
	clk := testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	l := New(clk, nil)
	var ticks atomic.Int32
	l.Every(time.Second, func() { ticks.Add(1) })
	stop := startLoop(t, l)
	defer stop()

	require.Eventually(t, clk.HasWaiters, 5*time.Second, time.Millisecond)
	clk.Step(time.Second)

	assert.Eventually(t, func() bool { return ticks.Load() == 1 }, 5*time.Second, time.Millisecond)
}
