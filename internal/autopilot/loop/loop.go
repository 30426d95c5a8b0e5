// Package loop provides the serialized processing context of a vehicle:
// inbound messages, listener resolutions and periodic checks all run one at a
// time on the goroutine executing Run.
package loop

import (
	"context"
	"errors"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/pkg/log"
)

// ErrStopped is returned by Call once the loop has stopped.
var ErrStopped = errors.New("processing loop stopped")

// Loop is an unbounded FIFO of functions drained by Run. Post never blocks,
// so functions running on the loop may post further work.
type Loop struct {
	clock  clock.WithTicker
	logger log.Logger

	mu      sync.Mutex
	queue   []func()
	stopped bool
	wake    chan struct{}
	done    chan struct{}

	tickers []ticker
}

type ticker struct {
	every time.Duration
	fn    func()
}

var _ core.Executor = (*Loop)(nil)

func New(clk clock.WithTicker, logger log.Logger) *Loop {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Loop{
		clock:  clk,
		logger: logger.WithName("loop"),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Every runs fn on the loop at the given interval. It must be called before
// Run.
func (l *Loop) Every(every time.Duration, fn func()) {
	if every <= 0 {
		return
	}
	l.tickers = append(l.tickers, ticker{every: every, fn: fn})
}

// Post queues fn. Functions posted after the loop stopped are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop and waits for it to return.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	l.Post(func() {
		defer close(ran)
		fn()
	})

	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the queue until ctx is done. Queued functions that did not run
// yet are discarded.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()

	var wg sync.WaitGroup
	tickCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
	}()
	for _, t := range l.tickers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.runTicker(tickCtx, t)
		}()
	}

	l.logger.Debug("Processing loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Processing loop stopped")
			return nil
		case <-l.wake:
		}

		for _, fn := range l.drain() {
			l.run(fn)
		}
	}
}

func (l *Loop) runTicker(ctx context.Context, t ticker) {
	tk := l.clock.NewTicker(t.every)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C():
			l.Post(t.fn)
		}
	}
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}

// run executes fn, recovering from a panic so that one bad message does not
// stop the vehicle.
func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error(nil, "Recovered from panic on processing loop", "panic", r)
		}
	}()
	fn()
}

func (l *Loop) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	l.queue = nil
	close(l.done)
}
