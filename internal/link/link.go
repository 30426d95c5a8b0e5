// Package link is the MAVLink transport of a vehicle. It owns the gomavlib
// node, converts frames to and from the records of the autopilot core and
// resolves command listeners from COMMAND_ACK and PARAM_VALUE replies.
package link

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/ardupilotmega"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/internal/pkg/metrics"
	"github.com/autopeer-io/gcslink/pkg/log"
)

// ErrClosed is reported once the link has been closed.
var ErrClosed = errors.New("mavlink link closed")

// Config configures the gomavlib node.
type Config struct {
	// Endpoints in the form udps:addr, udpc:addr, udpb:addr, tcps:addr,
	// tcpc:addr or serial:device:baud. The device "auto" picks the first
	// detected USB serial port.
	Endpoints   []string
	SystemID    uint8
	ComponentID uint8
	// V1 sends MAVLink 1 frames, for radios that cannot forward MAVLink 2.
	V1 bool
	// CommandTimeout bounds the wait for a COMMAND_ACK or PARAM_VALUE reply.
	CommandTimeout time.Duration
	// StreamRate requests telemetry streams at the given rate in Hz. Zero
	// leaves the vehicle's stream configuration untouched.
	StreamRate int
}

type writer interface {
	WriteMessageAll(m message.Message) error
}

// Link implements core.Transport over a gomavlib node. Send may be called
// from any goroutine; listeners are resolved through the executor.
type Link struct {
	node    *gomavlib.Node
	w       writer
	exec    core.Executor
	tracker *tracker
	logger  log.Logger

	channels  atomic.Int32
	closed    atomic.Bool
	closeOnce sync.Once
}

var _ core.Transport = (*Link)(nil)

// New opens the configured endpoints.
func New(cfg Config, exec core.Executor, logger log.Logger) (*Link, error) {
	endpoints := make([]gomavlib.EndpointConf, 0, len(cfg.Endpoints))
	for _, e := range cfg.Endpoints {
		conf, err := ParseEndpoint(e)
		if err != nil {
			return nil, err
		}
		endpoints = append(endpoints, conf)
	}

	version := gomavlib.V2
	if cfg.V1 {
		version = gomavlib.V1
	}

	node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints:              endpoints,
		Dialect:                ardupilotmega.Dialect,
		OutVersion:             version,
		OutSystemID:            cfg.SystemID,
		OutComponentID:         cfg.ComponentID,
		StreamRequestEnable:    cfg.StreamRate > 0,
		StreamRequestFrequency: cfg.StreamRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mavlink node: %w", err)
	}

	l := newLink(node, clock.RealClock{}, exec, cfg.CommandTimeout, logger)
	l.node = node
	return l, nil
}

func newLink(w writer, clk clock.WithDelayedExecution, exec core.Executor, timeout time.Duration, logger log.Logger) *Link {
	if exec == nil {
		exec = core.Immediate
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Link{
		w:       w,
		exec:    exec,
		tracker: newTracker(clk, exec, timeout),
		logger:  logger.WithName("link"),
	}
}

// Connected reports whether at least one channel is open.
func (l *Link) Connected() bool { return l.channels.Load() > 0 }

// Run reads node events until ctx is done and hands every decoded message to
// deliver on the executor. The node is closed on return.
func (l *Link) Run(ctx context.Context, deliver func(msg *mavlink.Message)) error {
	defer l.Close()

	events := l.node.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return ErrClosed
			}
			l.handleEvent(ev, deliver)
		}
	}
}

func (l *Link) handleEvent(ev gomavlib.Event, deliver func(msg *mavlink.Message)) {
	switch e := ev.(type) {
	case *gomavlib.EventFrame:
		l.handleMessage(e.SystemID(), e.ComponentID(), e.Message(), deliver)
	case *gomavlib.EventChannelOpen:
		n := l.channels.Add(1)
		metrics.LinkConnected.Set(metrics.BoolValue(n > 0))
		l.logger.Info("Channel opened", "channel", e.Channel.String())
	case *gomavlib.EventChannelClose:
		n := l.channels.Add(-1)
		metrics.LinkConnected.Set(metrics.BoolValue(n > 0))
		l.logger.Warn("Channel closed", "channel", e.Channel.String())
	case *gomavlib.EventParseError:
		l.logger.Debug("Dropped unparsable frame", "error", e.Error)
	}
}

// handleMessage delivers the message first and resolves the request it
// answers second, so collaborators observe a reply before its listener.
func (l *Link) handleMessage(systemID, componentID uint8, m message.Message, deliver func(msg *mavlink.Message)) {
	p := decode(m)
	if p == nil {
		return
	}
	msg := &mavlink.Message{SystemID: systemID, ComponentID: componentID, Payload: p}
	l.exec.Post(func() { deliver(msg) })
	l.tracker.handle(mavlink.Identity{SystemID: systemID, ComponentID: componentID}, p)
}

// ackKeyFor returns the reply a record waits for and the node expected to
// send it. Records without one succeed as soon as they are written.
func ackKeyFor(p mavlink.Payload) (ackKey, mavlink.Identity, bool) {
	switch r := p.(type) {
	case *mavlink.CommandLong:
		return ackKey{command: r.Command}, mavlink.Identity{SystemID: r.TargetSystem, ComponentID: r.TargetComponent}, true
	case *mavlink.ParamSet:
		return ackKey{param: r.ParamID}, mavlink.Identity{SystemID: r.TargetSystem, ComponentID: r.TargetComponent}, true
	default:
		return ackKey{}, mavlink.Identity{}, false
	}
}

// Send writes p to every channel. l is resolved exactly once: from the
// reply, on timeout, on a write error, or right after writing when p does
// not expect a reply.
func (l *Link) Send(p mavlink.Payload, lis core.Listener) {
	tracked := lis != nil
	lis = core.Guard(lis)

	if l.closed.Load() {
		l.logger.Error(ErrClosed, "Dropped outgoing message", "kind", p.Kind())
		l.fail(lis, p)
		return
	}

	msg, err := encode(p)
	if err != nil {
		l.logger.Error(err, "Dropped outgoing message", "kind", p.Kind())
		l.fail(lis, p)
		return
	}

	key, target, expectsReply := ackKeyFor(p)
	var r *request
	if expectsReply && tracked {
		r = l.tracker.add(key, target, lis)
	}

	if err := l.w.WriteMessageAll(msg); err != nil {
		l.logger.Error(err, "Failed to write message", "kind", p.Kind())
		if r != nil {
			l.tracker.remove(r)
		}
		l.fail(lis, p)
		return
	}

	if !expectsReply {
		l.exec.Post(lis.OnSuccess)
	}
}

func (l *Link) fail(lis core.Listener, p mavlink.Payload) {
	metrics.CommandSentTotal.WithLabelValues("error", p.Kind().String()).Inc()
	l.exec.Post(func() { lis.OnError(core.ErrCommandFailed) })
}

// Close closes the node. Pending requests time out as usual.
func (l *Link) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		if l.node != nil {
			l.node.Close()
		}
	})
}
