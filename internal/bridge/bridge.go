// Package bridge connects a vehicle to its operators over MQTT. Vehicle
// events and log lines are published; command envelopes are decoded into
// actions, executed on the vehicle and acknowledged.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/autopeer-io/gcslink/internal/autopilot"
	"github.com/autopeer-io/gcslink/internal/autopilot/action"
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/pkg/metrics"
	"github.com/autopeer-io/gcslink/pkg/log"
	"github.com/autopeer-io/gcslink/pkg/mqtt"
	"github.com/autopeer-io/gcslink/pkg/mqtt/topic"
)

const (
	defaultQueueSize   = 256
	unknownActionLabel = "unknown"
)

// Ack statuses published on the command ack topic. Every command gets
// accepted or rejected first; accepted commands then get exactly one of
// success, error or timeout.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusTimeout  = "timeout"
)

// Ack reports the progress of one command.
type Ack struct {
	ID     string `json:"id"`
	Action string `json:"action,omitempty"`
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type logLine struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type onlineStatus struct {
	VehicleID string `json:"vehicle_id"`
	Online    bool   `json:"online"`
	Reason    string `json:"reason,omitempty"`
}

type outbound struct {
	kind    string
	topic   string
	retain  bool
	payload []byte
}

// Config wires a Bridge. Commands are executed on Executor, the vehicle's
// processing context.
type Config struct {
	VehicleID string
	Client    mqtt.Client
	Topics    *topic.Builder
	Codec     Codec
	Drone     autopilot.Drone
	Executor  core.Executor
	Logger    log.Logger
	QueueSize int
}

// Bridge implements core.Notifier. Notifications are encoded on the
// caller's goroutine and published from Run, so the processing context
// never waits for the broker.
type Bridge struct {
	vid    string
	mc     mqtt.Client
	topics *topic.Builder
	codec  Codec
	drone  autopilot.Drone
	exec   core.Executor
	logger log.Logger

	out chan outbound
}

var _ core.Notifier = (*Bridge)(nil)

func New(cfg Config) *Bridge {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	if cfg.Codec == nil {
		cfg.Codec = jsonCodec{}
	}
	return &Bridge{
		vid:    cfg.VehicleID,
		mc:     cfg.Client,
		topics: cfg.Topics,
		codec:  cfg.Codec,
		drone:  cfg.Drone,
		exec:   cfg.Executor,
		logger: cfg.Logger,
		out:    make(chan outbound, cfg.QueueSize),
	}
}

// WillMessage returns the topic and the retained offline status to register
// as the client's last will.
func WillMessage(topics *topic.Builder, codec Codec, vid string) (string, []byte, error) {
	payload, err := codec.Marshal(onlineStatus{VehicleID: vid, Online: false, Reason: "UnexpectedDisconnect"})
	return topics.Online(vid), payload, err
}

// Run connects to the broker, subscribes to the command topic and publishes
// queued messages until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.mc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start mqtt client: %w", err)
	}
	defer b.stop()

	if err := b.mc.AwaitConnection(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	commandTopic := b.topics.Command(b.vid)
	if err := b.mc.Subscribe(ctx, commandTopic, mqtt.AtLeastOnce, b.handleCommand); err != nil {
		return err
	}
	b.publishOnline(ctx, true, "")
	b.logger.Info("MQTT bridge started", "vehicleID", b.vid, "commands", commandTopic)

	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-b.out:
			b.publish(ctx, m)
		}
	}
}

func (b *Bridge) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.publishOnline(ctx, false, "Shutdown")
	b.logger.Info("Disconnecting MQTT client...")
	b.mc.Disconnect(ctx)
}

func (b *Bridge) publishOnline(ctx context.Context, online bool, reason string) {
	payload, err := b.codec.Marshal(onlineStatus{VehicleID: b.vid, Online: online, Reason: reason})
	if err != nil {
		b.logger.Error(err, "Failed to encode online status")
		return
	}
	b.publish(ctx, outbound{kind: "online", topic: b.topics.Online(b.vid), retain: true, payload: payload})
}

func (b *Bridge) publish(ctx context.Context, m outbound) {
	if err := b.mc.Publish(ctx, m.topic, mqtt.AtLeastOnce, m.retain, m.payload); err != nil {
		metrics.PublishTotal.WithLabelValues(m.kind, "failed").Inc()
		b.logger.Error(err, "Failed to publish", "topic", m.topic)
		return
	}
	metrics.PublishTotal.WithLabelValues(m.kind, "published").Inc()
}

func (b *Bridge) enqueue(kind, topic string, v any) {
	payload, err := b.codec.Marshal(v)
	if err != nil {
		b.logger.Error(err, "Failed to encode outbound message", "kind", kind)
		return
	}
	select {
	case b.out <- outbound{kind: kind, topic: topic, payload: payload}:
	default:
		metrics.PublishTotal.WithLabelValues(kind, "dropped").Inc()
	}
}

func (b *Bridge) NotifyEvent(ev core.Event) {
	b.enqueue("telemetry", b.topics.Telemetry(b.vid), ev)
}

func (b *Bridge) LogMessage(level core.LogLevel, text string) {
	b.enqueue("log", b.topics.Log(b.vid), logLine{Level: level.String(), Text: text})
}

func (b *Bridge) ack(a Ack) {
	b.enqueue("ack", b.topics.CommandAck(b.vid), a)
}

func (b *Bridge) reject(id, name, label, reason string) {
	metrics.ActionsTotal.WithLabelValues(label, StatusRejected).Inc()
	b.ack(Ack{ID: id, Action: name, Status: StatusRejected, Reason: reason})
}

// actionLabel maps a decoded action to a metric label. Names outside the
// known set collapse to "unknown" so operators cannot grow the series count.
func actionLabel(a action.Action) string {
	if a == nil {
		return unknownActionLabel
	}
	if _, ok := a.(action.Unknown); ok {
		return unknownActionLabel
	}
	return string(a.Name())
}

// handleCommand runs on the MQTT client's goroutine.
func (b *Bridge) handleCommand(_ context.Context, _ string, payload []byte) {
	cmd, err := b.codec.DecodeCommand(payload)
	if cmd.ID == "" {
		// Generated so that the acknowledgements can still be correlated.
		cmd.ID = uuid.NewString()
	}
	if err != nil {
		b.logger.Warn("Invalid command envelope", "error", err)
		b.reject(cmd.ID, cmd.Action, unknownActionLabel, err.Error())
		return
	}
	a, err := action.Decode(cmd.Action, cmd.Params)
	if err != nil {
		b.reject(cmd.ID, cmd.Action, unknownActionLabel, err.Error())
		return
	}

	b.exec.Post(func() {
		l := &ackListener{b: b, cmd: cmd, label: actionLabel(a)}
		l.start(b.drone.Execute(a, l))
	})
}

// ackListener publishes the outcome of an accepted command. An outcome
// reported before Execute returned is held back so that the accepted ack
// always comes first.
type ackListener struct {
	b       *Bridge
	cmd     Command
	label   string
	started bool
	held    *Ack
}

func (l *ackListener) start(accepted bool) {
	l.started = true
	if !accepted {
		l.b.reject(l.cmd.ID, l.cmd.Action, l.label, "action not supported by this vehicle")
		return
	}
	l.b.ack(Ack{ID: l.cmd.ID, Action: l.cmd.Action, Status: StatusAccepted})
	if l.held != nil {
		l.publish(*l.held)
	}
}

func (l *ackListener) resolve(a Ack) {
	a.ID, a.Action = l.cmd.ID, l.cmd.Action
	if !l.started {
		l.held = &a
		return
	}
	l.publish(a)
}

func (l *ackListener) publish(a Ack) {
	metrics.ActionsTotal.WithLabelValues(l.label, a.Status).Inc()
	l.b.ack(a)
}

func (l *ackListener) OnSuccess() { l.resolve(Ack{Status: StatusSuccess}) }
func (l *ackListener) OnTimeout() { l.resolve(Ack{Status: StatusTimeout}) }

func (l *ackListener) OnError(code core.ErrorCode) {
	l.resolve(Ack{Status: StatusError, Code: code.String()})
}
