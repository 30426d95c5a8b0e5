package ardupilot

import (
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/internal/autopilot/telemetry"
	"github.com/autopeer-io/gcslink/internal/pkg/metrics"
)

// Routing results, used as metric labels.
const (
	resultDropped = "dropped"
	resultClaimed = "claimed"
	resultHandled = "handled"
	resultIgnored = "ignored"
)

type handler func(msg *mavlink.Message)

// on adapts a typed payload handler. Messages carrying another payload type
// are ignored.
func on[T any](fn func(msg *mavlink.Message, p *T)) handler {
	return func(msg *mavlink.Message) {
		if p, ok := any(msg.Payload).(*T); ok {
			fn(msg, p)
		}
	}
}

// update adapts a telemetry update function and publishes its events.
func update[T any](v *Vehicle, fn func(s *telemetry.Snapshot, p *T) []core.Event) handler {
	return on(func(_ *mavlink.Message, p *T) {
		v.publish(fn(v.snapshot, p))
	})
}

// routes builds the kind to handler table. Kinds missing from the table are
// ignored.
func (v *Vehicle) routes() map[mavlink.Kind]handler {
	return map[mavlink.Kind]handler{
		mavlink.KindHeartbeat:     on(v.handleHeartbeat),
		mavlink.KindStatusText:    on(v.handleStatusText),
		mavlink.KindNamedValueInt: on(v.handleNamedValue),

		mavlink.KindVfrHud:              update(v, telemetry.ApplyVfrHud),
		mavlink.KindNavControllerOutput: update(v, telemetry.ApplyNavControllerOutput),
		mavlink.KindMissionCurrent:      update(v, telemetry.ApplyMissionCurrent),
		mavlink.KindMissionItemReached:  update(v, telemetry.ApplyMissionItemReached),
		mavlink.KindRawIMU:              update(v, telemetry.ApplyRawIMU),
		mavlink.KindRadio:               update(v, telemetry.ApplyRadio),
		mavlink.KindRadioStatus: update(v, func(s *telemetry.Snapshot, m *mavlink.RadioStatus) []core.Event {
			return telemetry.ApplyRadio(s, &m.Radio)
		}),
		mavlink.KindRCChannelsRaw:  update(v, telemetry.ApplyRCChannelsRaw),
		mavlink.KindServoOutputRaw: update(v, telemetry.ApplyServoOutputRaw),
		mavlink.KindCameraFeedback: update(v, telemetry.ApplyCameraFeedback),
		mavlink.KindMountStatus:    update(v, telemetry.ApplyMountStatus),
		mavlink.KindSysStatus: update(v, func(s *telemetry.Snapshot, m *mavlink.SysStatus) []core.Event {
			return telemetry.ApplySysStatus(s, m, v.params)
		}),
		mavlink.KindAttitude:          update(v, telemetry.ApplyAttitude),
		mavlink.KindGlobalPositionInt: update(v, telemetry.ApplyGlobalPositionInt),
		mavlink.KindGPSRawInt:         update(v, telemetry.ApplyGPSRawInt),
		mavlink.KindHomePosition:      update(v, telemetry.ApplyHomePosition),
	}
}

// acceptedComponent reports whether messages from the component reach the
// router: the autopilot itself, the ground radio peer and the telemetry radio.
func acceptedComponent(id uint8) bool {
	switch id {
	case mavlink.ComponentAutopilot, mavlink.ComponentGroundPeer, mavlink.ComponentTelemetryRadio:
		return true
	default:
		return false
	}
}

// Route offers msg to the claiming collaborators and, when none claims it,
// to the handler registered for its kind.
func (v *Vehicle) Route(msg *mavlink.Message) {
	if msg == nil {
		return
	}
	kind := msg.Kind().String()

	if !acceptedComponent(msg.ComponentID) {
		metrics.MessagesRouted.WithLabelValues(kind, resultDropped).Inc()
		return
	}

	for _, c := range v.claimers {
		if c.ProcessMessage(msg) {
			metrics.MessagesRouted.WithLabelValues(kind, resultClaimed).Inc()
			return
		}
	}

	h, ok := v.handlers[msg.Kind()]
	if !ok {
		metrics.MessagesRouted.WithLabelValues(kind, resultIgnored).Inc()
		return
	}
	h(msg)
	metrics.MessagesRouted.WithLabelValues(kind, resultHandled).Inc()
}

func (v *Vehicle) publish(events []core.Event) {
	for _, ev := range events {
		v.notifier.NotifyEvent(ev)
	}
}

// handleHeartbeat drives the state machine from the autopilot heartbeat.
// Heartbeats of the radios only prove the link is alive.
func (v *Vehicle) handleHeartbeat(msg *mavlink.Message, hb *mavlink.Heartbeat) {
	if msg.ComponentID != mavlink.ComponentAutopilot {
		return
	}

	id := msg.Identity()
	if !v.targetKnown || id != v.target {
		v.target, v.targetKnown = id, true
		v.logger.Info("Autopilot discovered", "system", id.SystemID, "component", id.ComponentID)
		v.notifier.NotifyEvent(core.Event{Type: core.EventConnected, Data: id})
	}
	v.machine.HandleHeartbeat(hb)
}

func (v *Vehicle) handleStatusText(_ *mavlink.Message, st *mavlink.StatusText) {
	v.classifier.Classify(st)
}

func (v *Vehicle) handleNamedValue(_ *mavlink.Message, nv *mavlink.NamedValueInt) {
	v.machine.HandleNamedValue(nv)
}
