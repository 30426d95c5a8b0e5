package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every collector of the agent and is served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// LinkConnected records whether the MAVLink node has an open channel.
	// 1 = open, 0 = closed.
	LinkConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gcslink_link_connected",
			Help: "Whether the MAVLink link has an open channel (1=open, 0=closed).",
		},
	)

	// HeartbeatHealthy is 1 while the autopilot heartbeat is being received.
	HeartbeatHealthy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gcslink_heartbeat_healthy",
			Help: "Whether the autopilot heartbeat is being received (1=ok, 0=lost or never seen).",
		},
	)

	// MessagesRouted counts inbound messages by kind and routing result.
	MessagesRouted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcslink_messages_routed_total",
			Help: "Total number of inbound MAVLink messages by routing result.",
		},
		[]string{"kind", "result"}, // result: dropped/claimed/handled/ignored
	)

	// CommandSentTotal counts outgoing records by outcome.
	CommandSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcslink_command_sent_total",
			Help: "Total number of MAVLink commands sent to the vehicle by outcome.",
		},
		[]string{"status", "type"}, // status: success/error/timeout
	)

	// CommandLatency records the time from sending a tracked record to its
	// acknowledgement.
	CommandLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gcslink_command_latency_seconds",
			Help:    "Latency between a tracked command and its acknowledgement.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	// ActionsTotal counts operator actions received over the bridge.
	ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcslink_actions_total",
			Help: "Total number of operator actions by name and result.",
		},
		[]string{"action", "result"}, // result: rejected/success/error/timeout
	)

	// PublishTotal counts outbound MQTT messages by topic kind and result.
	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcslink_mqtt_publish_total",
			Help: "Total number of outbound MQTT messages by kind and result.",
		},
		[]string{"kind", "result"}, // result: published/dropped/failed
	)

	// GeotagUploads counts archived camera geotags by result.
	GeotagUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcslink_geotag_uploads_total",
			Help: "Total number of geotag archive uploads by result.",
		},
		[]string{"result"}, // result: success/error/dropped
	)

	// EventClients is the number of connected websocket event subscribers.
	EventClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gcslink_event_clients",
			Help: "Number of connected websocket event subscribers.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		LinkConnected,
		HeartbeatHealthy,
		MessagesRouted,
		CommandSentTotal,
		CommandLatency,
		ActionsTotal,
		PublishTotal,
		GeotagUploads,
		EventClients,
	)
}

// BoolValue converts a boolean into a gauge value.
func BoolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
