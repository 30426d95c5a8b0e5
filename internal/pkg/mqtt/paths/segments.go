// Package paths holds the topic segments of the gcslink MQTT protocol.
// Changing them breaks every operator talking to deployed agents.
package paths

// Downstream: operator -> agent.
const (
	// Command carries action envelopes.
	// Pattern: {root}/command/{vehicleID}
	Command = "command"
)

// Upstream: agent -> operator.
const (
	// Telemetry carries vehicle events.
	// Payload: { "type": "telemetry.altitude", "data": {...} }
	// Pattern: {root}/telemetry/{vehicleID}
	Telemetry = "telemetry"

	// Log carries vehicle log lines such as status texts.
	// Payload: { "level": "warn", "text": "..." }
	// Pattern: {root}/log/{vehicleID}
	Log = "log"

	// CommandAck carries the outcome of each command.
	// Pattern: {root}/command/ack/{vehicleID}
	CommandAck = "command/ack"

	// Online is the retained online flag, cleared by the last will.
	// Pattern: {root}/online/{vehicleID}
	Online = "online"
)
