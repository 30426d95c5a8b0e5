// Package topic builds the MQTT topics shared by the agent and its operators.
package topic

import (
	"fmt"

	"github.com/autopeer-io/gcslink/internal/pkg/mqtt/paths"
)

// Builder constructs topic strings under one root namespace.
type Builder struct {
	// root is the base namespace for all topics (e.g. "gcs/v1").
	root string
}

// NewBuilder creates a Builder for the given root namespace.
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Build returns {root}/{segment}/{id}.
func (b *Builder) Build(segment, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, segment, id)
}

// Telemetry is where vehicle events are published.
func (b *Builder) Telemetry(vehicleID string) string { return b.Build(paths.Telemetry, vehicleID) }

// Log is where vehicle log lines are published.
func (b *Builder) Log(vehicleID string) string { return b.Build(paths.Log, vehicleID) }

// Command is where operators send actions to a vehicle.
func (b *Builder) Command(vehicleID string) string { return b.Build(paths.Command, vehicleID) }

// CommandAck is where the agent reports the outcome of each command.
func (b *Builder) CommandAck(vehicleID string) string { return b.Build(paths.CommandAck, vehicleID) }

// Online carries the retained online flag and the last will.
func (b *Builder) Online(vehicleID string) string { return b.Build(paths.Online, vehicleID) }

// All matches every vehicle for a segment, e.g. {root}/telemetry/+.
func (b *Builder) All(segment string) string { return b.Build(segment, Wildcard) }
