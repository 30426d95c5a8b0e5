// Package autopilot defines the capability interface implemented by each
// autopilot family. Families share the state machine, the telemetry update
// functions and the action dispatcher; they differ in how inbound messages
// are routed and which actions they accept.
package autopilot

import (
	"github.com/autopeer-io/gcslink/internal/autopilot/action"
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/internal/autopilot/state"
	"github.com/autopeer-io/gcslink/internal/autopilot/telemetry"
)

// Drone is one connected vehicle. All methods must be called from the
// vehicle's processing context.
type Drone interface {
	// Route offers an inbound message to the vehicle.
	Route(msg *mavlink.Message)
	// Execute starts an action and reports whether it was accepted. The
	// listener of an accepted action is resolved exactly once.
	Execute(a action.Action, l core.Listener) bool
	// CheckHeartbeat runs the heartbeat watchdog.
	CheckHeartbeat()

	Target() mavlink.Identity
	Status() state.Status
	Telemetry() telemetry.Snapshot
}
