package action

import (
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/internal/autopilot/state"
)

// SetModeCommand builds the DO_SET_MODE command selecting a custom mode.
func SetModeCommand(target mavlink.Identity, mode state.FlightMode) *mavlink.CommandLong {
	return &mavlink.CommandLong{
		TargetSystem:    target.SystemID,
		TargetComponent: target.ComponentID,
		Command:         mavlink.CmdDoSetMode,
		Params:          [7]float32{float32(mavlink.ModeFlagCustomModeEnabled), float32(mode.Number)},
	}
}

// Generic handles the actions every autopilot family shares. It is the
// fallback of family specific dispatchers.
type Generic struct {
	vehicle   Vehicle
	transport core.Transport
	exec      core.Executor
}

func NewGeneric(v Vehicle, transport core.Transport, exec core.Executor) *Generic {
	if exec == nil {
		exec = core.Immediate
	}
	return &Generic{vehicle: v, transport: transport, exec: exec}
}

func (g *Generic) Execute(a Action, l core.Listener) bool {
	switch a := a.(type) {
	case SetVehicleMode:
		mode, ok := state.ModeByName(g.vehicle.Family(), a.Mode)
		if !ok {
			l = core.Guard(l)
			g.exec.Post(func() { l.OnError(core.ErrUnsupported) })
			return true
		}
		g.transport.Send(SetModeCommand(g.vehicle.Target(), mode), l)
		return true
	default:
		return false
	}
}
