package action

import (
	"sort"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/internal/autopilot/state"
	"github.com/autopeer-io/gcslink/pkg/log"
)

const (
	ParamWPNavSpeed   = "WPNAV_SPEED"
	ParamWPNavSpeedUp = "WPNAV_SPEED_UP"
	ParamWPNavSpeedDn = "WPNAV_SPEED_DN"
	ParamMountMode    = "MNT_MODE"

	// DefaultSpeed in m/s substitutes a speed parameter that is not cached yet.
	DefaultSpeed = 5.0
	// DefaultGuidedAltitude is used for guided points until a takeoff or an
	// explicit altitude sets one.
	DefaultGuidedAltitude = 10.0
	minGuidedAltitude     = 2.0

	modeAuto   = "Auto"
	modeGuided = "Guided"
)

// Vehicle is the view of the vehicle the dispatcher needs.
type Vehicle interface {
	Target() mavlink.Identity
	Family() state.Family
	Mode() state.FlightMode
	Armed() bool
}

// Handler executes actions and reports whether it accepted them.
type Handler interface {
	Execute(a Action, l core.Listener) bool
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(a Action, l core.Listener) bool

func (f HandlerFunc) Execute(a Action, l core.Listener) bool { return f(a, l) }

// Deps are the collaborators of a Dispatcher. Transport is required; a nil
// collaborator makes the actions that need it fail with ErrUnsupported.
type Deps struct {
	Executor      core.Executor
	Transport     core.Transport
	Params        core.ParameterStore
	Missions      core.MissionSync
	Calibrator    core.Calibrator
	MagCalibrator core.MagCalibrator
	Fallback      Handler
	Logger        log.Logger
}

type guidedPoint struct {
	lat, lon float64
	alt      float64
	set      bool
}

// Dispatcher maps actions onto MAVLink commands. It must be driven from the
// vehicle's processing context; outcomes are delivered there as well.
type Dispatcher struct {
	vehicle Vehicle
	deps    Deps
	logger  log.Logger

	guided  guidedPoint
	mission []core.MissionItem
}

func NewDispatcher(v Vehicle, deps Deps) *Dispatcher {
	if deps.Executor == nil {
		deps.Executor = core.Immediate
	}
	if deps.Logger == nil {
		deps.Logger = log.NewNopLogger()
	}
	return &Dispatcher{
		vehicle: v,
		deps:    deps,
		logger:  deps.Logger.WithName("dispatcher"),
		guided:  guidedPoint{alt: DefaultGuidedAltitude},
	}
}

// Execute starts a. It returns false only for actions neither the dispatcher
// nor the fallback handler accept; in that case l is never resolved.
func (d *Dispatcher) Execute(a Action, l core.Listener) bool {
	l = core.Guard(l)

	switch a := a.(type) {
	case LoadWaypoints:
		d.loadWaypoints(l)
	case SetMission:
		d.setMission(a, l)
	case StartMission:
		d.startMission(a, l)
	case Gripper:
		grip := float32(mavlink.GripperGrab)
		if a.Release {
			grip = mavlink.GripperRelease
		}
		d.command(mavlink.CmdDoGripper, l, 1, grip)
	case TriggerCamera:
		d.command(mavlink.CmdDoDigicamControl, l, 0, 0, 0, 0, 1)
	case SetROI:
		d.command(mavlink.CmdDoSetROI, l, 0, 0, 0, 0, float32(a.Lat), float32(a.Lon), float32(a.Alt))
	case SendMessage:
		if a.Payload == nil {
			d.fail(l, core.ErrCommandFailed)
			break
		}
		d.deps.Transport.Send(a.Payload, l)
	case SetRelay:
		on := float32(0)
		if a.On {
			on = 1
		}
		d.command(mavlink.CmdDoSetRelay, l, float32(a.Number), on)
	case SetServo:
		d.command(mavlink.CmdDoSetServo, l, float32(a.Channel), float32(a.PWM))
	case GuidedTakeoff:
		d.takeoff(a, l)
	case SendGuidedPoint:
		d.sendGuidedPoint(a, l)
	case SetGuidedAltitude:
		d.setGuidedAltitude(a, l)
	case SetVelocity:
		d.setVelocity(a, l)
	case RefreshParameters:
		if d.deps.Params == nil {
			d.fail(l, core.ErrUnsupported)
			break
		}
		d.deps.Params.Refresh(l)
	case WriteParameters:
		d.writeParameters(a, l)
	case Arm:
		d.arm(a, l)
	case SetVehicleHome:
		d.command(mavlink.CmdDoSetHome, core.Always(l, d.requestHome),
			0, 0, 0, 0, float32(a.Lat), float32(a.Lon), float32(a.Alt))
	case StartIMUCalibration:
		if d.deps.Calibrator == nil {
			d.fail(l, core.ErrUnsupported)
			break
		}
		d.deps.Calibrator.StartIMU(l)
	case IMUCalibrationAck:
		if d.deps.Calibrator == nil {
			d.fail(l, core.ErrUnsupported)
			break
		}
		d.deps.Calibrator.AckIMU(a.Step, l)
	case StartMagCalibration:
		if d.deps.MagCalibrator == nil {
			d.fail(l, core.ErrUnsupported)
			break
		}
		d.deps.MagCalibrator.StartMag(a.RetryOnFailure, a.SaveAutomatically, a.StartDelay, l)
	case CancelMagCalibration:
		if d.deps.MagCalibrator == nil {
			d.fail(l, core.ErrUnsupported)
			break
		}
		d.deps.MagCalibrator.CancelMag(l)
	case AcceptMagCalibration:
		if d.deps.MagCalibrator == nil {
			d.fail(l, core.ErrUnsupported)
			break
		}
		d.deps.MagCalibrator.AcceptMag(l)
	case SetGimbalOrientation:
		d.command(mavlink.CmdDoMountControl, l, float32(a.Pitch), float32(a.Roll), float32(a.Yaw),
			0, 0, 0, float32(mavlink.MountModeMavlinkTargeting))
	case SetGimbalMountMode:
		d.setMountMode(a.Mode, l)
	case ResetGimbalMountMode:
		d.setMountMode(mavlink.MountModeRCTargeting, l)
	default:
		if d.deps.Fallback == nil {
			return false
		}
		return d.deps.Fallback.Execute(a, l)
	}

	return true
}

// command sends a COMMAND_LONG to the vehicle target with the given
// parameters; missing trailing parameters are zero.
func (d *Dispatcher) command(cmd mavlink.Cmd, l core.Listener, params ...float32) {
	t := d.vehicle.Target()
	msg := &mavlink.CommandLong{
		TargetSystem:    t.SystemID,
		TargetComponent: t.ComponentID,
		Command:         cmd,
	}
	copy(msg.Params[:], params)
	d.deps.Transport.Send(msg, l)
}

func (d *Dispatcher) fail(l core.Listener, code core.ErrorCode) {
	d.deps.Executor.Post(func() { l.OnError(code) })
}

func (d *Dispatcher) succeed(l core.Listener) {
	d.deps.Executor.Post(l.OnSuccess)
}

func (d *Dispatcher) inMode(name string) bool {
	m := d.vehicle.Mode()
	return m.Known() && m.Name == name
}

// switchMode sends a mode change to the named mode.
func (d *Dispatcher) switchMode(name string, l core.Listener) {
	mode, ok := state.ModeByName(d.vehicle.Family(), name)
	if !ok {
		d.fail(l, core.ErrUnsupported)
		return
	}
	d.deps.Transport.Send(SetModeCommand(d.vehicle.Target(), mode), l)
}

func (d *Dispatcher) requestHome() {
	d.command(mavlink.CmdGetHomePosition, nil)
}

func (d *Dispatcher) loadWaypoints(l core.Listener) {
	if d.deps.Missions == nil {
		d.fail(l, core.ErrUnsupported)
		return
	}
	d.deps.Missions.Load(l)
}

func (d *Dispatcher) setMission(a SetMission, l core.Listener) {
	d.mission = append(d.mission[:0], a.Items...)
	if !a.PushToDrone {
		d.succeed(l)
		return
	}
	if d.deps.Missions == nil {
		d.fail(l, core.ErrUnsupported)
		return
	}
	d.deps.Missions.Upload(d.mission, l)
}

// startMission arms, switches to auto and starts the mission, skipping the
// steps the vehicle already satisfies.
func (d *Dispatcher) startMission(a StartMission, l core.Listener) {
	armed := d.vehicle.Armed()
	inAuto := d.inMode(modeAuto)
	if (!armed && !a.ForceArm) || (!inAuto && !a.ForceModeChange) {
		d.fail(l, core.ErrPrecondition)
		return
	}

	start := func(l core.Listener) {
		d.command(mavlink.CmdMissionStart, l)
	}
	toAuto := func(l core.Listener) {
		if inAuto {
			start(l)
			return
		}
		d.switchMode(modeAuto, core.Then(l, start))
	}

	if armed {
		toAuto(l)
		return
	}
	d.command(mavlink.CmdComponentArmDisarm, core.Then(l, toAuto), 1)
}

func (d *Dispatcher) takeoff(a GuidedTakeoff, l core.Listener) {
	if !d.vehicle.Armed() {
		d.fail(l, core.ErrPrecondition)
		return
	}
	d.guided.alt = max(a.Altitude, minGuidedAltitude)
	d.command(mavlink.CmdNavTakeoff, l, 0, 0, 0, 0, 0, 0, float32(a.Altitude))
}

func (d *Dispatcher) guidedItem() *mavlink.MissionItemInt {
	t := d.vehicle.Target()
	return &mavlink.MissionItemInt{
		TargetSystem:    t.SystemID,
		TargetComponent: t.ComponentID,
		Frame:           mavlink.FrameGlobalRelativeAltInt,
		Command:         mavlink.CmdNavWaypoint,
		Current:         2,
		Lat:             int32(d.guided.lat * 1e7),
		Lon:             int32(d.guided.lon * 1e7),
		Alt:             float32(d.guided.alt),
	}
}

func (d *Dispatcher) sendGuidedPoint(a SendGuidedPoint, l core.Listener) {
	inGuided := d.inMode(modeGuided)
	if !inGuided && !a.Force {
		d.fail(l, core.ErrPrecondition)
		return
	}

	d.guided.lat, d.guided.lon, d.guided.set = a.Lat, a.Lon, true
	send := func(l core.Listener) {
		d.deps.Transport.Send(d.guidedItem(), l)
	}
	if inGuided {
		send(l)
		return
	}
	d.switchMode(modeGuided, core.Then(l, send))
}

// setGuidedAltitude changes the altitude used for guided points and resends
// the active point, if any.
func (d *Dispatcher) setGuidedAltitude(a SetGuidedAltitude, l core.Listener) {
	d.guided.alt = max(a.Altitude, minGuidedAltitude)
	if d.guided.set && d.inMode(modeGuided) {
		d.deps.Transport.Send(d.guidedItem(), l)
		return
	}
	d.succeed(l)
}

// speedParam reads a speed parameter in cm/s and returns m/s, substituting
// DefaultSpeed when the parameter is not cached.
func (d *Dispatcher) speedParam(name string) float64 {
	if d.deps.Params != nil {
		if v, ok := d.deps.Params.Get(name); ok {
			return v / 100
		}
	}
	return DefaultSpeed
}

func (d *Dispatcher) setVelocity(a SetVelocity, l core.Listener) {
	horizontal := d.speedParam(ParamWPNavSpeed)
	verticalParam := ParamWPNavSpeedUp
	if a.Z < 0 {
		verticalParam = ParamWPNavSpeedDn
	}
	vertical := d.speedParam(verticalParam)

	t := d.vehicle.Target()
	d.deps.Transport.Send(&mavlink.SetPositionTarget{
		TargetSystem:    t.SystemID,
		TargetComponent: t.ComponentID,
		Vx:              float32(a.X * horizontal),
		Vy:              float32(a.Y * horizontal),
		Vz:              float32(a.Z * vertical),
	}, l)
}

// writeParameters writes the values one after the other in name order and
// stops at the first failure.
func (d *Dispatcher) writeParameters(a WriteParameters, l core.Listener) {
	if d.deps.Params == nil {
		d.fail(l, core.ErrUnsupported)
		return
	}

	names := make([]string, 0, len(a.Values))
	for name := range a.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	var step func(i int, l core.Listener)
	step = func(i int, l core.Listener) {
		if i == len(names) {
			l.OnSuccess()
			return
		}
		d.deps.Params.Write(names[i], a.Values[names[i]], core.Then(l, func(l core.Listener) {
			step(i+1, l)
		}))
	}
	step(0, l)
}

func (d *Dispatcher) arm(a Arm, l core.Listener) {
	var arm, force float32
	if a.Arm {
		arm = 1
	} else if a.EmergencyDisarm {
		force = mavlink.EmergencyDisarmMagic
	}
	d.command(mavlink.CmdComponentArmDisarm, l, arm, force)
}

// setMountMode prefers the MNT_MODE parameter when it is cached and falls
// back to a one-shot MOUNT_CONFIGURE otherwise.
func (d *Dispatcher) setMountMode(mode mavlink.MountMode, l core.Listener) {
	if d.deps.Params != nil {
		if _, ok := d.deps.Params.Get(ParamMountMode); ok {
			d.deps.Params.Write(ParamMountMode, float64(mode), l)
			return
		}
	}

	d.logger.Debug("MNT_MODE not cached, configuring mount directly", "mode", mode)
	t := d.vehicle.Target()
	d.deps.Transport.Send(&mavlink.MountConfigure{
		TargetSystem:    t.SystemID,
		TargetComponent: t.ComponentID,
		Mode:            mode,
	}, l)
}

// Mission returns the mission last set with SetMission.
func (d *Dispatcher) Mission() []core.MissionItem {
	return append([]core.MissionItem(nil), d.mission...)
}
