// Package ardupilot is the ArduPilot family of autopilots: it routes inbound
// messages into the shared state machine and telemetry snapshot and executes
// operator actions through the shared dispatcher.
package ardupilot

import (
	"k8s.io/utils/clock"

	"github.com/autopeer-io/gcslink/internal/autopilot"
	"github.com/autopeer-io/gcslink/internal/autopilot/action"
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/internal/autopilot/state"
	"github.com/autopeer-io/gcslink/internal/autopilot/statustext"
	"github.com/autopeer-io/gcslink/internal/autopilot/telemetry"
	"github.com/autopeer-io/gcslink/pkg/log"
)

// Config holds the collaborators of a Vehicle. Transport and Notifier are
// required; every other collaborator is optional.
type Config struct {
	State    state.Config
	Clock    clock.PassiveClock
	Executor core.Executor
	Logger   log.Logger

	Transport     core.Transport
	Notifier      core.Notifier
	Params        core.ParameterStore
	Missions      core.MissionSync
	Calibrator    core.Calibrator
	MagCalibrator core.MagCalibrator

	// ErrorParser claims structured autopilot errors from status texts. When
	// nil the default ArduPilot parser is used, storing the error on the
	// state machine.
	ErrorParser core.ErrorParser
}

// Vehicle is an ArduPilot vehicle. It is not safe for concurrent use.
type Vehicle struct {
	logger   log.Logger
	notifier core.Notifier
	params   core.ParameterStore

	target      mavlink.Identity
	targetKnown bool

	machine    *state.Machine
	snapshot   *telemetry.Snapshot
	classifier *statustext.Classifier
	dispatcher *action.Dispatcher

	claimers []core.MessageProcessor
	handlers map[mavlink.Kind]handler
}

var (
	_ autopilot.Drone = (*Vehicle)(nil)
	_ action.Vehicle  = (*Vehicle)(nil)
)

func New(cfg Config) *Vehicle {
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.Executor == nil {
		cfg.Executor = core.Immediate
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}

	v := &Vehicle{
		logger:   cfg.Logger.WithName("ardupilot"),
		notifier: cfg.Notifier,
		params:   cfg.Params,
		target: mavlink.Identity{
			SystemID:    1,
			ComponentID: mavlink.ComponentAutopilot,
		},
		snapshot: telemetry.NewSnapshot(),
	}
	v.machine = state.NewMachine(cfg.State, cfg.Clock, cfg.Notifier, cfg.Logger)

	parser := cfg.ErrorParser
	if parser == nil {
		parser = statustext.NewErrorParser(v.machine.SetAutopilotError)
	}
	v.classifier = statustext.NewClassifier(v.machine, parser, cfg.Notifier)

	v.dispatcher = action.NewDispatcher(v, action.Deps{
		Executor:      cfg.Executor,
		Transport:     cfg.Transport,
		Params:        cfg.Params,
		Missions:      cfg.Missions,
		Calibrator:    cfg.Calibrator,
		MagCalibrator: cfg.MagCalibrator,
		Fallback:      action.NewGeneric(v, cfg.Transport, cfg.Executor),
		Logger:        cfg.Logger,
	})

	v.claimers = claimers(cfg)
	v.handlers = v.routes()
	return v
}

// claimers returns the message-claiming collaborators in the order they are
// offered a message: parameters, then waypoints, then calibration.
func claimers(cfg Config) []core.MessageProcessor {
	var out []core.MessageProcessor
	if cfg.Params != nil {
		out = append(out, cfg.Params)
	}
	if cfg.Missions != nil {
		out = append(out, cfg.Missions)
	}
	if cfg.Calibrator != nil {
		out = append(out, cfg.Calibrator)
	}
	if cfg.MagCalibrator != nil && core.MessageProcessor(cfg.MagCalibrator) != core.MessageProcessor(cfg.Calibrator) {
		out = append(out, cfg.MagCalibrator)
	}
	return out
}

// Execute starts a. See action.Dispatcher.Execute.
func (v *Vehicle) Execute(a action.Action, l core.Listener) bool {
	return v.dispatcher.Execute(a, l)
}

// CheckHeartbeat runs the heartbeat watchdog.
func (v *Vehicle) CheckHeartbeat() { v.machine.CheckHeartbeat() }

// Target returns the command target, learnt from the autopilot heartbeat.
func (v *Vehicle) Target() mavlink.Identity { return v.target }

// Connected reports whether an autopilot heartbeat was ever received.
func (v *Vehicle) Connected() bool { return v.targetKnown }

func (v *Vehicle) Family() state.Family   { return v.machine.Family() }
func (v *Vehicle) Mode() state.FlightMode { return v.machine.Mode() }
func (v *Vehicle) Armed() bool            { return v.machine.Armed() }
func (v *Vehicle) Status() state.Status   { return v.machine.Status() }

// Mission returns the mission last set by an operator.
func (v *Vehicle) Mission() []core.MissionItem { return v.dispatcher.Mission() }

// Telemetry returns a copy of the telemetry snapshot.
func (v *Vehicle) Telemetry() telemetry.Snapshot {
	s := *v.snapshot
	if s.Battery.Discharge != nil {
		d := *s.Battery.Discharge
		s.Battery.Discharge = &d
	}
	return s
}
