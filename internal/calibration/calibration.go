// Package calibration issues the IMU and compass calibration commands and
// reports the progress the autopilot sends back. The step sequencing itself
// is driven by the operator.
package calibration

import (
	"strings"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/pkg/log"
)

// imuAckResult is the COMMAND_ACK result ArduPilot expects when the operator
// confirms an accelerometer calibration position.
const imuAckResult = mavlink.Result(1)

// IMUProgress is published for every calibration message of the autopilot.
type IMUProgress struct {
	Message string `json:"message"`
	Done    bool   `json:"done"`
	Success bool   `json:"success"`
}

// MagProgress is published for compass calibration progress and reports.
type MagProgress struct {
	CompassID     uint8      `json:"compassId"`
	Status        uint8      `json:"status"`
	Attempt       uint8      `json:"attempt,omitempty"`
	CompletionPct uint8      `json:"completionPct"`
	Report        bool       `json:"report"`
	Autosaved     bool       `json:"autosaved,omitempty"`
	Fitness       float32    `json:"fitness,omitempty"`
	Offsets       [3]float32 `json:"offsets"`
}

// Calibrator implements core.Calibrator and core.MagCalibrator. It is not
// safe for concurrent use.
type Calibrator struct {
	target    func() mavlink.Identity
	transport core.Transport
	notifier  core.Notifier
	logger    log.Logger

	imuActive bool
	magActive bool
}

var (
	_ core.Calibrator    = (*Calibrator)(nil)
	_ core.MagCalibrator = (*Calibrator)(nil)
)

func New(target func() mavlink.Identity, transport core.Transport, notifier core.Notifier, logger log.Logger) *Calibrator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Calibrator{
		target:    target,
		transport: transport,
		notifier:  notifier,
		logger:    logger.WithName("calibration"),
	}
}

func (c *Calibrator) command(cmd mavlink.Cmd, l core.Listener, params ...float32) {
	t := c.target()
	msg := &mavlink.CommandLong{
		TargetSystem:    t.SystemID,
		TargetComponent: t.ComponentID,
		Command:         cmd,
	}
	copy(msg.Params[:], params)
	c.transport.Send(msg, l)
}

// IMUActive reports whether an accelerometer calibration is running.
func (c *Calibrator) IMUActive() bool { return c.imuActive }

// MagActive reports whether a compass calibration is running.
func (c *Calibrator) MagActive() bool { return c.magActive }

// StartIMU starts the accelerometer calibration. The autopilot then asks for
// each position through status texts.
func (c *Calibrator) StartIMU(l core.Listener) {
	l = core.Guard(l)
	c.command(mavlink.CmdPreflightCalibration, core.ListenerFuncs{
		Success: func() {
			c.imuActive = true
			l.OnSuccess()
		},
		Error:   l.OnError,
		Timeout: l.OnTimeout,
	}, 0, 0, 0, 0, 1)
}

// AckIMU confirms that the vehicle is in the position of the given step.
func (c *Calibrator) AckIMU(step int, l core.Listener) {
	c.transport.Send(&mavlink.CommandAck{
		Command: mavlink.Cmd(step),
		Result:  imuAckResult,
	}, l)
}

// StartMag starts the onboard compass calibration of every compass.
func (c *Calibrator) StartMag(retryOnFailure, saveAutomatically bool, startDelay int, l core.Listener) {
	l = core.Guard(l)
	c.command(mavlink.CmdDoStartMagCal, core.ListenerFuncs{
		Success: func() {
			c.magActive = true
			l.OnSuccess()
		},
		Error:   l.OnError,
		Timeout: l.OnTimeout,
	}, 0, flag(retryOnFailure), flag(saveAutomatically), float32(startDelay))
}

func (c *Calibrator) CancelMag(l core.Listener) {
	c.magActive = false
	c.command(mavlink.CmdDoCancelMagCal, l)
}

func (c *Calibrator) AcceptMag(l core.Listener) {
	c.magActive = false
	c.command(mavlink.CmdDoAcceptMagCal, l)
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// ProcessMessage claims compass calibration messages, and status texts while
// an accelerometer calibration is running.
func (c *Calibrator) ProcessMessage(msg *mavlink.Message) bool {
	switch m := msg.Payload.(type) {
	case *mavlink.MagCalProgress:
		c.notify(core.EventCalibrationMag, MagProgress{
			CompassID:     m.CompassID,
			Status:        m.CalStatus,
			Attempt:       m.Attempt,
			CompletionPct: m.CompletionPct,
		})
		return true
	case *mavlink.MagCalReport:
		c.notify(core.EventCalibrationMag, MagProgress{
			CompassID:     m.CompassID,
			Status:        m.CalStatus,
			CompletionPct: 100,
			Report:        true,
			Autosaved:     m.Autosaved != 0,
			Fitness:       m.Fitness,
			Offsets:       [3]float32{m.OfsX, m.OfsY, m.OfsZ},
		})
		if m.Autosaved != 0 {
			c.magActive = false
		}
		return true
	case *mavlink.StatusText:
		if !c.imuActive {
			return false
		}
		return c.imuMessage(m.Text)
	default:
		return false
	}
}

func (c *Calibrator) imuMessage(text string) bool {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "calibration successful"):
		c.imuActive = false
		c.notify(core.EventCalibrationIMU, IMUProgress{Message: text, Done: true, Success: true})
	case strings.Contains(lower, "calibration failed"):
		c.imuActive = false
		c.notify(core.EventCalibrationIMU, IMUProgress{Message: text, Done: true})
	case strings.HasPrefix(lower, "place vehicle"):
		c.notify(core.EventCalibrationIMU, IMUProgress{Message: text})
	default:
		return false
	}
	c.logger.Debug("IMU calibration", "message", text)
	return true
}

func (c *Calibrator) notify(t core.EventType, data any) {
	c.notifier.NotifyEvent(core.Event{Type: t, Data: data})
}
