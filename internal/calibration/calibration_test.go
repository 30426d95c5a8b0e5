package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/gcslink/internal/autopilot/autopilottest"
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

func newCalibrator() (*Calibrator, *autopilottest.Transport, *autopilottest.Recorder) {
	transport := &autopilottest.Transport{Resolve: autopilottest.Succeed}
	rec := &autopilottest.Recorder{}
	target := func() mavlink.Identity { return mavlink.Identity{SystemID: 3, ComponentID: 1} }
	return New(target, transport, rec, nil), transport, rec
}

func text(s string) *mavlink.Message {
	return &mavlink.Message{SystemID: 3, ComponentID: 1, Payload: &mavlink.StatusText{Severity: mavlink.SeverityHigh, Text: s}}
}

func TestIMUCalibration(t *testing.T) {
	c, transport, rec := newCalibrator()

	assert.False(t, c.ProcessMessage(text("Place vehicle level and press any key.")))

	l := &autopilottest.Listener{}
	c.StartIMU(l)
	require.Equal(t, 1, l.Successes)
	require.True(t, c.IMUActive())
	cmd := transport.Commands()[0]
	assert.Equal(t, mavlink.CmdPreflightCalibration, cmd.Command)
	assert.Equal(t, [7]float32{0, 0, 0, 0, 1}, cmd.Params)

	assert.True(t, c.ProcessMessage(text("Place vehicle level and press any key.")))
	assert.False(t, c.ProcessMessage(text("EKF2 IMU0 tilt alignment complete")))

	c.AckIMU(0, nil)
	assert.Equal(t, &mavlink.CommandAck{Command: 0, Result: 1}, transport.Last())

	assert.True(t, c.ProcessMessage(text("Calibration successful")))
	assert.False(t, c.IMUActive())

	events := rec.EventsOf(core.EventCalibrationIMU)
	require.Len(t, events, 2)
	assert.Equal(t, IMUProgress{Message: "Calibration successful", Done: true, Success: true}, events[1].Data)
}

func TestIMUCalibrationRejected(t *testing.T) {
	c, transport, _ := newCalibrator()
	transport.Resolve = autopilottest.Fail(core.ErrTemporarilyRejected)
	l := &autopilottest.Listener{}

	c.StartIMU(l)

	assert.Equal(t, []core.ErrorCode{core.ErrTemporarilyRejected}, l.Errors)
	assert.False(t, c.IMUActive())
}

func TestMagCalibration(t *testing.T) {
	c, transport, rec := newCalibrator()

	c.StartMag(false, true, 2, nil)
	assert.True(t, c.MagActive())
	cmd := transport.Commands()[0]
	assert.Equal(t, mavlink.CmdDoStartMagCal, cmd.Command)
	assert.Equal(t, [7]float32{0, 0, 1, 2}, cmd.Params)

	assert.True(t, c.ProcessMessage(&mavlink.Message{Payload: &mavlink.MagCalProgress{CompassID: 0, CompletionPct: 42}}))
	assert.True(t, c.ProcessMessage(&mavlink.Message{Payload: &mavlink.MagCalReport{Autosaved: 1, Fitness: 8.5, OfsX: 10}}))
	assert.False(t, c.MagActive())

	events := rec.EventsOf(core.EventCalibrationMag)
	require.Len(t, events, 2)
	assert.Equal(t, uint8(42), events[0].Data.(MagProgress).CompletionPct)
	report := events[1].Data.(MagProgress)
	assert.True(t, report.Report)
	assert.Equal(t, [3]float32{10, 0, 0}, report.Offsets)

	c.StartMag(true, false, 0, nil)
	c.CancelMag(nil)
	c.AcceptMag(nil)
	assert.Equal(t, []mavlink.Cmd{
		mavlink.CmdDoStartMagCal, mavlink.CmdDoStartMagCal, mavlink.CmdDoCancelMagCal, mavlink.CmdDoAcceptMagCal,
	}, transport.CommandIDs())
	assert.False(t, c.MagActive())
}
