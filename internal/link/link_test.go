package link

import (
	"errors"
	"testing"
	"time"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/ardupilotmega"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/gcslink/internal/autopilot/autopilottest"
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

type fakeWriter struct {
	err     error
	written []message.Message
}

func (w *fakeWriter) WriteMessageAll(m message.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, m)
	return nil
}

type fixture struct {
	link  *Link
	w     *fakeWriter
	clock *testingclock.FakeClock
	order []string
}

func newFixture() *fixture {
	f := &fixture{
		w:     &fakeWriter{},
		clock: testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	f.link = newLink(f.w, f.clock, core.Immediate, 3*time.Second, nil)
	return f
}

func (f *fixture) deliver(msg *mavlink.Message) {
	f.order = append(f.order, "deliver:"+msg.Kind().String())
}

func (f *fixture) reply(m message.Message) {
	f.link.handleMessage(1, 1, m, f.deliver)
}

// orderListener records resolutions into the fixture order.
func (f *fixture) listener(l *autopilottest.Listener) core.Listener {
	return core.ListenerFuncs{
		Success: func() { f.order = append(f.order, "success"); l.OnSuccess() },
		Error:   func(code core.ErrorCode) { f.order = append(f.order, "error"); l.OnError(code) },
		Timeout: func() { f.order = append(f.order, "timeout"); l.OnTimeout() },
	}
}

func armCommand() *mavlink.CommandLong {
	return &mavlink.CommandLong{
		TargetSystem:    1,
		TargetComponent: 1,
		Command:         mavlink.CmdComponentArmDisarm,
		Params:          [7]float32{1},
	}
}

func ack(cmd mavlink.Cmd, result mavlink.Result) *ardupilotmega.MessageCommandAck {
	return &ardupilotmega.MessageCommandAck{
		Command: common.MAV_CMD(cmd),
		Result:  ardupilotmega.MAV_RESULT(result),
	}
}

func TestCommandAcknowledged(t *testing.T) {
	f := newFixture()
	l := &autopilottest.Listener{}

	f.link.Send(armCommand(), f.listener(l))
	require.Len(t, f.w.written, 1)
	assert.Equal(t, 1, f.link.tracker.count())
	assert.Zero(t, l.Resolutions())

	f.reply(ack(mavlink.CmdComponentArmDisarm, mavlink.ResultAccepted))

	assert.Equal(t, 1, l.Successes)
	assert.Equal(t, []string{"deliver:COMMAND_ACK", "success"}, f.order)
	assert.Zero(t, f.link.tracker.count())

	f.clock.Step(time.Minute)
	assert.Equal(t, 1, l.Resolutions())
}

func TestCommandRejected(t *testing.T) {
	f := newFixture()
	l := &autopilottest.Listener{}

	f.link.Send(armCommand(), l)
	f.reply(ack(mavlink.CmdDoSetHome, mavlink.ResultAccepted))
	assert.Zero(t, l.Resolutions())

	f.reply(ack(mavlink.CmdComponentArmDisarm, mavlink.ResultDenied))
	assert.Equal(t, []core.ErrorCode{core.ErrDenied}, l.Errors)
}

func TestCommandTimeout(t *testing.T) {
	f := newFixture()
	l := &autopilottest.Listener{}

	f.link.Send(armCommand(), l)
	f.clock.Step(2 * time.Second)
	assert.Zero(t, l.Resolutions())

	f.clock.Step(2 * time.Second)
	assert.Equal(t, 1, l.Timeouts)

	f.reply(ack(mavlink.CmdComponentArmDisarm, mavlink.ResultAccepted))
	assert.Equal(t, 1, l.Resolutions())
}

func TestCommandInProgressExtendsTimeout(t *testing.T) {
	f := newFixture()
	l := &autopilottest.Listener{}

	f.link.Send(armCommand(), l)
	f.clock.Step(2 * time.Second)
	f.reply(ack(mavlink.CmdComponentArmDisarm, mavlink.ResultInProgress))
	f.clock.Step(2 * time.Second)
	assert.Zero(t, l.Resolutions())

	f.reply(ack(mavlink.CmdComponentArmDisarm, mavlink.ResultAccepted))
	assert.Equal(t, 1, l.Successes)
}

func TestRepliesCompleteOldestFirst(t *testing.T) {
	f := newFixture()
	first, second := &autopilottest.Listener{}, &autopilottest.Listener{}

	f.link.Send(armCommand(), first)
	f.link.Send(armCommand(), second)
	f.reply(ack(mavlink.CmdComponentArmDisarm, mavlink.ResultFailed))

	assert.Equal(t, []core.ErrorCode{core.ErrFailed}, first.Errors)
	assert.Zero(t, second.Resolutions())
}

func TestRepliesMatchedToTargetSystem(t *testing.T) {
	f := newFixture()
	toOne, toSeven := &autopilottest.Listener{}, &autopilottest.Listener{}

	f.link.Send(armCommand(), toOne)
	other := armCommand()
	other.TargetSystem = 7
	f.link.Send(other, toSeven)

	f.link.handleMessage(7, 1, ack(mavlink.CmdComponentArmDisarm, mavlink.ResultDenied), f.deliver)
	assert.Zero(t, toOne.Resolutions())
	assert.Equal(t, []core.ErrorCode{core.ErrDenied}, toSeven.Errors)

	f.link.handleMessage(9, 1, ack(mavlink.CmdComponentArmDisarm, mavlink.ResultAccepted), f.deliver)
	f.link.handleMessage(1, 190, ack(mavlink.CmdComponentArmDisarm, mavlink.ResultAccepted), f.deliver)
	assert.Zero(t, toOne.Resolutions())

	f.reply(ack(mavlink.CmdComponentArmDisarm, mavlink.ResultAccepted))
	assert.Equal(t, 1, toOne.Successes)
	assert.Zero(t, f.link.tracker.count())
}

func TestParamEchoFromOtherSystemIgnored(t *testing.T) {
	f := newFixture()
	l := &autopilottest.Listener{}

	f.link.Send(&mavlink.ParamSet{TargetSystem: 1, ParamID: "MNT_MODE", Value: 2, Type: 9}, l)
	f.link.handleMessage(2, 1, &ardupilotmega.MessageParamValue{ParamId: "MNT_MODE", ParamValue: 2}, f.deliver)
	assert.Zero(t, l.Resolutions())

	f.reply(&ardupilotmega.MessageParamValue{ParamId: "MNT_MODE", ParamValue: 2})
	assert.Equal(t, 1, l.Successes)
}

func TestParamSetCompletedByEcho(t *testing.T) {
	f := newFixture()
	l := &autopilottest.Listener{}

	f.link.Send(&mavlink.ParamSet{TargetSystem: 1, ParamID: "MNT_MODE", Value: 2, Type: 9}, l)
	f.reply(&ardupilotmega.MessageParamValue{ParamId: "RTL_ALT", ParamValue: 1500})
	assert.Zero(t, l.Resolutions())

	f.reply(&ardupilotmega.MessageParamValue{ParamId: "MNT_MODE", ParamValue: 2})
	assert.Equal(t, 1, l.Successes)

	require.Len(t, f.w.written, 1)
	set := f.w.written[0].(*ardupilotmega.MessageParamSet)
	assert.Equal(t, "MNT_MODE", set.ParamId)
	assert.Equal(t, float32(2), set.ParamValue)
}

func TestUntrackedMessageSucceedsAfterWrite(t *testing.T) {
	f := newFixture()
	l := &autopilottest.Listener{}

	f.link.Send(&mavlink.MountConfigure{TargetSystem: 1, Mode: mavlink.MountModeRCTargeting}, l)

	assert.Equal(t, 1, l.Successes)
	assert.Zero(t, f.link.tracker.count())
}

func TestCommandWithoutListenerIsNotTracked(t *testing.T) {
	f := newFixture()

	f.link.Send(armCommand(), nil)

	assert.Len(t, f.w.written, 1)
	assert.Zero(t, f.link.tracker.count())
}

func TestSendFailures(t *testing.T) {
	t.Run("write error", func(t *testing.T) {
		f := newFixture()
		f.w.err = errors.New("broken pipe")
		l := &autopilottest.Listener{}

		f.link.Send(armCommand(), l)

		assert.Equal(t, []core.ErrorCode{core.ErrCommandFailed}, l.Errors)
		assert.Zero(t, f.link.tracker.count())
		f.clock.Step(time.Minute)
		assert.Equal(t, 1, l.Resolutions())
	})

	t.Run("not encodable", func(t *testing.T) {
		f := newFixture()
		l := &autopilottest.Listener{}

		f.link.Send(&mavlink.Heartbeat{}, l)

		assert.Equal(t, []core.ErrorCode{core.ErrCommandFailed}, l.Errors)
		assert.Empty(t, f.w.written)
	})

	t.Run("closed", func(t *testing.T) {
		f := newFixture()
		f.link.Close()
		l := &autopilottest.Listener{}

		f.link.Send(armCommand(), l)

		assert.Equal(t, []core.ErrorCode{core.ErrCommandFailed}, l.Errors)
		assert.Empty(t, f.w.written)
	})
}

func TestUnusedMessagesAreNotDelivered(t *testing.T) {
	f := newFixture()

	f.reply(&ardupilotmega.MessageSystemTime{})

	assert.Empty(t, f.order)
}
