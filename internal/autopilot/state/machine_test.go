package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/autopeer-io/gcslink/internal/autopilot/autopilottest"
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/pkg/log"
)

func newTestMachine(cfg Config) (*Machine, *autopilottest.Recorder, *testingclock.FakeClock) {
	rec := &autopilottest.Recorder{}
	clk := testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewMachine(cfg, clk, rec, log.NewNopLogger()), rec, clk
}

func heartbeat(status mavlink.SystemStatus, baseMode uint8, mode uint32) *mavlink.Heartbeat {
	return &mavlink.Heartbeat{
		Type:         mavlink.TypeQuadrotor,
		BaseMode:     baseMode,
		CustomMode:   mode,
		SystemStatus: status,
	}
}

func TestFlyingHysteresis(t *testing.T) {
	tests := []struct {
		name     string
		statuses []mavlink.SystemStatus
		want     []bool
	}{
		{
			name:     "critical before takeoff does not fly",
			statuses: []mavlink.SystemStatus{mavlink.StateStandby, mavlink.StateCritical, mavlink.StateEmergency},
			want:     []bool{false, false, false},
		},
		{
			name: "failsafe keeps flying",
			statuses: []mavlink.SystemStatus{
				mavlink.StateActive, mavlink.StateCritical, mavlink.StateEmergency,
				mavlink.StateCritical, mavlink.StateActive, mavlink.StateEmergency,
			},
			want: []bool{true, true, true, true, true, true},
		},
		{
			name:     "standby clears",
			statuses: []mavlink.SystemStatus{mavlink.StateActive, mavlink.StateEmergency, mavlink.StateStandby, mavlink.StateCritical},
			want:     []bool{true, true, false, false},
		},
		{
			name:     "poweroff clears",
			statuses: []mavlink.SystemStatus{mavlink.StateActive, mavlink.StatePoweroff},
			want:     []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newTestMachine(DefaultConfig())
			for i, s := range tt.statuses {
				m.HandleHeartbeat(heartbeat(s, 0, 0))
				assert.Equal(t, tt.want[i], m.Flying(), "after heartbeat %d (%s)", i, s)
			}
		})
	}
}

func TestArmedMirrorsBaseMode(t *testing.T) {
	m, rec, _ := newTestMachine(DefaultConfig())

	bits := []uint8{
		mavlink.ModeFlagSafetyArmed,
		mavlink.ModeFlagSafetyArmed | mavlink.ModeFlagCustomModeEnabled,
		mavlink.ModeFlagCustomModeEnabled,
		0,
		mavlink.ModeFlagSafetyArmed,
	}
	for _, b := range bits {
		m.HandleHeartbeat(heartbeat(mavlink.StateStandby, b, 0))
		assert.Equal(t, b&mavlink.ModeFlagSafetyArmed != 0, m.Armed())
	}

	events := rec.EventsOf(core.EventArming)
	require.Len(t, events, 3)
	assert.Equal(t, []any{true, false, true}, []any{events[0].Data, events[1].Data, events[2].Data})
}

func TestFailsafeRepeatsWarning(t *testing.T) {
	m, rec, clk := newTestMachine(Config{FailsafeWarningInterval: 5 * time.Second})

	m.HandleHeartbeat(heartbeat(mavlink.StateActive, 0, 0))
	m.HandleHeartbeat(heartbeat(mavlink.StateCritical, 0, 0))
	assert.True(t, m.Failsafe())
	assert.Len(t, rec.Logs(), 1)

	clk.Step(time.Second)
	m.HandleHeartbeat(heartbeat(mavlink.StateCritical, 0, 0))
	assert.Len(t, rec.Logs(), 1)

	m.SetAutopilotError("Battery failsafe")
	clk.Step(5 * time.Second)
	m.HandleHeartbeat(heartbeat(mavlink.StateEmergency, 0, 0))
	logs := rec.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, core.LogError, logs[1].Level)
	assert.Equal(t, "Battery failsafe", logs[1].Text)

	m.HandleHeartbeat(heartbeat(mavlink.StateStandby, 0, 0))
	assert.False(t, m.Failsafe())
	assert.Equal(t, 2, rec.Count(core.EventFailsafe))
}

func TestModePublishedOnEveryHeartbeat(t *testing.T) {
	m, rec, _ := newTestMachine(DefaultConfig())

	m.HandleHeartbeat(heartbeat(mavlink.StateStandby, 0, 5))
	m.HandleHeartbeat(heartbeat(mavlink.StateStandby, 0, 5))
	m.HandleHeartbeat(heartbeat(mavlink.StateStandby, 0, 6))
	m.HandleHeartbeat(heartbeat(mavlink.StateStandby, 0, 99))

	assert.Equal(t, FlightMode{Number: 99, Name: "Unknown", Family: FamilyCopter}, m.Mode())
	events := rec.EventsOf(core.EventMode)
	require.Len(t, events, 4)
	assert.Equal(t, "Loiter", events[0].Data.(FlightMode).Name)
	assert.Equal(t, "Loiter", events[1].Data.(FlightMode).Name)
	assert.Equal(t, "RTL", events[2].Data.(FlightMode).Name)
	assert.Equal(t, "Unknown", events[3].Data.(FlightMode).Name)
	assert.Equal(t, 1, rec.Count(core.EventVehicleType))
}

func TestStaleAutopilotErrorNotReusedForFailsafe(t *testing.T) {
	m, rec, clk := newTestMachine(DefaultConfig())

	m.HandleHeartbeat(heartbeat(mavlink.StateStandby, 0, 0))
	m.SetAutopilotError("PreArm: RC not calibrated")
	assert.Equal(t, "PreArm: RC not calibrated", m.Status().AutopilotError)

	clk.Step(2 * time.Hour)
	m.HandleHeartbeat(heartbeat(mavlink.StateActive, 0, 0))
	m.HandleHeartbeat(heartbeat(mavlink.StateCritical, 0, 0))

	logs := rec.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, core.LogError, logs[0].Level)
	assert.NotContains(t, logs[0].Text, "PreArm")
	assert.Contains(t, logs[0].Text, "Failsafe")
	assert.Empty(t, m.Status().AutopilotError)
}

func TestFreshAutopilotErrorUsedUntilFailsafeEnds(t *testing.T) {
	m, rec, clk := newTestMachine(DefaultConfig())

	m.HandleHeartbeat(heartbeat(mavlink.StateActive, 0, 0))
	m.SetAutopilotError("Battery failsafe")
	clk.Step(10 * time.Second)
	m.HandleHeartbeat(heartbeat(mavlink.StateCritical, 0, 0))

	logs := rec.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "Battery failsafe", logs[0].Text)

	m.HandleHeartbeat(heartbeat(mavlink.StateActive, 0, 0))
	assert.False(t, m.Failsafe())
	assert.Empty(t, m.Status().AutopilotError)

	m.HandleHeartbeat(heartbeat(mavlink.StateCritical, 0, 0))
	logs = rec.Logs()
	require.Len(t, logs, 2)
	assert.NotEqual(t, "Battery failsafe", logs[1].Text)
}

func TestHeartbeatWatchdog(t *testing.T) {
	m, rec, clk := newTestMachine(Config{HeartbeatTimeout: 3 * time.Second})

	m.CheckHeartbeat()
	assert.Zero(t, rec.Count(core.EventHeartbeatTimeout))

	m.HandleHeartbeat(heartbeat(mavlink.StateStandby, 0, 0))
	assert.Equal(t, 1, rec.Count(core.EventHeartbeatFirst))

	clk.Step(2 * time.Second)
	m.CheckHeartbeat()
	assert.Zero(t, rec.Count(core.EventHeartbeatTimeout))

	clk.Step(2 * time.Second)
	m.CheckHeartbeat()
	m.CheckHeartbeat()
	assert.Equal(t, 1, rec.Count(core.EventHeartbeatTimeout))
	assert.Equal(t, HeartbeatLost, m.Status().Heartbeat)

	m.HandleHeartbeat(heartbeat(mavlink.StateStandby, 0, 0))
	assert.Equal(t, 1, rec.Count(core.EventHeartbeatRestored))
	assert.Equal(t, 1, rec.Count(core.EventHeartbeatFirst))
}

func TestArmMaskReadiness(t *testing.T) {
	m, rec, _ := newTestMachine(DefaultConfig())
	m.HandleHeartbeat(heartbeat(mavlink.StateStandby, 0, 5)) // Loiter

	m.HandleNamedValue(&mavlink.NamedValueInt{Name: "ARMMASK", Value: 1 << 5})
	m.HandleNamedValue(&mavlink.NamedValueInt{Name: "ARMMASK", Value: 1 << 4})
	m.HandleNamedValue(&mavlink.NamedValueInt{Name: "OTHER", Value: 1 << 5})

	assert.Equal(t, []autopilottest.LogLine{
		{Level: core.LogInfo, Text: "READY TO ARM"},
		{Level: core.LogInfo, Text: "UNREADY FOR ARMING"},
	}, rec.Logs())
}

func TestArmMaskIgnoredForPlanes(t *testing.T) {
	m, rec, _ := newTestMachine(DefaultConfig())
	m.HandleHeartbeat(&mavlink.Heartbeat{Type: mavlink.TypeFixedWing, SystemStatus: mavlink.StateStandby})

	m.HandleNamedValue(&mavlink.NamedValueInt{Name: "ARMMASK", Value: -1})
	assert.Empty(t, rec.Logs())
}

func TestFlightTime(t *testing.T) {
	m, _, clk := newTestMachine(DefaultConfig())

	m.HandleHeartbeat(heartbeat(mavlink.StateActive, 0, 0))
	clk.Step(10 * time.Second)
	assert.Equal(t, 10*time.Second, m.FlightTime())

	m.HandleHeartbeat(heartbeat(mavlink.StateStandby, 0, 0))
	clk.Step(time.Minute)
	m.HandleHeartbeat(heartbeat(mavlink.StateActive, 0, 0))
	clk.Step(5 * time.Second)
	assert.Equal(t, 15*time.Second, m.FlightTime())
}

func TestFirmwareVersionNotifiesOnChange(t *testing.T) {
	m, rec, _ := newTestMachine(DefaultConfig())
	m.SetFirmwareVersion("ArduCopter V4.5.1")
	m.SetFirmwareVersion("ArduCopter V4.5.1")
	assert.Equal(t, 1, rec.Count(core.EventFirmware))
	assert.Equal(t, "ArduCopter V4.5.1", m.Status().FirmwareVersion)
}
