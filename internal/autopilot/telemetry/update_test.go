package telemetry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/gcslink/internal/autopilot/autopilottest"
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

func types(events []core.Event) []core.EventType {
	var out []core.EventType
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestVfrHudAltitudeFiresOnlyOnChange(t *testing.T) {
	s := NewSnapshot()

	got := ApplyVfrHud(s, &mavlink.VfrHud{Alt: 100})
	assert.Equal(t, []core.EventType{core.EventAltitude}, types(got))

	got = ApplyVfrHud(s, &mavlink.VfrHud{Alt: 100})
	assert.Empty(t, got)

	got = ApplyVfrHud(s, &mavlink.VfrHud{Alt: 101})
	require.Len(t, got, 1)
	assert.Equal(t, core.EventAltitude, got[0].Type)
	assert.Equal(t, 101.0, got[0].Data.(Altitude).Altitude)
}

func TestVfrHudSpeedGroup(t *testing.T) {
	s := NewSnapshot()

	got := ApplyVfrHud(s, &mavlink.VfrHud{Groundspeed: 3, Airspeed: 4, Climb: 1})
	assert.Equal(t, []core.EventType{core.EventSpeed}, types(got))

	got = ApplyVfrHud(s, &mavlink.VfrHud{Groundspeed: 3, Airspeed: 4, Climb: 1})
	assert.Empty(t, got)

	got = ApplyVfrHud(s, &mavlink.VfrHud{Alt: 12, Groundspeed: 3, Airspeed: 4, Climb: -1})
	assert.Equal(t, []core.EventType{core.EventAltitude, core.EventSpeed}, types(got))
	assert.Equal(t, Speed{Ground: 3, Air: 4, Vertical: -1}, s.Speed)
}

func TestNavControllerOutputAlwaysNotifies(t *testing.T) {
	s := NewSnapshot()
	ApplyVfrHud(s, &mavlink.VfrHud{Alt: 20})

	msg := &mavlink.NavControllerOutput{WpDist: 42, AltError: 5.5, AspdError: 1}
	for i := 0; i < 2; i++ {
		got := ApplyNavControllerOutput(s, msg)
		assert.Equal(t, []core.EventType{core.EventOrientation}, types(got))
	}
	assert.Equal(t, 25.5, s.Altitude.TargetAltitude)
	assert.Equal(t, 42.0, s.Navigation.WaypointDistance)
}

func TestBatteryDischarge(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]float64
		remain int8
		want   *float64
	}{
		{"known capacity", map[string]float64{BatteryCapacityParam: 5000}, 75, ptrTo(1250.0)},
		{"full battery", map[string]float64{BatteryCapacityParam: 5000}, 100, ptrTo(0.0)},
		{"unknown remaining", map[string]float64{BatteryCapacityParam: 5000}, -1, nil},
		{"missing capacity", nil, 75, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSnapshot()
			ApplySysStatus(s, &mavlink.SysStatus{VoltageBattery: 12600, CurrentBattery: 1500, BatteryRemaining: tt.remain},
				autopilottest.NewParams(tt.params))
			if diff := cmp.Diff(tt.want, s.Battery.Discharge); diff != "" {
				t.Errorf("discharge mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBatteryDischargeRecomputedOnlyWhenRemainChanges(t *testing.T) {
	s := NewSnapshot()
	params := autopilottest.NewParams(nil)

	ApplySysStatus(s, &mavlink.SysStatus{BatteryRemaining: 80}, params)
	assert.Nil(t, s.Battery.Discharge)

	params.Values[BatteryCapacityParam] = 1000
	got := ApplySysStatus(s, &mavlink.SysStatus{BatteryRemaining: 80}, params)
	assert.Nil(t, s.Battery.Discharge)
	assert.Empty(t, got)

	got = ApplySysStatus(s, &mavlink.SysStatus{BatteryRemaining: 50}, params)
	require.NotNil(t, s.Battery.Discharge)
	assert.Equal(t, 500.0, *s.Battery.Discharge)
	assert.Equal(t, []core.EventType{core.EventBattery}, types(got))
}

func TestMountStatusScalesCentidegrees(t *testing.T) {
	s := NewSnapshot()
	got := ApplyMountStatus(s, &mavlink.MountStatus{PointingA: -4500, PointingB: 150, PointingC: 9000})

	require.Len(t, got, 1)
	assert.Equal(t, core.EventGimbalOrientation, got[0].Type)
	assert.Equal(t, Gimbal{Pitch: -45, Roll: 1.5, Yaw: 90}, got[0].Data)
}

func TestRadioPassThrough(t *testing.T) {
	s := NewSnapshot()
	ApplyRadio(s, &mavlink.Radio{RxErrors: 1, Fixed: 2, RSSI: 3, RemRSSI: 4, TxBuf: 5, Noise: 6, RemNoise: 7})
	assert.Equal(t, Radio{RxErrors: 1, Fixed: 2, RSSI: 3, RemRSSI: 4, TxBuf: 5, Noise: 6, RemNoise: 7}, s.Radio)
}

func TestRCChannelsVerbatim(t *testing.T) {
	s := NewSnapshot()
	in := [8]uint16{1500, 1500, 1000, 1500, 1100, 1900, 0, 0}
	ApplyRCChannelsRaw(s, &mavlink.RCChannelsRaw{Channels: in})
	out := [16]uint16{1100, 1200}
	ApplyServoOutputRaw(s, &mavlink.ServoOutputRaw{Servos: out})

	assert.Equal(t, in, s.RC.In)
	assert.Equal(t, out, s.RC.Out)
}

func TestMissionProgress(t *testing.T) {
	s := NewSnapshot()
	assert.Len(t, ApplyMissionCurrent(s, &mavlink.MissionCurrent{Seq: 1}), 1)
	assert.Empty(t, ApplyMissionCurrent(s, &mavlink.MissionCurrent{Seq: 1}))
	assert.Len(t, ApplyMissionItemReached(s, &mavlink.MissionItemReached{Seq: 0}), 1)
	assert.Empty(t, ApplyMissionItemReached(s, &mavlink.MissionItemReached{Seq: 0}))
	assert.Equal(t, Mission{Current: 1, LastReached: 0}, s.Mission)
}

func TestCameraFeedbackGeotag(t *testing.T) {
	s := NewSnapshot()
	got := ApplyCameraFeedback(s, &mavlink.CameraFeedback{
		TimeUsec: 1_700_000_000_000_000, ImageIndex: 7, Lat: 473977420, Lng: 85455940, AltRel: 30,
	})

	require.NotNil(t, s.Geotag)
	assert.Equal(t, uint16(7), s.Geotag.ImageIndex)
	assert.InDelta(t, 47.397742, s.Geotag.Lat, 1e-9)
	assert.InDelta(t, 8.545594, s.Geotag.Lon, 1e-9)
	assert.Equal(t, []core.EventType{core.EventGeotag}, types(got))
}

func TestGPSAndHomeChangeDetection(t *testing.T) {
	s := NewSnapshot()
	gps := &mavlink.GPSRawInt{FixType: 3, SatellitesVisible: 12, Eph: 90}
	assert.Len(t, ApplyGPSRawInt(s, gps), 1)
	assert.Empty(t, ApplyGPSRawInt(s, gps))
	assert.True(t, s.Position.HasFix)

	home := &mavlink.HomePosition{Latitude: 10_000_000, Longitude: 20_000_000, Altitude: 500_000}
	assert.Len(t, ApplyHomePosition(s, home), 1)
	assert.Empty(t, ApplyHomePosition(s, home))
	assert.Equal(t, Home{Lat: 1, Lon: 2, Alt: 500, Valid: true}, s.Home)
}

func ptrTo(v float64) *float64 { return &v }
