package action

import (
	"encoding/base64"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   Action
	}{
		{"arm", map[string]any{"arm": true}, Arm{Arm: true}},
		{"set_vehicle_home", map[string]any{"lat": 1.5, "lon": 2.5, "alt": 3.0}, SetVehicleHome{Lat: 1.5, Lon: 2.5, Alt: 3}},
		{"set_velocity", map[string]any{"x": 0.5}, SetVelocity{X: 0.5}},
		{"set_gimbal_mount_mode", nil, SetGimbalMountMode{Mode: mavlink.MountModeRCTargeting}},
		{"start_magnetometer_calibration", nil, StartMagCalibration{SaveAutomatically: true}},
		{"set_servo", map[string]any{"channel": 9.0, "pwm": 1500.0}, SetServo{Channel: 9, PWM: 1500}},
		{"write_parameters", map[string]any{"parameters": map[string]any{"RTL_ALT": 1500.0}},
			WriteParameters{Values: map[string]float64{"RTL_ALT": 1500}}},
		{"set_mission", map[string]any{"items": []any{map[string]any{"lat": 1.0, "lon": 2.0, "alt": 30.0}}},
			SetMission{Items: []core.MissionItem{{Command: mavlink.CmdNavWaypoint, Lat: 1, Lon: 2, Alt: 30}}}},
		{"set_vehicle_mode", map[string]any{"mode": "Loiter"}, SetVehicleMode{Mode: "Loiter"}},
		{"fly_backwards", map[string]any{"x": 1}, Unknown{Type: "fly_backwards", Params: map[string]any{"x": 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.name, tt.params)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("", nil)
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Decode("set_vehicle_home", map[string]any{"lat": 1.0, "lon": 2.0})
	assert.ErrorIs(t, err, ErrMissingParameter)

	_, err = Decode("do_guided_takeoff", map[string]any{"altitude": "high"})
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Decode("send_mavlink_message", map[string]any{"message_id": 0.0, "payload": "!!"})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestDecodeRawMessage(t *testing.T) {
	got, err := Decode("send_mavlink_message", map[string]any{
		"message_id": 11.0,
		"payload":    base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
	})
	require.NoError(t, err)
	assert.Equal(t, SendMessage{Payload: &mavlink.Raw{ID: 11, Data: []byte{1, 2, 3}}}, got)
}
