// Package action defines the operator intents a vehicle accepts and the
// dispatcher translating them into MAVLink commands.
package action

import (
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

// Name identifies an action on the wire.
type Name string

const (
	NameLoadWaypoints        Name = "load_waypoints"
	NameSetMission           Name = "set_mission"
	NameStartMission         Name = "start_mission"
	NameGripper              Name = "epm_command"
	NameTriggerCamera        Name = "trigger_camera"
	NameSetROI               Name = "set_roi"
	NameSendMessage          Name = "send_mavlink_message"
	NameSetRelay             Name = "set_relay"
	NameSetServo             Name = "set_servo"
	NameGuidedTakeoff        Name = "do_guided_takeoff"
	NameSendGuidedPoint      Name = "send_guided_point"
	NameSetGuidedAltitude    Name = "set_guided_altitude"
	NameSetVelocity          Name = "set_velocity"
	NameRefreshParameters    Name = "refresh_parameters"
	NameWriteParameters      Name = "write_parameters"
	NameArm                  Name = "arm"
	NameSetVehicleHome       Name = "set_vehicle_home"
	NameStartIMUCalibration  Name = "start_imu_calibration"
	NameIMUCalibrationAck    Name = "send_imu_calibration_ack"
	NameStartMagCalibration  Name = "start_magnetometer_calibration"
	NameCancelMagCalibration Name = "cancel_magnetometer_calibration"
	NameAcceptMagCalibration Name = "accept_magnetometer_calibration"
	NameSetGimbalOrientation Name = "set_gimbal_orientation"
	NameSetGimbalMountMode   Name = "set_gimbal_mount_mode"
	NameResetGimbalMountMode Name = "reset_gimbal_mount_mode"
	NameSetVehicleMode       Name = "set_vehicle_mode"
)

// Action is implemented by every action variant.
type Action interface {
	Name() Name
}

type LoadWaypoints struct{}

type SetMission struct {
	Items       []core.MissionItem
	PushToDrone bool
}

type StartMission struct {
	ForceModeChange bool
	ForceArm        bool
}

// Gripper drives an electro-permanent magnet gripper.
type Gripper struct {
	Release bool
}

type TriggerCamera struct{}

type SetROI struct {
	Lat, Lon, Alt float64
}

// SendMessage forwards an arbitrary message to the vehicle.
type SendMessage struct {
	Payload mavlink.Payload
}

type SetRelay struct {
	Number int
	On     bool
}

type SetServo struct {
	Channel int
	PWM     int
}

type GuidedTakeoff struct {
	Altitude float64
}

// SendGuidedPoint flies to a point in guided mode. Force switches the vehicle
// to guided mode first when needed.
type SendGuidedPoint struct {
	Lat, Lon float64
	Force    bool
}

type SetGuidedAltitude struct {
	Altitude float64
}

// SetVelocity holds normalized velocities in [-1, 1].
type SetVelocity struct {
	X, Y, Z float64
}

type RefreshParameters struct{}

type WriteParameters struct {
	Values map[string]float64
}

type Arm struct {
	Arm             bool
	EmergencyDisarm bool
}

type SetVehicleHome struct {
	Lat, Lon, Alt float64
}

type StartIMUCalibration struct{}

type IMUCalibrationAck struct {
	Step int
}

type StartMagCalibration struct {
	RetryOnFailure    bool
	SaveAutomatically bool
	StartDelay        int
}

type CancelMagCalibration struct{}

type AcceptMagCalibration struct{}

// SetGimbalOrientation angles are in degrees.
type SetGimbalOrientation struct {
	Pitch, Roll, Yaw float64
}

type SetGimbalMountMode struct {
	Mode mavlink.MountMode
}

// ResetGimbalMountMode restores RC targeting.
type ResetGimbalMountMode struct{}

type SetVehicleMode struct {
	Mode string
}

// Unknown carries an action name this build does not know.
type Unknown struct {
	Type   string
	Params map[string]any
}

func (LoadWaypoints) Name() Name        { return NameLoadWaypoints }
func (SetMission) Name() Name           { return NameSetMission }
func (StartMission) Name() Name         { return NameStartMission }
func (Gripper) Name() Name              { return NameGripper }
func (TriggerCamera) Name() Name        { return NameTriggerCamera }
func (SetROI) Name() Name               { return NameSetROI }
func (SendMessage) Name() Name          { return NameSendMessage }
func (SetRelay) Name() Name             { return NameSetRelay }
func (SetServo) Name() Name             { return NameSetServo }
func (GuidedTakeoff) Name() Name        { return NameGuidedTakeoff }
func (SendGuidedPoint) Name() Name      { return NameSendGuidedPoint }
func (SetGuidedAltitude) Name() Name    { return NameSetGuidedAltitude }
func (SetVelocity) Name() Name          { return NameSetVelocity }
func (RefreshParameters) Name() Name    { return NameRefreshParameters }
func (WriteParameters) Name() Name      { return NameWriteParameters }
func (Arm) Name() Name                  { return NameArm }
func (SetVehicleHome) Name() Name       { return NameSetVehicleHome }
func (StartIMUCalibration) Name() Name  { return NameStartIMUCalibration }
func (IMUCalibrationAck) Name() Name    { return NameIMUCalibrationAck }
func (StartMagCalibration) Name() Name  { return NameStartMagCalibration }
func (CancelMagCalibration) Name() Name { return NameCancelMagCalibration }
func (AcceptMagCalibration) Name() Name { return NameAcceptMagCalibration }
func (SetGimbalOrientation) Name() Name { return NameSetGimbalOrientation }
func (SetGimbalMountMode) Name() Name   { return NameSetGimbalMountMode }
func (ResetGimbalMountMode) Name() Name { return NameResetGimbalMountMode }
func (SetVehicleMode) Name() Name       { return NameSetVehicleMode }
func (u Unknown) Name() Name            { return Name(u.Type) }
