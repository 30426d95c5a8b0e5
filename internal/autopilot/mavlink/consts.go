package mavlink

// VehicleType mirrors MAV_TYPE.
type VehicleType uint8

const (
	TypeGeneric       VehicleType = 0
	TypeFixedWing     VehicleType = 1
	TypeQuadrotor     VehicleType = 2
	TypeCoaxial       VehicleType = 3
	TypeHelicopter    VehicleType = 4
	TypeGCS           VehicleType = 6
	TypeGroundRover   VehicleType = 10
	TypeSurfaceBoat   VehicleType = 11
	TypeHexarotor     VehicleType = 13
	TypeOctorotor     VehicleType = 14
	TypeTricopter     VehicleType = 15
	TypeVTOLDuorotor  VehicleType = 19
	TypeVTOLQuadrotor VehicleType = 20
	TypeVTOLTiltrotor VehicleType = 21
	TypeVTOLReserved2 VehicleType = 22
	TypeDodecarotor   VehicleType = 29
)

// SystemStatus mirrors MAV_STATE.
type SystemStatus uint8

const (
	StateUninit SystemStatus = iota
	StateBoot
	StateCalibrating
	StateStandby
	StateActive
	StateCritical
	StateEmergency
	StatePoweroff
	StateFlightTermination
)

var systemStatusNames = [...]string{
	"UNINIT", "BOOT", "CALIBRATING", "STANDBY", "ACTIVE",
	"CRITICAL", "EMERGENCY", "POWEROFF", "FLIGHT_TERMINATION",
}

func (s SystemStatus) String() string {
	if int(s) < len(systemStatusNames) {
		return systemStatusNames[s]
	}
	return "UNKNOWN"
}

// Base mode flags.
const (
	ModeFlagCustomModeEnabled uint8 = 1
	ModeFlagSafetyArmed       uint8 = 128
)

// Severity is the legacy ArduPilot status text severity.
type Severity uint8

const (
	SeverityUnknown      Severity = 0
	SeverityLow          Severity = 1
	SeverityMedium       Severity = 2
	SeverityHigh         Severity = 3
	SeverityCritical     Severity = 4
	SeverityUserResponse Severity = 5
)

// SeverityFromMAV maps a MAV_SEVERITY (RFC 5424 style, 0 = emergency) value
// onto the legacy codes.
func SeverityFromMAV(v uint8) Severity {
	switch {
	case v <= 3: // EMERGENCY, ALERT, CRITICAL, ERROR
		return SeverityCritical
	case v == 4: // WARNING
		return SeverityHigh
	case v == 5: // NOTICE
		return SeverityMedium
	case v == 6: // INFO
		return SeverityLow
	default: // DEBUG
		return SeverityUserResponse
	}
}

// Cmd mirrors MAV_CMD.
type Cmd uint16

const (
	CmdNavWaypoint          Cmd = 16
	CmdNavTakeoff           Cmd = 22
	CmdDoSetMode            Cmd = 176
	CmdDoSetHome            Cmd = 179
	CmdDoSetRelay           Cmd = 181
	CmdDoSetServo           Cmd = 183
	CmdDoSetROI             Cmd = 201
	CmdDoDigicamControl     Cmd = 203
	CmdDoMountControl       Cmd = 205
	CmdDoGripper            Cmd = 211
	CmdPreflightCalibration Cmd = 241
	CmdMissionStart         Cmd = 300
	CmdComponentArmDisarm   Cmd = 400
	CmdGetHomePosition      Cmd = 410
	CmdDoStartMagCal        Cmd = 42424
	CmdDoAcceptMagCal       Cmd = 42425
	CmdDoCancelMagCal       Cmd = 42426
)

// EmergencyDisarmMagic forces a disarm in flight when passed as param2 of
// CmdComponentArmDisarm.
const EmergencyDisarmMagic = 21196

// Result mirrors MAV_RESULT.
type Result uint8

const (
	ResultAccepted            Result = 0
	ResultTemporarilyRejected Result = 1
	ResultDenied              Result = 2
	ResultUnsupported         Result = 3
	ResultFailed              Result = 4
	ResultInProgress          Result = 5
	ResultCancelled           Result = 6
)

// MountMode mirrors MAV_MOUNT_MODE.
type MountMode uint8

const (
	MountModeRetract          MountMode = 0
	MountModeNeutral          MountMode = 1
	MountModeMavlinkTargeting MountMode = 2
	MountModeRCTargeting      MountMode = 3
	MountModeGPSPoint         MountMode = 4
)

// Frames used by outgoing requests.
const (
	FrameGlobalRelativeAltInt uint8 = 6
	FrameLocalNED             uint8 = 1
)

// Gripper actions of CmdDoGripper.
const (
	GripperRelease = 0
	GripperGrab    = 1
)
