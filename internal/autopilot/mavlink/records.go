package mavlink

// Heartbeat is the periodic status report of a MAVLink participant.
type Heartbeat struct {
	Type         VehicleType
	Autopilot    uint8
	BaseMode     uint8
	CustomMode   uint32
	SystemStatus SystemStatus
}

func (*Heartbeat) Kind() Kind { return KindHeartbeat }

// Armed reports whether the safety-armed bit of the base mode is set.
func (h *Heartbeat) Armed() bool { return h.BaseMode&ModeFlagSafetyArmed != 0 }

// StatusText carries a free text line. Severity uses the legacy ArduPilot codes.
type StatusText struct {
	Severity Severity
	Text     string
}

func (*StatusText) Kind() Kind { return KindStatusText }

type VfrHud struct {
	Airspeed    float32
	Groundspeed float32
	Heading     int16
	Throttle    uint16
	Alt         float32
	Climb       float32
}

func (*VfrHud) Kind() Kind { return KindVfrHud }

type MissionCurrent struct {
	Seq uint16
}

func (*MissionCurrent) Kind() Kind { return KindMissionCurrent }

type MissionItemReached struct {
	Seq uint16
}

func (*MissionItemReached) Kind() Kind { return KindMissionItemReached }

type NavControllerOutput struct {
	NavBearing    int16
	TargetBearing int16
	WpDist        uint16
	AltError      float32
	AspdError     float32
	XtrackError   float32
}

func (*NavControllerOutput) Kind() Kind { return KindNavControllerOutput }

// RawIMU only keeps the magnetometer axes; the core does not use the rest.
type RawIMU struct {
	Xmag int16
	Ymag int16
	Zmag int16
}

func (*RawIMU) Kind() Kind { return KindRawIMU }

// Radio is the link quality report of a telemetry radio.
type Radio struct {
	RxErrors uint16
	Fixed    uint16
	RSSI     uint8
	RemRSSI  uint8
	TxBuf    uint8
	Noise    uint8
	RemNoise uint8
}

func (*Radio) Kind() Kind { return KindRadio }

// RadioStatus is the common dialect variant of Radio.
type RadioStatus struct {
	Radio
}

func (*RadioStatus) Kind() Kind { return KindRadioStatus }

// RCChannelsRaw carries the first eight RC input channels in microseconds.
type RCChannelsRaw struct {
	Port     uint8
	Channels [8]uint16
	RSSI     uint8
}

func (*RCChannelsRaw) Kind() Kind { return KindRCChannelsRaw }

// ServoOutputRaw carries the servo output channels in microseconds.
type ServoOutputRaw struct {
	Port   uint8
	Servos [16]uint16
}

func (*ServoOutputRaw) Kind() Kind { return KindServoOutputRaw }

type CameraFeedback struct {
	TimeUsec    uint64
	CameraIndex uint8
	ImageIndex  uint16
	Lat         int32 // degE7
	Lng         int32 // degE7
	AltMSL      float32
	AltRel      float32
	Roll        float32
	Pitch       float32
	Yaw         float32
	FocalLength float32
}

func (*CameraFeedback) Kind() Kind { return KindCameraFeedback }

// MountStatus reports the gimbal pointing angles in centidegrees.
type MountStatus struct {
	PointingA int32
	PointingB int32
	PointingC int32
}

func (*MountStatus) Kind() Kind { return KindMountStatus }

type NamedValueInt struct {
	Name  string
	Value int32
}

func (*NamedValueInt) Kind() Kind { return KindNamedValueInt }

type MagCalProgress struct {
	CompassID     uint8
	CalMask       uint8
	CalStatus     uint8
	Attempt       uint8
	CompletionPct uint8
}

func (*MagCalProgress) Kind() Kind { return KindMagCalProgress }

type MagCalReport struct {
	CompassID uint8
	CalMask   uint8
	CalStatus uint8
	Autosaved uint8
	Fitness   float32
	OfsX      float32
	OfsY      float32
	OfsZ      float32
}

func (*MagCalReport) Kind() Kind { return KindMagCalReport }

// SysStatus keeps the battery fields only.
type SysStatus struct {
	VoltageBattery   uint16 // mV
	CurrentBattery   int16  // cA, -1 when unknown
	BatteryRemaining int8   // percent, -1 when unknown
}

func (*SysStatus) Kind() Kind { return KindSysStatus }

type Attitude struct {
	Roll  float32 // rad
	Pitch float32
	Yaw   float32
}

func (*Attitude) Kind() Kind { return KindAttitude }

type GlobalPositionInt struct {
	Lat         int32 // degE7
	Lon         int32
	Alt         int32 // mm MSL
	RelativeAlt int32 // mm
	Hdg         uint16
}

func (*GlobalPositionInt) Kind() Kind { return KindGlobalPositionInt }

type GPSRawInt struct {
	FixType           uint8
	Lat               int32
	Lon               int32
	Eph               uint16
	SatellitesVisible uint8
}

func (*GPSRawInt) Kind() Kind { return KindGPSRawInt }

type HomePosition struct {
	Latitude  int32 // degE7
	Longitude int32
	Altitude  int32 // mm
}

func (*HomePosition) Kind() Kind { return KindHomePosition }

type CommandAck struct {
	Command Cmd
	Result  Result
}

func (*CommandAck) Kind() Kind { return KindCommandAck }

type ParamValue struct {
	ParamID string
	Value   float32
	Type    uint8
	Count   uint16
	Index   uint16
}

func (*ParamValue) Kind() Kind { return KindParamValue }

// CommandLong is a generic command with seven float parameters.
type CommandLong struct {
	TargetSystem    uint8
	TargetComponent uint8
	Command         Cmd
	Confirmation    uint8
	Params          [7]float32
}

func (*CommandLong) Kind() Kind { return KindCommandLong }

type ParamSet struct {
	TargetSystem    uint8
	TargetComponent uint8
	ParamID         string
	Value           float32
	Type            uint8
}

func (*ParamSet) Kind() Kind { return KindParamSet }

type ParamRequestList struct {
	TargetSystem    uint8
	TargetComponent uint8
}

func (*ParamRequestList) Kind() Kind { return KindParamRequestList }

type ParamRequestRead struct {
	TargetSystem    uint8
	TargetComponent uint8
	ParamID         string
}

func (*ParamRequestRead) Kind() Kind { return KindParamRequestRead }

type MountConfigure struct {
	TargetSystem    uint8
	TargetComponent uint8
	Mode            MountMode
	StabRoll        bool
	StabPitch       bool
	StabYaw         bool
}

func (*MountConfigure) Kind() Kind { return KindMountConfigure }

// SetPositionTarget commands a body velocity in the local NED frame.
type SetPositionTarget struct {
	TargetSystem    uint8
	TargetComponent uint8
	Vx, Vy, Vz      float32
}

func (*SetPositionTarget) Kind() Kind { return KindSetPositionTarget }

// MissionItemInt is used for guided-mode go-to requests (Current == 2).
type MissionItemInt struct {
	TargetSystem    uint8
	TargetComponent uint8
	Seq             uint16
	Frame           uint8
	Command         Cmd
	Current         uint8
	Autocontinue    uint8
	Lat             int32 // degE7
	Lon             int32
	Alt             float32
}

func (*MissionItemInt) Kind() Kind { return KindMissionItemInt }

// Raw is an already encoded payload forwarded untouched by the transport.
type Raw struct {
	ID   Kind
	Data []byte
}

func (r *Raw) Kind() Kind { return r.ID }
