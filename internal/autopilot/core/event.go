package core

// EventType names a change notification. Each type covers one logical group
// of vehicle state.
type EventType string

const (
	EventConnected         EventType = "vehicle.connected"
	EventHeartbeatFirst    EventType = "heartbeat.first"
	EventHeartbeatTimeout  EventType = "heartbeat.timeout"
	EventHeartbeatRestored EventType = "heartbeat.restored"

	EventArming         EventType = "state.arming"
	EventFlying         EventType = "state.flying"
	EventFailsafe       EventType = "state.failsafe"
	EventMode           EventType = "state.mode"
	EventVehicleType    EventType = "state.type"
	EventFirmware       EventType = "state.firmware"
	EventAutopilotError EventType = "state.autopilot_error"

	EventAltitude     EventType = "telemetry.altitude"
	EventSpeed        EventType = "telemetry.speed"
	EventOrientation  EventType = "telemetry.orientation"
	EventAttitude     EventType = "telemetry.attitude"
	EventPosition     EventType = "telemetry.position"
	EventGPS          EventType = "telemetry.gps"
	EventBattery      EventType = "telemetry.battery"
	EventRadio        EventType = "telemetry.radio"
	EventRCIn         EventType = "telemetry.rc_in"
	EventRCOut        EventType = "telemetry.rc_out"
	EventMagnetometer EventType = "telemetry.magnetometer"
	EventHome         EventType = "telemetry.home"

	EventMissionUpdate    EventType = "mission.update"
	EventMissionItemReach EventType = "mission.item_reached"
	EventMissionSent      EventType = "mission.sent"

	EventGimbalOrientation EventType = "gimbal.orientation"
	EventGeotag            EventType = "camera.geotag"

	EventParameters      EventType = "parameters.updated"
	EventCalibrationIMU  EventType = "calibration.imu"
	EventCalibrationMag  EventType = "calibration.mag"
)

// Event is a change notification with its payload.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// LogLevel tags a vehicle log line.
type LogLevel int

const (
	LogVerbose LogLevel = iota
	LogDebug
	LogInfo
	LogWarn
	LogError
)

var logLevelNames = [...]string{"verbose", "debug", "info", "warn", "error"}

func (l LogLevel) String() string {
	if l >= 0 && int(l) < len(logLevelNames) {
		return logLevelNames[l]
	}
	return "unknown"
}

// Notifier is the subscriber of the surrounding application.
type Notifier interface {
	NotifyEvent(ev Event)
	LogMessage(level LogLevel, text string)
}

// Notifiers fans out to every member.
type Notifiers []Notifier

func (n Notifiers) NotifyEvent(ev Event) {
	for _, x := range n {
		x.NotifyEvent(ev)
	}
}

func (n Notifiers) LogMessage(level LogLevel, text string) {
	for _, x := range n {
		x.LogMessage(level, text)
	}
}
