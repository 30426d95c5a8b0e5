// Package mavlink holds the decoded MAVLink records exchanged between the
// transport and the autopilot core. Records are plain values: the wire codec
// lives in the transport, the core only ever sees these types.
package mavlink

import "fmt"

// Kind discriminates decoded messages. Values are the MAVLink message ids.
type Kind uint32

const (
	KindHeartbeat           Kind = 0
	KindSysStatus           Kind = 1
	KindParamRequestRead    Kind = 20
	KindParamRequestList    Kind = 21
	KindParamValue          Kind = 22
	KindParamSet            Kind = 23
	KindGPSRawInt           Kind = 24
	KindRawIMU              Kind = 27
	KindAttitude            Kind = 30
	KindGlobalPositionInt   Kind = 33
	KindRCChannelsRaw       Kind = 35
	KindServoOutputRaw      Kind = 36
	KindMissionCurrent      Kind = 42
	KindMissionItemReached  Kind = 46
	KindNavControllerOutput Kind = 62
	KindMissionItemInt      Kind = 73
	KindVfrHud              Kind = 74
	KindCommandLong         Kind = 76
	KindCommandAck          Kind = 77
	KindSetPositionTarget   Kind = 84
	KindRadioStatus         Kind = 109
	KindMountConfigure      Kind = 156
	KindMountStatus         Kind = 158
	KindRadio               Kind = 166
	KindCameraFeedback      Kind = 180
	KindMagCalProgress      Kind = 191
	KindMagCalReport        Kind = 192
	KindHomePosition        Kind = 242
	KindNamedValueInt       Kind = 252
	KindStatusText          Kind = 253

	// KindUnknown marks a message the transport could not map to a record.
	KindUnknown Kind = 1<<32 - 1
)

var kindNames = map[Kind]string{
	KindHeartbeat:           "HEARTBEAT",
	KindSysStatus:           "SYS_STATUS",
	KindParamRequestRead:    "PARAM_REQUEST_READ",
	KindParamRequestList:    "PARAM_REQUEST_LIST",
	KindParamValue:          "PARAM_VALUE",
	KindParamSet:            "PARAM_SET",
	KindGPSRawInt:           "GPS_RAW_INT",
	KindRawIMU:              "RAW_IMU",
	KindAttitude:            "ATTITUDE",
	KindGlobalPositionInt:   "GLOBAL_POSITION_INT",
	KindRCChannelsRaw:       "RC_CHANNELS_RAW",
	KindServoOutputRaw:      "SERVO_OUTPUT_RAW",
	KindMissionCurrent:      "MISSION_CURRENT",
	KindMissionItemReached:  "MISSION_ITEM_REACHED",
	KindNavControllerOutput: "NAV_CONTROLLER_OUTPUT",
	KindMissionItemInt:      "MISSION_ITEM_INT",
	KindVfrHud:              "VFR_HUD",
	KindCommandLong:         "COMMAND_LONG",
	KindCommandAck:          "COMMAND_ACK",
	KindSetPositionTarget:   "SET_POSITION_TARGET_LOCAL_NED",
	KindRadioStatus:         "RADIO_STATUS",
	KindMountConfigure:      "MOUNT_CONFIGURE",
	KindMountStatus:         "MOUNT_STATUS",
	KindRadio:               "RADIO",
	KindCameraFeedback:      "CAMERA_FEEDBACK",
	KindMagCalProgress:      "MAG_CAL_PROGRESS",
	KindMagCalReport:        "MAG_CAL_REPORT",
	KindHomePosition:        "HOME_POSITION",
	KindNamedValueInt:       "NAMED_VALUE_INT",
	KindStatusText:          "STATUSTEXT",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MSG_%d", uint32(k))
}

// Payload is implemented by every decoded record.
type Payload interface {
	Kind() Kind
}

// Message is a decoded inbound message tagged with its sender identity.
type Message struct {
	SystemID    uint8
	ComponentID uint8
	Payload     Payload
}

// Kind returns the payload kind, or KindUnknown when no payload was decoded.
func (m *Message) Kind() Kind {
	if m == nil || m.Payload == nil {
		return KindUnknown
	}
	return m.Payload.Kind()
}

// Identity returns the sender identity of the message.
func (m *Message) Identity() Identity {
	return Identity{SystemID: m.SystemID, ComponentID: m.ComponentID}
}

// Identity is the (system, component) pair of a MAVLink participant.
type Identity struct {
	SystemID    uint8 `json:"systemId"`
	ComponentID uint8 `json:"componentId"`
}

// Component ids accepted by the ArduPilot router.
const (
	ComponentAutopilot      uint8 = 1
	ComponentGroundPeer     uint8 = 0
	ComponentTelemetryRadio uint8 = 68
)
