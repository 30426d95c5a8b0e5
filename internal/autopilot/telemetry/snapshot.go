// Package telemetry aggregates vehicle telemetry into a Snapshot. The update
// functions are free functions shared by every autopilot family; they return
// the change notifications to publish, one per logical group.
package telemetry

import "time"

type Altitude struct {
	Altitude       float64 `json:"altitude"`
	TargetAltitude float64 `json:"targetAltitude"`
}

type Speed struct {
	Ground   float64 `json:"groundSpeed"`
	Air      float64 `json:"airSpeed"`
	Vertical float64 `json:"verticalSpeed"`
}

type Navigation struct {
	WaypointDistance float64 `json:"waypointDistance"`
	AltitudeError    float64 `json:"altitudeError"`
	AirspeedError    float64 `json:"airspeedError"`
	NavBearing       int16   `json:"navBearing"`
	TargetBearing    int16   `json:"targetBearing"`
}

// Battery keeps the last battery report. Discharge is nil when no estimate
// is available, which is distinct from zero consumption.
type Battery struct {
	Voltage   float64  `json:"voltage"`
	Current   float64  `json:"current"`
	Remain    int      `json:"remain"`
	Discharge *float64 `json:"discharge,omitempty"`
}

// Radio holds the raw link quality counters of the telemetry radio.
type Radio struct {
	RxErrors uint16 `json:"rxErrors"`
	Fixed    uint16 `json:"fixed"`
	RSSI     uint8  `json:"rssi"`
	RemRSSI  uint8  `json:"remRssi"`
	TxBuf    uint8  `json:"txBuf"`
	Noise    uint8  `json:"noise"`
	RemNoise uint8  `json:"remNoise"`
}

type RC struct {
	In  [8]uint16  `json:"in"`
	Out [16]uint16 `json:"out"`
}

// Geotag is the position and orientation sample of a captured image.
type Geotag struct {
	Time        time.Time `json:"time"`
	CameraIndex uint8     `json:"cameraIndex"`
	ImageIndex  uint16    `json:"imageIndex"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	AltMSL      float64   `json:"altMsl"`
	AltRel      float64   `json:"altRel"`
	Roll        float64   `json:"roll"`
	Pitch       float64   `json:"pitch"`
	Yaw         float64   `json:"yaw"`
	FocalLength float64   `json:"focalLength"`
}

// Gimbal orientation in degrees.
type Gimbal struct {
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
}

type Mission struct {
	Current     uint16 `json:"current"`
	LastReached int    `json:"lastReached"`
}

// Attitude in degrees.
type Attitude struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

type Position struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	AltMSL   float64 `json:"altMsl"`
	AltRel   float64 `json:"altRel"`
	Heading  float64 `json:"heading"`
	HasFix   bool    `json:"hasFix"`
	FixType  uint8   `json:"fixType"`
	Sats     uint8   `json:"satellites"`
	Accuracy float64 `json:"accuracy"`
}

type Home struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Alt   float64 `json:"alt"`
	Valid bool    `json:"valid"`
}

type Magnetometer struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
	Z int16 `json:"z"`
}

// Snapshot is the aggregated telemetry of one vehicle.
type Snapshot struct {
	Altitude     Altitude     `json:"altitude"`
	Speed        Speed        `json:"speed"`
	Navigation   Navigation   `json:"navigation"`
	Battery      Battery      `json:"battery"`
	Radio        Radio        `json:"radio"`
	RC           RC           `json:"rc"`
	Geotag       *Geotag      `json:"geotag,omitempty"`
	Gimbal       Gimbal       `json:"gimbal"`
	Mission      Mission      `json:"mission"`
	Attitude     Attitude     `json:"attitude"`
	Position     Position     `json:"position"`
	Home         Home         `json:"home"`
	Magnetometer Magnetometer `json:"magnetometer"`
}

// NewSnapshot returns a snapshot with every "unknown" sentinel in place.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Battery: Battery{Remain: -1, Current: -1},
		Mission: Mission{LastReached: -1},
	}
}
