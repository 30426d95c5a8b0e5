package telemetry

import (
	"math"
	"time"

	"k8s.io/utils/ptr"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

// BatteryCapacityParam holds the battery capacity in mAh.
const BatteryCapacityParam = "BATT_CAPACITY"

// ParamGetter reads cached parameter values.
type ParamGetter interface {
	Get(name string) (float64, bool)
}

func event(t core.EventType, data any) core.Event {
	return core.Event{Type: t, Data: data}
}

// ApplyVfrHud updates altitude and the speed group. Each group yields at most
// one event and only when one of its fields changed.
func ApplyVfrHud(s *Snapshot, m *mavlink.VfrHud) []core.Event {
	var out []core.Event

	alt := float64(m.Alt)
	if alt != s.Altitude.Altitude {
		s.Altitude.Altitude = alt
		out = append(out, event(core.EventAltitude, s.Altitude))
	}

	speed := Speed{
		Ground:   float64(m.Groundspeed),
		Air:      float64(m.Airspeed),
		Vertical: float64(m.Climb),
	}
	if speed != s.Speed {
		s.Speed = speed
		out = append(out, event(core.EventSpeed, s.Speed))
	}

	return out
}

// ApplyNavControllerOutput stores the navigation errors and derives the target
// altitude. The orientation event is always emitted.
func ApplyNavControllerOutput(s *Snapshot, m *mavlink.NavControllerOutput) []core.Event {
	s.Navigation = Navigation{
		WaypointDistance: float64(m.WpDist),
		AltitudeError:    float64(m.AltError),
		AirspeedError:    float64(m.AspdError),
		NavBearing:       m.NavBearing,
		TargetBearing:    m.TargetBearing,
	}
	s.Altitude.TargetAltitude = s.Altitude.Altitude + float64(m.AltError)
	return []core.Event{event(core.EventOrientation, s.Navigation)}
}

// ApplySysStatus updates the battery. The discharge estimate is recomputed
// only when the remaining percentage changes.
func ApplySysStatus(s *Snapshot, m *mavlink.SysStatus, params ParamGetter) []core.Event {
	b := s.Battery
	b.Voltage = float64(m.VoltageBattery) / 1000
	b.Current = float64(m.CurrentBattery) / 100
	if m.CurrentBattery < 0 {
		b.Current = -1
	}

	remain := int(m.BatteryRemaining)
	if remain != b.Remain {
		b.Remain = remain
		b.Discharge = dischargeEstimate(remain, params)
	}

	if batteryEqual(b, s.Battery) {
		return nil
	}
	s.Battery = b
	return []core.Event{event(core.EventBattery, s.Battery)}
}

func dischargeEstimate(remain int, params ParamGetter) *float64 {
	if remain == -1 || params == nil {
		return nil
	}
	capacity, ok := params.Get(BatteryCapacityParam)
	if !ok {
		return nil
	}
	return ptr.To((1 - float64(remain)/100) * capacity)
}

func batteryEqual(a, b Battery) bool {
	if a.Voltage != b.Voltage || a.Current != b.Current || a.Remain != b.Remain {
		return false
	}
	if (a.Discharge == nil) != (b.Discharge == nil) {
		return false
	}
	return a.Discharge == nil || *a.Discharge == *b.Discharge
}

// ApplyRadio stores the link counters as received.
func ApplyRadio(s *Snapshot, m *mavlink.Radio) []core.Event {
	s.Radio = Radio(*m)
	return []core.Event{event(core.EventRadio, s.Radio)}
}

func ApplyRCChannelsRaw(s *Snapshot, m *mavlink.RCChannelsRaw) []core.Event {
	s.RC.In = m.Channels
	return []core.Event{event(core.EventRCIn, s.RC.In)}
}

func ApplyServoOutputRaw(s *Snapshot, m *mavlink.ServoOutputRaw) []core.Event {
	s.RC.Out = m.Servos
	return []core.Event{event(core.EventRCOut, s.RC.Out)}
}

func ApplyMissionCurrent(s *Snapshot, m *mavlink.MissionCurrent) []core.Event {
	if m.Seq == s.Mission.Current {
		return nil
	}
	s.Mission.Current = m.Seq
	return []core.Event{event(core.EventMissionUpdate, s.Mission)}
}

func ApplyMissionItemReached(s *Snapshot, m *mavlink.MissionItemReached) []core.Event {
	if int(m.Seq) == s.Mission.LastReached {
		return nil
	}
	s.Mission.LastReached = int(m.Seq)
	return []core.Event{event(core.EventMissionItemReach, s.Mission)}
}

// ApplyCameraFeedback records the geotag of a captured image.
func ApplyCameraFeedback(s *Snapshot, m *mavlink.CameraFeedback) []core.Event {
	g := &Geotag{
		Time:        time.UnixMicro(int64(m.TimeUsec)).UTC(),
		CameraIndex: m.CameraIndex,
		ImageIndex:  m.ImageIndex,
		Lat:         float64(m.Lat) / 1e7,
		Lon:         float64(m.Lng) / 1e7,
		AltMSL:      float64(m.AltMSL),
		AltRel:      float64(m.AltRel),
		Roll:        float64(m.Roll),
		Pitch:       float64(m.Pitch),
		Yaw:         float64(m.Yaw),
		FocalLength: float64(m.FocalLength),
	}
	s.Geotag = g
	return []core.Event{event(core.EventGeotag, *g)}
}

// ApplyMountStatus converts the centidegree pointing angles to degrees.
func ApplyMountStatus(s *Snapshot, m *mavlink.MountStatus) []core.Event {
	s.Gimbal = Gimbal{
		Pitch: float64(m.PointingA) / 100,
		Roll:  float64(m.PointingB) / 100,
		Yaw:   float64(m.PointingC) / 100,
	}
	return []core.Event{event(core.EventGimbalOrientation, s.Gimbal)}
}

func ApplyRawIMU(s *Snapshot, m *mavlink.RawIMU) []core.Event {
	s.Magnetometer = Magnetometer{X: m.Xmag, Y: m.Ymag, Z: m.Zmag}
	return []core.Event{event(core.EventMagnetometer, s.Magnetometer)}
}

func ApplyAttitude(s *Snapshot, m *mavlink.Attitude) []core.Event {
	s.Attitude = Attitude{
		Roll:  degrees(m.Roll),
		Pitch: degrees(m.Pitch),
		Yaw:   degrees(m.Yaw),
	}
	return []core.Event{event(core.EventAttitude, s.Attitude)}
}

func ApplyGlobalPositionInt(s *Snapshot, m *mavlink.GlobalPositionInt) []core.Event {
	p := s.Position
	p.Lat = float64(m.Lat) / 1e7
	p.Lon = float64(m.Lon) / 1e7
	p.AltMSL = float64(m.Alt) / 1000
	p.AltRel = float64(m.RelativeAlt) / 1000
	if m.Hdg != math.MaxUint16 {
		p.Heading = float64(m.Hdg) / 100
	}
	s.Position = p
	return []core.Event{event(core.EventPosition, s.Position)}
}

// ApplyGPSRawInt updates the fix quality. Position itself comes from
// GLOBAL_POSITION_INT.
func ApplyGPSRawInt(s *Snapshot, m *mavlink.GPSRawInt) []core.Event {
	p := s.Position
	p.FixType = m.FixType
	p.HasFix = m.FixType >= 2
	p.Sats = m.SatellitesVisible
	if m.Eph != math.MaxUint16 {
		p.Accuracy = float64(m.Eph) / 100
	}
	if p == s.Position {
		return nil
	}
	s.Position = p
	return []core.Event{event(core.EventGPS, s.Position)}
}

func ApplyHomePosition(s *Snapshot, m *mavlink.HomePosition) []core.Event {
	h := Home{
		Lat:   float64(m.Latitude) / 1e7,
		Lon:   float64(m.Longitude) / 1e7,
		Alt:   float64(m.Altitude) / 1000,
		Valid: true,
	}
	if h == s.Home {
		return nil
	}
	s.Home = h
	return []core.Event{event(core.EventHome, s.Home)}
}

func degrees(rad float32) float64 {
	return float64(rad) * 180 / math.Pi
}
