package action

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

var (
	ErrUnknownAction    = errors.New("unknown action")
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Decode builds a typed action from a name and a loosely typed parameter
// map, as received from outer surfaces. Names this build does not know
// decode to Unknown so the fallback handler can decide.
func Decode(name string, params map[string]any) (Action, error) {
	if name == "" {
		return nil, ErrUnknownAction
	}
	p := bag(params)

	switch Name(name) {
	case NameLoadWaypoints:
		return LoadWaypoints{}, nil
	case NameSetMission:
		items, err := p.missionItems("items")
		if err != nil {
			return nil, err
		}
		return SetMission{Items: items, PushToDrone: p.boolOr("push_to_drone", false)}, nil
	case NameStartMission:
		return StartMission{
			ForceModeChange: p.boolOr("force_mode_change", false),
			ForceArm:        p.boolOr("force_arm", false),
		}, nil
	case NameGripper:
		return Gripper{Release: p.boolOr("release", false)}, nil
	case NameTriggerCamera:
		return TriggerCamera{}, nil
	case NameSetROI:
		lat, lon, alt, err := p.latLonAlt()
		if err != nil {
			return nil, err
		}
		return SetROI{Lat: lat, Lon: lon, Alt: alt}, nil
	case NameSendMessage:
		return p.rawMessage()
	case NameSetRelay:
		n, err := p.int("relay_number")
		if err != nil {
			return nil, err
		}
		return SetRelay{Number: n, On: p.boolOr("is_on", false)}, nil
	case NameSetServo:
		ch, err := p.int("channel")
		if err != nil {
			return nil, err
		}
		pwm, err := p.int("pwm")
		if err != nil {
			return nil, err
		}
		return SetServo{Channel: ch, PWM: pwm}, nil
	case NameGuidedTakeoff:
		alt, err := p.float("altitude")
		if err != nil {
			return nil, err
		}
		return GuidedTakeoff{Altitude: alt}, nil
	case NameSendGuidedPoint:
		lat, err := p.float("lat")
		if err != nil {
			return nil, err
		}
		lon, err := p.float("lon")
		if err != nil {
			return nil, err
		}
		return SendGuidedPoint{Lat: lat, Lon: lon, Force: p.boolOr("force", false)}, nil
	case NameSetGuidedAltitude:
		alt, err := p.float("altitude")
		if err != nil {
			return nil, err
		}
		return SetGuidedAltitude{Altitude: alt}, nil
	case NameSetVelocity:
		return SetVelocity{X: p.floatOr("x", 0), Y: p.floatOr("y", 0), Z: p.floatOr("z", 0)}, nil
	case NameRefreshParameters:
		return RefreshParameters{}, nil
	case NameWriteParameters:
		values, err := p.floatMap("parameters")
		if err != nil {
			return nil, err
		}
		return WriteParameters{Values: values}, nil
	case NameArm:
		return Arm{Arm: p.boolOr("arm", false), EmergencyDisarm: p.boolOr("emergency_disarm", false)}, nil
	case NameSetVehicleHome:
		lat, lon, alt, err := p.latLonAlt()
		if err != nil {
			return nil, err
		}
		return SetVehicleHome{Lat: lat, Lon: lon, Alt: alt}, nil
	case NameStartIMUCalibration:
		return StartIMUCalibration{}, nil
	case NameIMUCalibrationAck:
		step, err := p.int("step")
		if err != nil {
			return nil, err
		}
		return IMUCalibrationAck{Step: step}, nil
	case NameStartMagCalibration:
		return StartMagCalibration{
			RetryOnFailure:    p.boolOr("retry_on_failure", false),
			SaveAutomatically: p.boolOr("save_automatically", true),
			StartDelay:        p.intOr("start_delay", 0),
		}, nil
	case NameCancelMagCalibration:
		return CancelMagCalibration{}, nil
	case NameAcceptMagCalibration:
		return AcceptMagCalibration{}, nil
	case NameSetGimbalOrientation:
		return SetGimbalOrientation{
			Pitch: p.floatOr("pitch", 0),
			Roll:  p.floatOr("roll", 0),
			Yaw:   p.floatOr("yaw", 0),
		}, nil
	case NameSetGimbalMountMode:
		mode := p.intOr("mount_mode", int(mavlink.MountModeRCTargeting))
		return SetGimbalMountMode{Mode: mavlink.MountMode(mode)}, nil
	case NameResetGimbalMountMode:
		return ResetGimbalMountMode{}, nil
	case NameSetVehicleMode:
		mode, err := p.string("mode")
		if err != nil {
			return nil, err
		}
		return SetVehicleMode{Mode: mode}, nil
	default:
		return Unknown{Type: name, Params: params}, nil
	}
}

type bag map[string]any

func (b bag) lookup(key string) (any, error) {
	v, ok := b[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, key)
	}
	return v, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func (b bag) float(key string) (float64, error) {
	v, err := b.lookup(key)
	if err != nil {
		return 0, err
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, want a number", ErrInvalidParameter, key, v)
	}
	return f, nil
}

func (b bag) floatOr(key string, def float64) float64 {
	if f, err := b.float(key); err == nil {
		return f
	}
	return def
}

func (b bag) int(key string) (int, error) {
	f, err := b.float(key)
	return int(f), err
}

func (b bag) intOr(key string, def int) int {
	if n, err := b.int(key); err == nil {
		return n
	}
	return def
}

func (b bag) boolOr(key string, def bool) bool {
	if v, ok := b[key].(bool); ok {
		return v
	}
	return def
}

func (b bag) string(key string) (string, error) {
	v, err := b.lookup(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidParameter, key)
	}
	return s, nil
}

func (b bag) latLonAlt() (lat, lon, alt float64, err error) {
	if lat, err = b.float("lat"); err != nil {
		return
	}
	if lon, err = b.float("lon"); err != nil {
		return
	}
	alt, err = b.float("alt")
	return
}

func (b bag) floatMap(key string) (map[string]float64, error) {
	v, err := b.lookup(key)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidParameter, key)
	}
	out := make(map[string]float64, len(m))
	for name, raw := range m {
		f, ok := toFloat(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s is %T, want a number", ErrInvalidParameter, key, name, raw)
		}
		out[name] = f
	}
	return out, nil
}

func (b bag) missionItems(key string) ([]core.MissionItem, error) {
	v, err := b.lookup(key)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list", ErrInvalidParameter, key)
	}
	items := make([]core.MissionItem, 0, len(list))
	for i, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be an object", ErrInvalidParameter, key, i)
		}
		ib := bag(m)
		lat, lon, alt, err := ib.latLonAlt()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		items = append(items, core.MissionItem{
			Command: mavlink.Cmd(ib.intOr("command", int(mavlink.CmdNavWaypoint))),
			Lat:     lat,
			Lon:     lon,
			Alt:     float32(alt),
		})
	}
	return items, nil
}

func (b bag) rawMessage() (Action, error) {
	id, err := b.int("message_id")
	if err != nil {
		return nil, err
	}
	encoded, err := b.string("payload")
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrInvalidParameter, err)
	}
	return SendMessage{Payload: &mavlink.Raw{ID: mavlink.Kind(id), Data: data}}, nil
}
