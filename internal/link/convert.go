package link

import (
	"fmt"

	"github.com/bluenviron/gomavlib/v3/pkg/dialects/ardupilotmega"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"

	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

// decode converts a dialect message into the record consumed by the
// autopilot core. It returns nil for messages the core does not use.
func decode(msg message.Message) mavlink.Payload {
	switch m := msg.(type) {
	case *ardupilotmega.MessageHeartbeat:
		return &mavlink.Heartbeat{
			Type:         mavlink.VehicleType(m.Type),
			Autopilot:    uint8(m.Autopilot),
			BaseMode:     uint8(m.BaseMode),
			CustomMode:   m.CustomMode,
			SystemStatus: mavlink.SystemStatus(m.SystemStatus),
		}
	case *ardupilotmega.MessageStatustext:
		return &mavlink.StatusText{
			Severity: mavlink.SeverityFromMAV(uint8(m.Severity)),
			Text:     m.Text,
		}
	case *ardupilotmega.MessageSysStatus:
		return &mavlink.SysStatus{
			VoltageBattery:   m.VoltageBattery,
			CurrentBattery:   m.CurrentBattery,
			BatteryRemaining: m.BatteryRemaining,
		}
	case *ardupilotmega.MessageVfrHud:
		return &mavlink.VfrHud{
			Airspeed:    m.Airspeed,
			Groundspeed: m.Groundspeed,
			Heading:     m.Heading,
			Throttle:    m.Throttle,
			Alt:         m.Alt,
			Climb:       m.Climb,
		}
	case *ardupilotmega.MessageMissionCurrent:
		return &mavlink.MissionCurrent{Seq: m.Seq}
	case *ardupilotmega.MessageMissionItemReached:
		return &mavlink.MissionItemReached{Seq: m.Seq}
	case *ardupilotmega.MessageNavControllerOutput:
		return &mavlink.NavControllerOutput{
			NavBearing:    m.NavBearing,
			TargetBearing: m.TargetBearing,
			WpDist:        m.WpDist,
			AltError:      m.AltError,
			AspdError:     m.AspdError,
			XtrackError:   m.XtrackError,
		}
	case *ardupilotmega.MessageRawImu:
		return &mavlink.RawIMU{Xmag: m.Xmag, Ymag: m.Ymag, Zmag: m.Zmag}
	case *ardupilotmega.MessageRadio:
		return &mavlink.Radio{
			RxErrors: m.Rxerrors,
			Fixed:    m.Fixed,
			RSSI:     m.Rssi,
			RemRSSI:  m.Remrssi,
			TxBuf:    m.Txbuf,
			Noise:    m.Noise,
			RemNoise: m.Remnoise,
		}
	case *ardupilotmega.MessageRadioStatus:
		return &mavlink.RadioStatus{Radio: mavlink.Radio{
			RxErrors: m.Rxerrors,
			Fixed:    m.Fixed,
			RSSI:     m.Rssi,
			RemRSSI:  m.Remrssi,
			TxBuf:    m.Txbuf,
			Noise:    m.Noise,
			RemNoise: m.Remnoise,
		}}
	case *ardupilotmega.MessageRcChannelsRaw:
		return &mavlink.RCChannelsRaw{
			Port: m.Port,
			Channels: [8]uint16{
				m.Chan1Raw, m.Chan2Raw, m.Chan3Raw, m.Chan4Raw,
				m.Chan5Raw, m.Chan6Raw, m.Chan7Raw, m.Chan8Raw,
			},
			RSSI: m.Rssi,
		}
	case *ardupilotmega.MessageServoOutputRaw:
		return &mavlink.ServoOutputRaw{
			Port: m.Port,
			Servos: [16]uint16{
				m.Servo1Raw, m.Servo2Raw, m.Servo3Raw, m.Servo4Raw,
				m.Servo5Raw, m.Servo6Raw, m.Servo7Raw, m.Servo8Raw,
				m.Servo9Raw, m.Servo10Raw, m.Servo11Raw, m.Servo12Raw,
				m.Servo13Raw, m.Servo14Raw, m.Servo15Raw, m.Servo16Raw,
			},
		}
	case *ardupilotmega.MessageCameraFeedback:
		return &mavlink.CameraFeedback{
			TimeUsec:    m.TimeUsec,
			CameraIndex: m.CamIdx,
			ImageIndex:  m.ImgIdx,
			Lat:         m.Lat,
			Lng:         m.Lng,
			AltMSL:      m.AltMsl,
			AltRel:      m.AltRel,
			Roll:        m.Roll,
			Pitch:       m.Pitch,
			Yaw:         m.Yaw,
			FocalLength: m.FocLen,
		}
	case *ardupilotmega.MessageMountStatus:
		return &mavlink.MountStatus{PointingA: m.PointingA, PointingB: m.PointingB, PointingC: m.PointingC}
	case *ardupilotmega.MessageNamedValueInt:
		return &mavlink.NamedValueInt{Name: m.Name, Value: m.Value}
	case *ardupilotmega.MessageMagCalProgress:
		return &mavlink.MagCalProgress{
			CompassID:     m.CompassId,
			CalMask:       m.CalMask,
			CalStatus:     uint8(m.CalStatus),
			Attempt:       m.Attempt,
			CompletionPct: m.CompletionPct,
		}
	case *ardupilotmega.MessageMagCalReport:
		return &mavlink.MagCalReport{
			CompassID: m.CompassId,
			CalMask:   m.CalMask,
			CalStatus: uint8(m.CalStatus),
			Autosaved: m.Autosaved,
			Fitness:   m.Fitness,
			OfsX:      m.OfsX,
			OfsY:      m.OfsY,
			OfsZ:      m.OfsZ,
		}
	case *ardupilotmega.MessageAttitude:
		return &mavlink.Attitude{Roll: m.Roll, Pitch: m.Pitch, Yaw: m.Yaw}
	case *ardupilotmega.MessageGlobalPositionInt:
		return &mavlink.GlobalPositionInt{
			Lat:         m.Lat,
			Lon:         m.Lon,
			Alt:         m.Alt,
			RelativeAlt: m.RelativeAlt,
			Hdg:         m.Hdg,
		}
	case *ardupilotmega.MessageGpsRawInt:
		return &mavlink.GPSRawInt{
			FixType:           uint8(m.FixType),
			Lat:               m.Lat,
			Lon:               m.Lon,
			Eph:               m.Eph,
			SatellitesVisible: m.SatellitesVisible,
		}
	case *ardupilotmega.MessageHomePosition:
		return &mavlink.HomePosition{Latitude: m.Latitude, Longitude: m.Longitude, Altitude: m.Altitude}
	case *ardupilotmega.MessageCommandAck:
		return &mavlink.CommandAck{Command: mavlink.Cmd(m.Command), Result: mavlink.Result(m.Result)}
	case *ardupilotmega.MessageParamValue:
		return &mavlink.ParamValue{
			ParamID: m.ParamId,
			Value:   m.ParamValue,
			Type:    uint8(m.ParamType),
			Count:   m.ParamCount,
			Index:   m.ParamIndex,
		}
	default:
		return nil
	}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// encode converts an outgoing record into its dialect message.
func encode(p mavlink.Payload) (message.Message, error) {
	switch r := p.(type) {
	case *mavlink.CommandLong:
		return &ardupilotmega.MessageCommandLong{
			TargetSystem:    r.TargetSystem,
			TargetComponent: r.TargetComponent,
			Command:         common.MAV_CMD(r.Command),
			Confirmation:    r.Confirmation,
			Param1:          r.Params[0],
			Param2:          r.Params[1],
			Param3:          r.Params[2],
			Param4:          r.Params[3],
			Param5:          r.Params[4],
			Param6:          r.Params[5],
			Param7:          r.Params[6],
		}, nil
	case *mavlink.ParamSet:
		return &ardupilotmega.MessageParamSet{
			TargetSystem:    r.TargetSystem,
			TargetComponent: r.TargetComponent,
			ParamId:         r.ParamID,
			ParamValue:      r.Value,
			ParamType:       ardupilotmega.MAV_PARAM_TYPE(r.Type),
		}, nil
	case *mavlink.ParamRequestList:
		return &ardupilotmega.MessageParamRequestList{
			TargetSystem:    r.TargetSystem,
			TargetComponent: r.TargetComponent,
		}, nil
	case *mavlink.ParamRequestRead:
		return &ardupilotmega.MessageParamRequestRead{
			TargetSystem:    r.TargetSystem,
			TargetComponent: r.TargetComponent,
			ParamId:         r.ParamID,
			ParamIndex:      -1,
		}, nil
	case *mavlink.MountConfigure:
		return &ardupilotmega.MessageMountConfigure{
			TargetSystem:    r.TargetSystem,
			TargetComponent: r.TargetComponent,
			MountMode:       ardupilotmega.MAV_MOUNT_MODE(r.Mode),
			StabRoll:        boolByte(r.StabRoll),
			StabPitch:       boolByte(r.StabPitch),
			StabYaw:         boolByte(r.StabYaw),
		}, nil
	case *mavlink.SetPositionTarget:
		return &ardupilotmega.MessageSetPositionTargetLocalNed{
			TargetSystem:    r.TargetSystem,
			TargetComponent: r.TargetComponent,
			CoordinateFrame: ardupilotmega.MAV_FRAME(mavlink.FrameLocalNED),
			TypeMask:        ardupilotmega.POSITION_TARGET_TYPEMASK(velocityOnlyMask),
			Vx:              r.Vx,
			Vy:              r.Vy,
			Vz:              r.Vz,
		}, nil
	case *mavlink.MissionItemInt:
		return &ardupilotmega.MessageMissionItemInt{
			TargetSystem:    r.TargetSystem,
			TargetComponent: r.TargetComponent,
			Seq:             r.Seq,
			Frame:           ardupilotmega.MAV_FRAME(r.Frame),
			Command:         common.MAV_CMD(r.Command),
			Current:         r.Current,
			Autocontinue:    r.Autocontinue,
			X:               r.Lat,
			Y:               r.Lon,
			Z:               r.Alt,
		}, nil
	case *mavlink.CommandAck:
		return &ardupilotmega.MessageCommandAck{
			Command: common.MAV_CMD(r.Command),
			Result:  ardupilotmega.MAV_RESULT(r.Result),
		}, nil
	case *mavlink.Raw:
		return &message.MessageRaw{ID: uint32(r.ID), Payload: r.Data}, nil
	default:
		return nil, fmt.Errorf("cannot encode %T", p)
	}
}

// velocityOnlyMask ignores position, acceleration, yaw and yaw rate.
const velocityOnlyMask = 0b0000_1101_1100_0111
