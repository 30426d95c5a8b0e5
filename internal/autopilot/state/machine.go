// Package state implements the vehicle state machine: arm state, flight
// detection, failsafe, flight mode and firmware identity. It is driven
// exclusively by inbound heartbeat and status messages.
package state

import (
	"context"
	"fmt"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/pkg/log"
)

const armMaskName = "ARMMASK"

// Config tunes the timing behaviour of the state machine.
type Config struct {
	// FailsafeWarningInterval is the minimum delay between two repeated
	// failsafe warnings. Zero repeats the warning on every heartbeat.
	FailsafeWarningInterval time.Duration
	// HeartbeatTimeout is the silence after which the link is reported lost.
	HeartbeatTimeout time.Duration
	// AutopilotErrorTTL bounds how long an autopilot error line is reused as
	// the failsafe warning text. Zero keeps it until cleared.
	AutopilotErrorTTL time.Duration
}

// DefaultConfig returns the timings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		FailsafeWarningInterval: 5 * time.Second,
		HeartbeatTimeout:        3 * time.Second,
		AutopilotErrorTTL:       30 * time.Second,
	}
}

// HeartbeatState tracks the autopilot heartbeat watchdog.
type HeartbeatState string

const (
	HeartbeatNone HeartbeatState = "none"
	HeartbeatOK   HeartbeatState = "ok"
	HeartbeatLost HeartbeatState = "lost"
)

// Status is a point-in-time copy of the vehicle state.
type Status struct {
	Armed           bool                 `json:"armed"`
	Flying          bool                 `json:"flying"`
	Failsafe        bool                 `json:"failsafe"`
	Mode            FlightMode           `json:"mode"`
	VehicleType     mavlink.VehicleType  `json:"vehicleType"`
	Family          Family               `json:"family"`
	SystemStatus    mavlink.SystemStatus `json:"systemStatus"`
	FirmwareVersion string               `json:"firmwareVersion,omitempty"`
	AutopilotError  string               `json:"autopilotError,omitempty"`
	FlightTime      time.Duration        `json:"flightTime"`
	Heartbeat       HeartbeatState       `json:"heartbeat"`
}

// Machine owns the vehicle state. It is not safe for concurrent use and must
// only be driven from the vehicle's processing context.
type Machine struct {
	cfg      Config
	clock    clock.PassiveClock
	notifier core.Notifier
	logger   log.Logger

	arm *armMachine

	typeSeen       bool
	vehicleType    mavlink.VehicleType
	family         Family
	systemStatus   mavlink.SystemStatus
	flying         bool
	failsafe       bool
	mode           FlightMode
	firmware       string
	autopilotError string

	flightStart      time.Time
	flightTime       time.Duration
	lastWarning      time.Time
	autopilotErrorAt time.Time

	heartbeat     HeartbeatState
	lastHeartbeat time.Time
}

func NewMachine(cfg Config, clk clock.PassiveClock, notifier core.Notifier, logger log.Logger) *Machine {
	m := &Machine{
		cfg:       cfg,
		clock:     clk,
		notifier:  notifier,
		logger:    logger.WithName("state"),
		heartbeat: HeartbeatNone,
		mode:      ResolveMode(FamilyUnknown, 0),
	}
	m.arm = newArmMachine(m.onArmChanged)
	return m
}

// NextFlying applies the flight detection hysteresis: a vehicle starts flying
// on an ACTIVE status and keeps flying through CRITICAL and EMERGENCY.
func NextFlying(wasFlying bool, s mavlink.SystemStatus) bool {
	if s == mavlink.StateActive {
		return true
	}
	return wasFlying && isFailsafeStatus(s)
}

func isFailsafeStatus(s mavlink.SystemStatus) bool {
	return s == mavlink.StateCritical || s == mavlink.StateEmergency
}

// HandleHeartbeat updates the state from an autopilot heartbeat.
func (m *Machine) HandleHeartbeat(hb *mavlink.Heartbeat) {
	m.touchHeartbeat()
	m.setVehicleType(hb.Type)
	m.systemStatus = hb.SystemStatus

	m.setFlying(NextFlying(m.flying, hb.SystemStatus))
	if err := m.arm.set(context.Background(), hb.Armed()); err != nil {
		m.logger.Error(err, "Failed to update arm state", "armed", hb.Armed())
	}
	m.setFailsafe(isFailsafeStatus(hb.SystemStatus))
	m.setMode(ResolveMode(m.family, hb.CustomMode))
}

func (m *Machine) setVehicleType(t mavlink.VehicleType) {
	if m.typeSeen && t == m.vehicleType {
		return
	}
	m.typeSeen = true
	m.vehicleType = t
	m.family = FamilyOf(t)
	m.notify(core.EventVehicleType, t)
}

func (m *Machine) setFlying(flying bool) {
	if flying == m.flying {
		return
	}
	now := m.clock.Now()
	if flying {
		m.flightStart = now
	} else {
		m.flightTime += now.Sub(m.flightStart)
	}
	m.flying = flying
	m.notify(core.EventFlying, flying)
}

func (m *Machine) onArmChanged(armed bool) {
	m.logger.Debug("Arm state changed", "armed", armed)
	m.notify(core.EventArming, armed)
}

func (m *Machine) setFailsafe(active bool) {
	if active != m.failsafe {
		m.failsafe = active
		m.notify(core.EventFailsafe, active)
		if !active {
			m.lastWarning = time.Time{}
			m.SetAutopilotError("")
		}
	}
	if active {
		m.repeatWarning()
	}
}

// repeatWarning re-issues the failsafe warning while the condition persists,
// at most once per FailsafeWarningInterval.
func (m *Machine) repeatWarning() {
	now := m.clock.Now()
	if !m.lastWarning.IsZero() && now.Sub(m.lastWarning) < m.cfg.FailsafeWarningInterval {
		return
	}
	m.lastWarning = now

	text := m.currentAutopilotError()
	if text == "" {
		text = fmt.Sprintf("Failsafe: vehicle reports %s", m.systemStatus)
	}
	m.notifier.LogMessage(core.LogError, text)
}

// setMode stores and publishes the resolved mode on every heartbeat. Mode
// events overwrite, so repeats are harmless to subscribers.
func (m *Machine) setMode(mode FlightMode) {
	if mode != m.mode {
		m.logger.Debug("Flight mode changed", "from", m.mode.Name, "to", mode.Name)
	}
	m.mode = mode
	m.notify(core.EventMode, mode)
}

func (m *Machine) touchHeartbeat() {
	m.lastHeartbeat = m.clock.Now()
	switch m.heartbeat {
	case HeartbeatNone:
		m.heartbeat = HeartbeatOK
		m.notify(core.EventHeartbeatFirst, nil)
	case HeartbeatLost:
		m.heartbeat = HeartbeatOK
		m.notify(core.EventHeartbeatRestored, nil)
	}
}

// CheckHeartbeat reports a lost link when no heartbeat arrived within
// HeartbeatTimeout. It is called periodically from the processing context.
func (m *Machine) CheckHeartbeat() {
	if m.heartbeat != HeartbeatOK || m.cfg.HeartbeatTimeout <= 0 {
		return
	}
	if m.clock.Since(m.lastHeartbeat) > m.cfg.HeartbeatTimeout {
		m.heartbeat = HeartbeatLost
		m.logger.Warn("Heartbeat lost", "silence", m.clock.Since(m.lastHeartbeat))
		m.notify(core.EventHeartbeatTimeout, nil)
	}
}

// HandleNamedValue interprets the ARMMASK readiness bitmask. Other names are
// left to collaborators.
func (m *Machine) HandleNamedValue(nv *mavlink.NamedValueInt) {
	if nv.Name != armMaskName || m.family != FamilyCopter || m.mode.Number >= 32 {
		return
	}
	readiness := "UNREADY FOR ARMING"
	if uint32(nv.Value)&(1<<m.mode.Number) != 0 {
		readiness = "READY TO ARM"
	}
	m.notifier.LogMessage(core.LogInfo, readiness)
}

// SetFirmwareVersion stores the firmware identity line.
func (m *Machine) SetFirmwareVersion(v string) {
	if v == m.firmware {
		return
	}
	m.firmware = v
	m.notify(core.EventFirmware, v)
}

// SetAutopilotError stores the last autopilot error. An empty string clears it.
func (m *Machine) SetAutopilotError(text string) {
	m.autopilotErrorAt = m.clock.Now()
	if text == m.autopilotError {
		return
	}
	m.autopilotError = text
	m.notify(core.EventAutopilotError, text)
}

// currentAutopilotError returns the stored error unless it is older than
// AutopilotErrorTTL, in which case it is dropped.
func (m *Machine) currentAutopilotError() string {
	if m.autopilotError == "" || m.cfg.AutopilotErrorTTL <= 0 {
		return m.autopilotError
	}
	if m.clock.Since(m.autopilotErrorAt) > m.cfg.AutopilotErrorTTL {
		m.autopilotError = ""
	}
	return m.autopilotError
}

func (m *Machine) notify(t core.EventType, data any) {
	m.notifier.NotifyEvent(core.Event{Type: t, Data: data})
}

func (m *Machine) Armed() bool                      { return m.arm.Armed() }
func (m *Machine) Flying() bool                     { return m.flying }
func (m *Machine) Failsafe() bool                   { return m.failsafe }
func (m *Machine) Mode() FlightMode                 { return m.mode }
func (m *Machine) Family() Family                   { return m.family }
func (m *Machine) VehicleType() mavlink.VehicleType { return m.vehicleType }
func (m *Machine) FirmwareVersion() string          { return m.firmware }

// FlightTime returns the accumulated airborne time, including the current
// flight if one is in progress.
func (m *Machine) FlightTime() time.Duration {
	if m.flying {
		return m.flightTime + m.clock.Since(m.flightStart)
	}
	return m.flightTime
}

// Status returns a copy of the current state.
func (m *Machine) Status() Status {
	return Status{
		Armed:           m.Armed(),
		Flying:          m.flying,
		Failsafe:        m.failsafe,
		Mode:            m.mode,
		VehicleType:     m.vehicleType,
		Family:          m.family,
		SystemStatus:    m.systemStatus,
		FirmwareVersion: m.firmware,
		AutopilotError:  m.currentAutopilotError(),
		FlightTime:      m.FlightTime(),
		Heartbeat:       m.heartbeat,
	}
}
