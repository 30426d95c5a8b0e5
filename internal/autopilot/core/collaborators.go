// Package core holds the contracts shared by the autopilot state machine,
// the action dispatcher and their collaborators.
package core

import "github.com/autopeer-io/gcslink/internal/autopilot/mavlink"

// Executor runs functions on the serialized processing context of a vehicle.
type Executor interface {
	Post(fn func())
}

// ExecutorFunc adapts a function to an Executor.
type ExecutorFunc func(fn func())

func (f ExecutorFunc) Post(fn func()) { f(fn) }

// Immediate runs posted functions inline. Callers must already be on the
// processing context.
var Immediate Executor = ExecutorFunc(func(fn func()) { fn() })

// Transport sends outgoing records. The listener is resolved on the
// processing context once the exchange completes or times out.
type Transport interface {
	Send(msg mavlink.Payload, l Listener)
}

// MessageProcessor may claim an inbound message. A claimed message is not
// processed any further.
type MessageProcessor interface {
	ProcessMessage(msg *mavlink.Message) bool
}

// ParameterStore is read-only from the core's point of view; writes and
// refreshes are requests the store fulfils asynchronously.
type ParameterStore interface {
	MessageProcessor
	Get(name string) (float64, bool)
	Write(name string, value float64, l Listener)
	Refresh(l Listener)
}

// MissionItem is one navigation command of a mission.
type MissionItem struct {
	Command mavlink.Cmd `json:"command"`
	Lat     float64     `json:"lat"`
	Lon     float64     `json:"lon"`
	Alt     float32     `json:"alt"`
	Params  [4]float32  `json:"params"`
}

// MissionSync transfers missions to and from the vehicle.
type MissionSync interface {
	MessageProcessor
	Load(l Listener)
	Upload(items []MissionItem, l Listener)
}

// Calibrator runs the accelerometer calibration.
type Calibrator interface {
	MessageProcessor
	StartIMU(l Listener)
	AckIMU(step int, l Listener)
}

// MagCalibrator runs the onboard compass calibration.
type MagCalibrator interface {
	MessageProcessor
	StartMag(retryOnFailure, saveAutomatically bool, startDelay int, l Listener)
	CancelMag(l Listener)
	AcceptMag(l Listener)
}

// ErrorParser claims status texts that describe autopilot errors.
type ErrorParser interface {
	TryParse(text string) bool
}
