// Package statustext classifies STATUSTEXT lines into firmware identity,
// autopilot errors and plain log output.
package statustext

import (
	"strings"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

var firmwarePrefixes = []string{
	"ArduCopter", "ArduPlane", "ArduRover", "Solo",
	"APM:Copter", "APM:Plane", "APM:Rover",
}

// Class is the outcome of a classification.
type Class int

const (
	ClassIgnored Class = iota
	ClassFirmware
	ClassAutopilotError
	ClassLog
)

// LevelFor maps a legacy severity onto a log level. Unknown codes log at
// verbose.
func LevelFor(sev mavlink.Severity) core.LogLevel {
	switch sev {
	case mavlink.SeverityCritical:
		return core.LogError
	case mavlink.SeverityHigh:
		return core.LogWarn
	case mavlink.SeverityMedium:
		return core.LogInfo
	case mavlink.SeverityUserResponse:
		return core.LogDebug
	default:
		return core.LogVerbose
	}
}

// IsFirmwareIdentity reports whether text is a firmware banner line.
func IsFirmwareIdentity(text string) bool {
	for _, p := range firmwarePrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// FirmwareSink receives firmware banner lines.
type FirmwareSink interface {
	SetFirmwareVersion(v string)
}

// Classifier routes a status text to exactly one destination.
type Classifier struct {
	firmware FirmwareSink
	parser   core.ErrorParser
	notifier core.Notifier
}

// NewClassifier builds a classifier. A nil parser never claims a text.
func NewClassifier(firmware FirmwareSink, parser core.ErrorParser, notifier core.Notifier) *Classifier {
	return &Classifier{firmware: firmware, parser: parser, notifier: notifier}
}

// Classify handles st and reports where it went.
func (c *Classifier) Classify(st *mavlink.StatusText) Class {
	text := st.Text
	if text == "" {
		return ClassIgnored
	}

	if IsFirmwareIdentity(text) {
		c.firmware.SetFirmwareVersion(text)
		return ClassFirmware
	}

	if c.parser != nil && c.parser.TryParse(text) {
		return ClassAutopilotError
	}

	c.notifier.LogMessage(LevelFor(st.Severity), text)
	return ClassLog
}
