package statustext

import "strings"

// Prefixes and lines ArduPilot uses to report conditions that prevent arming
// or flight.
var (
	errorPrefixes = []string{
		"PreArm:", "Arm:", "Crash:", "Parachute:", "EKF", "Autotune:", "Motor Test:",
	}
	errorLines = map[string]struct{}{
		"Low Battery!":           {},
		"Lost GPS!":              {},
		"No dataflash inserted":  {},
		"Leaning":                {},
		"Mode not armable":       {},
		"Altitude disparity":     {},
		"Waiting for nav checks": {},
		"Throttle armed":         {},
		"Safety Switch":          {},
		"Gyro cal failed":        {},
		"Bad AHRS":               {},
		"Fence Breached":         {},
		"GPS Glitch":             {},
		"Compass variance":       {},
		"Radio Failsafe":         {},
		"Battery Failsafe":       {},
		"GCS Failsafe":           {},
		"Check fence":            {},
		"Bad Velocity":           {},
		"Check mag field":        {},
		"Need 3D Fix":            {},
	}
)

// ErrorParser claims ArduPilot error texts and forwards them to a sink.
type ErrorParser struct {
	onError func(text string)
}

// NewErrorParser returns a parser reporting claimed texts to onError.
func NewErrorParser(onError func(text string)) *ErrorParser {
	return &ErrorParser{onError: onError}
}

func (p *ErrorParser) TryParse(text string) bool {
	text = strings.TrimSpace(text)
	if !isError(text) {
		return false
	}
	if p.onError != nil {
		p.onError(text)
	}
	return true
}

func isError(text string) bool {
	if _, ok := errorLines[strings.TrimSuffix(text, ".")]; ok {
		return true
	}
	for _, prefix := range errorPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}
