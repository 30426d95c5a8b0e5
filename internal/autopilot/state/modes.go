package state

import (
	"sort"

	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

// Family is the firmware family of the vehicle, derived from MAV_TYPE.
type Family string

const (
	FamilyUnknown Family = ""
	FamilyCopter  Family = "copter"
	FamilyPlane   Family = "plane"
	FamilyRover   Family = "rover"
)

// FamilyOf returns the firmware family of a vehicle type.
func FamilyOf(t mavlink.VehicleType) Family {
	switch t {
	case mavlink.TypeQuadrotor, mavlink.TypeCoaxial, mavlink.TypeHelicopter,
		mavlink.TypeHexarotor, mavlink.TypeOctorotor, mavlink.TypeTricopter,
		mavlink.TypeDodecarotor:
		return FamilyCopter
	case mavlink.TypeFixedWing, mavlink.TypeVTOLDuorotor, mavlink.TypeVTOLQuadrotor,
		mavlink.TypeVTOLTiltrotor, mavlink.TypeVTOLReserved2:
		return FamilyPlane
	case mavlink.TypeGroundRover, mavlink.TypeSurfaceBoat:
		return FamilyRover
	default:
		return FamilyUnknown
	}
}

// FlightMode is a firmware mode resolved from the heartbeat custom mode.
type FlightMode struct {
	Number uint32 `json:"number"`
	Name   string `json:"name"`
	Family Family `json:"family"`
}

const unknownModeName = "Unknown"

var modeTables = map[Family]map[uint32]string{
	FamilyCopter: {
		0: "Stabilize", 1: "Acro", 2: "Alt Hold", 3: "Auto", 4: "Guided",
		5: "Loiter", 6: "RTL", 7: "Circle", 9: "Land", 11: "Drift",
		13: "Sport", 14: "Flip", 15: "AutoTune", 16: "PosHold", 17: "Brake",
		18: "Throw", 19: "Avoid ADSB", 20: "Guided NoGPS", 21: "Smart RTL",
	},
	FamilyPlane: {
		0: "Manual", 1: "Circle", 2: "Stabilize", 3: "Training", 4: "Acro",
		5: "FBWA", 6: "FBWB", 7: "Cruise", 8: "Autotune", 10: "Auto",
		11: "RTL", 12: "Loiter", 15: "Guided", 16: "Initialising",
	},
	FamilyRover: {
		0: "Manual", 2: "Learning", 3: "Steering", 4: "Hold", 10: "Auto",
		11: "RTL", 15: "Guided", 16: "Initialising",
	},
}

// ResolveMode maps a custom mode number to a FlightMode. Numbers outside the
// family table resolve to an "Unknown" mode that keeps the raw number.
func ResolveMode(f Family, number uint32) FlightMode {
	name, ok := modeTables[f][number]
	if !ok {
		name = unknownModeName
	}
	return FlightMode{Number: number, Name: name, Family: f}
}

// ModeByName looks up a mode of the family by its display name.
func ModeByName(f Family, name string) (FlightMode, bool) {
	for n, label := range modeTables[f] {
		if label == name {
			return FlightMode{Number: n, Name: label, Family: f}, true
		}
	}
	return FlightMode{}, false
}

// Modes lists the modes of a family ordered by number.
func Modes(f Family) []FlightMode {
	table := modeTables[f]
	out := make([]FlightMode, 0, len(table))
	for n, name := range table {
		out = append(out, FlightMode{Number: n, Name: name, Family: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Known reports whether the mode was found in the family table.
func (m FlightMode) Known() bool { return m.Name != "" && m.Name != unknownModeName }
