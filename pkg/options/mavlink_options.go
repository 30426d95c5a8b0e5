package options

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*MavlinkOptions)(nil)

var endpointSchemes = []string{"udps", "udpc", "udpb", "tcps", "tcpc", "serial"}

// MavlinkOptions configures the MAVLink link to the autopilot.
type MavlinkOptions struct {
	// Endpoints in the form udps:addr, udpc:addr, udpb:addr, tcps:addr,
	// tcpc:addr or serial:device[:baud]. The device "auto" picks the first
	// detected USB serial port.
	Endpoints []string `json:"endpoints" mapstructure:"endpoints"`

	SystemID    uint8 `json:"system-id" mapstructure:"system-id"`
	ComponentID uint8 `json:"component-id" mapstructure:"component-id"`

	// V1 sends MAVLink 1 frames.
	V1 bool `json:"v1" mapstructure:"v1"`

	CommandTimeout time.Duration `json:"command-timeout" mapstructure:"command-timeout"`

	// StreamRate requests telemetry streams at this rate in Hz. Zero disables the request.
	StreamRate int `json:"stream-rate" mapstructure:"stream-rate"`
}

// NewMavlinkOptions listens on the default ground station UDP port.
func NewMavlinkOptions() *MavlinkOptions {
	return &MavlinkOptions{
		Endpoints:      []string{"udps:0.0.0.0:14550"},
		SystemID:       255,
		ComponentID:    190,
		CommandTimeout: 3 * time.Second,
		StreamRate:     4,
	}
}

func (o *MavlinkOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if len(o.Endpoints) == 0 {
		errors = append(errors, fmt.Errorf("--mavlink.endpoints must not be empty"))
	}
	for _, e := range o.Endpoints {
		scheme, _, _ := strings.Cut(e, ":")
		if !slices.Contains(endpointSchemes, scheme) {
			errors = append(errors, fmt.Errorf("endpoint %q: unknown kind %q", e, scheme))
		}
	}
	if o.SystemID == 0 {
		errors = append(errors, fmt.Errorf("--mavlink.system-id must be in 1..255"))
	}
	if o.CommandTimeout <= 0 {
		errors = append(errors, fmt.Errorf("--mavlink.command-timeout must be positive"))
	}
	if o.StreamRate < 0 {
		errors = append(errors, fmt.Errorf("--mavlink.stream-rate must not be negative"))
	}

	return errors
}

func (o *MavlinkOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.Endpoints, "mavlink.endpoints", o.Endpoints, "MAVLink endpoints: udps:addr, udpc:addr, udpb:addr, tcps:addr, tcpc:addr or serial:device[:baud] (device 'auto' detects a USB port).")
	fs.Uint8Var(&o.SystemID, "mavlink.system-id", o.SystemID, "System ID of this ground station.")
	fs.Uint8Var(&o.ComponentID, "mavlink.component-id", o.ComponentID, "Component ID of this ground station.")
	fs.BoolVar(&o.V1, "mavlink.v1", o.V1, "Send MAVLink 1 frames.")
	fs.DurationVar(&o.CommandTimeout, "mavlink.command-timeout", o.CommandTimeout, "How long to wait for a command acknowledgement.")
	fs.IntVar(&o.StreamRate, "mavlink.stream-rate", o.StreamRate, "Requested telemetry stream rate in Hz, 0 to leave the vehicle's setting.")
}
