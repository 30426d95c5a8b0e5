package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*VehicleOptions)(nil)

// VehicleOptions identifies the vehicle and tunes its state machine.
type VehicleOptions struct {
	// ID names the vehicle on every outer surface (MQTT topics, object keys).
	ID string `json:"id" mapstructure:"id"`

	FailsafeWarningInterval time.Duration `json:"failsafe-warning-interval" mapstructure:"failsafe-warning-interval"`
	HeartbeatTimeout        time.Duration `json:"heartbeat-timeout" mapstructure:"heartbeat-timeout"`
	ParamRefreshTimeout     time.Duration `json:"param-refresh-timeout" mapstructure:"param-refresh-timeout"`
	AutopilotErrorTTL       time.Duration `json:"autopilot-error-ttl" mapstructure:"autopilot-error-ttl"`
}

func NewVehicleOptions() *VehicleOptions {
	return &VehicleOptions{
		ID:                      "drone-1",
		FailsafeWarningInterval: 5 * time.Second,
		HeartbeatTimeout:        3 * time.Second,
		ParamRefreshTimeout:     30 * time.Second,
		AutopilotErrorTTL:       30 * time.Second,
	}
}

func (o *VehicleOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.ID == "" {
		errors = append(errors, fmt.Errorf("--vehicle.id must not be empty"))
	}
	if o.HeartbeatTimeout <= 0 {
		errors = append(errors, fmt.Errorf("--vehicle.heartbeat-timeout must be positive"))
	}
	if o.FailsafeWarningInterval < 0 {
		errors = append(errors, fmt.Errorf("--vehicle.failsafe-warning-interval must not be negative"))
	}
	if o.ParamRefreshTimeout <= 0 {
		errors = append(errors, fmt.Errorf("--vehicle.param-refresh-timeout must be positive"))
	}
	if o.AutopilotErrorTTL < 0 {
		errors = append(errors, fmt.Errorf("--vehicle.autopilot-error-ttl must not be negative"))
	}

	return errors
}

func (o *VehicleOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.ID, "vehicle.id", o.ID, "Vehicle name used in MQTT topics and archived object keys.")
	fs.DurationVar(&o.FailsafeWarningInterval, "vehicle.failsafe-warning-interval", o.FailsafeWarningInterval, "Minimum delay between repeated failsafe warnings.")
	fs.DurationVar(&o.HeartbeatTimeout, "vehicle.heartbeat-timeout", o.HeartbeatTimeout, "Heartbeat silence after which the vehicle is reported lost.")
	fs.DurationVar(&o.ParamRefreshTimeout, "vehicle.param-refresh-timeout", o.ParamRefreshTimeout, "Deadline for a full parameter download.")
	fs.DurationVar(&o.AutopilotErrorTTL, "vehicle.autopilot-error-ttl", o.AutopilotErrorTTL, "How long an autopilot error is reused as failsafe warning text. Zero keeps it until cleared.")
}
