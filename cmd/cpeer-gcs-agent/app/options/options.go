package options

import (
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/gcslink/internal/gcsagent"
	"github.com/autopeer-io/gcslink/pkg/app"
	"github.com/autopeer-io/gcslink/pkg/log"
	"github.com/autopeer-io/gcslink/pkg/options"
)

type GcsAgentOptions struct {
	MavlinkOptions *options.MavlinkOptions `json:"mavlink" mapstructure:"mavlink"`
	VehicleOptions *options.VehicleOptions `json:"vehicle" mapstructure:"vehicle"`
	MqttOptions    *options.MqttOptions    `json:"mqtt" mapstructure:"mqtt"`
	HttpOptions    *options.HttpOptions    `json:"http" mapstructure:"http"`
	S3Options      *options.S3Options      `json:"s3" mapstructure:"s3"`
	Log            *log.Options            `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*GcsAgentOptions)(nil)

func NewGcsAgentOptions() *GcsAgentOptions {
	return &GcsAgentOptions{
		MavlinkOptions: options.NewMavlinkOptions(),
		VehicleOptions: options.NewVehicleOptions(),
		MqttOptions:    options.NewMqttOptions(),
		HttpOptions:    options.NewHttpOptions(),
		S3Options:      options.NewS3Options(),
		Log:            log.NewOptions(),
	}
}

func (o *GcsAgentOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.MavlinkOptions.AddFlags(fss.FlagSet("mavlink"))
	o.VehicleOptions.AddFlags(fss.FlagSet("vehicle"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.S3Options.AddFlags(fss.FlagSet("s3"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

// Complete names the logger when no name was given.
func (o *GcsAgentOptions) Complete() error {
	if o.Log.Name == "" {
		o.Log.Name = "gcs-agent"
	}
	return nil
}

func (o *GcsAgentOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MavlinkOptions.Validate()...)
	errs = append(errs, o.VehicleOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.S3Options.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *GcsAgentOptions) Config() (*gcsagent.Config, error) {
	return &gcsagent.Config{
		MavlinkOptions: o.MavlinkOptions,
		VehicleOptions: o.VehicleOptions,
		MqttOptions:    o.MqttOptions,
		HttpOptions:    o.HttpOptions,
		S3Options:      o.S3Options,
	}, nil
}
