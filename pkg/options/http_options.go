package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*HttpOptions)(nil)

// HttpOptions configures the probe, metrics and vehicle API server.
type HttpOptions struct {
	Addr string `json:"addr" mapstructure:"addr"`

	// ReadTimeout bounds reading a request. Responses have no write timeout
	// because the event stream is long-lived.
	ReadTimeout time.Duration `json:"read-timeout" mapstructure:"read-timeout"`

	// RequestTimeout bounds building a vehicle snapshot.
	RequestTimeout time.Duration `json:"request-timeout" mapstructure:"request-timeout"`

	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

func NewHttpOptions() *HttpOptions {
	return &HttpOptions{
		Addr:            "0.0.0.0:8080",
		ReadTimeout:     30 * time.Second,
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

func (o *HttpOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if err := ValidateAddress(o.Addr); err != nil {
		errors = append(errors, fmt.Errorf("--http.addr: %w", err))
	}
	if o.RequestTimeout <= 0 {
		errors = append(errors, fmt.Errorf("--http.request-timeout must be positive"))
	}

	return errors
}

func (o *HttpOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Addr, "http.addr", o.Addr, "Address serving /healthz, /readyz, /metrics and the vehicle API.")
	fs.DurationVar(&o.ReadTimeout, "http.read-timeout", o.ReadTimeout, "Timeout for reading a request.")
	fs.DurationVar(&o.RequestTimeout, "http.request-timeout", o.RequestTimeout, "Timeout for building a vehicle snapshot.")
	fs.DurationVar(&o.ShutdownTimeout, "http.shutdown-timeout", o.ShutdownTimeout, "Grace period for open requests on shutdown.")
}
