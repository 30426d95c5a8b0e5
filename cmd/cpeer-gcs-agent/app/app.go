package app

import (
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/gcslink/cmd/cpeer-gcs-agent/app/options"
	"github.com/autopeer-io/gcslink/pkg/app"
	"github.com/autopeer-io/gcslink/pkg/log"
)

const (
	commandName = "cpeer-gcs-agent"
	commandDesc = `The gcslink GCS agent talks MAVLink to one ArduPilot vehicle. It tracks
the vehicle's state, telemetry and parameters, executes commands received
over MQTT and serves health, metrics and a live event stream over HTTP.`
)

func NewApp() *app.App {
	opts := options.NewGcsAgentOptions()
	application := app.NewApp(
		commandName,
		"Launch a gcslink ground control agent",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.GcsAgentOptions) app.RunFunc {
	return func() error {
		ctx := genericapiserver.SetupSignalContext()

		log.Init(opts.Log)
		defer log.Sync()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		agent, err := cfg.NewAgent()
		if err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}

		return agent.Run(ctx)
	}
}
