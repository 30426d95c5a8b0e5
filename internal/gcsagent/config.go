package gcsagent

import (
	"fmt"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/gcslink/internal/autopilot/ardupilot"
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/loop"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/internal/autopilot/state"
	"github.com/autopeer-io/gcslink/internal/bridge"
	"github.com/autopeer-io/gcslink/internal/calibration"
	"github.com/autopeer-io/gcslink/internal/geotag"
	"github.com/autopeer-io/gcslink/internal/link"
	"github.com/autopeer-io/gcslink/internal/paramcache"
	"github.com/autopeer-io/gcslink/internal/server"
	"github.com/autopeer-io/gcslink/pkg/log"
	"github.com/autopeer-io/gcslink/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/gcslink/pkg/mqtt/topic"
	"github.com/autopeer-io/gcslink/pkg/options"
)

type Config struct {
	MavlinkOptions *options.MavlinkOptions
	VehicleOptions *options.VehicleOptions
	MqttOptions    *options.MqttOptions
	HttpOptions    *options.HttpOptions
	S3Options      *options.S3Options
}

func (cfg *Config) linkConfig() link.Config {
	return link.Config{
		Endpoints:      cfg.MavlinkOptions.Endpoints,
		SystemID:       cfg.MavlinkOptions.SystemID,
		ComponentID:    cfg.MavlinkOptions.ComponentID,
		V1:             cfg.MavlinkOptions.V1,
		CommandTimeout: cfg.MavlinkOptions.CommandTimeout,
		StreamRate:     cfg.MavlinkOptions.StreamRate,
	}
}

func (cfg *Config) stateConfig() state.Config {
	return state.Config{
		FailsafeWarningInterval: cfg.VehicleOptions.FailsafeWarningInterval,
		HeartbeatTimeout:        cfg.VehicleOptions.HeartbeatTimeout,
		AutopilotErrorTTL:       cfg.VehicleOptions.AutopilotErrorTTL,
	}
}

// NewAgent wires the vehicle's processing loop, its MAVLink link and the
// collaborators, then attaches the enabled outer surfaces as notifiers.
func (cfg *Config) NewAgent() (*Agent, error) {
	vid := cfg.VehicleOptions.ID
	logger := log.WithValues("vehicleID", vid)
	clk := clock.RealClock{}

	l := loop.New(clk, logger)

	lnk, err := link.New(cfg.linkConfig(), l, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open mavlink link: %w", err)
	}

	// Members are appended below, before anything runs.
	notifiers := core.Notifiers{newLogMirror(logger.WithName("vehicle"))}

	var vehicle *ardupilot.Vehicle
	target := func() mavlink.Identity { return vehicle.Target() }

	params := paramcache.New(paramcache.Config{
		Target:         target,
		Transport:      lnk,
		Notifier:       &notifiers,
		Executor:       l,
		Clock:          clk,
		Logger:         logger,
		RefreshTimeout: cfg.VehicleOptions.ParamRefreshTimeout,
	})
	calib := calibration.New(target, lnk, &notifiers, logger)

	vehicle = ardupilot.New(ardupilot.Config{
		State:         cfg.stateConfig(),
		Clock:         clk,
		Executor:      l,
		Logger:        logger,
		Transport:     lnk,
		Notifier:      &notifiers,
		Params:        params,
		Calibrator:    calib,
		MagCalibrator: calib,
	})

	a := &Agent{
		vid:     vid,
		loop:    l,
		link:    lnk,
		vehicle: vehicle,
		params:  params,
		logger:  logger,
	}
	l.Every(time.Second, a.checkHeartbeat)

	hub := server.NewHub(logger.WithName("events"))
	notifiers = append(notifiers, hub)
	a.server = server.NewServer(cfg.HttpOptions, a, hub, logger.WithName("http"))

	if cfg.MqttOptions.Enabled() {
		b, err := cfg.newBridge(vid, vehicle, l, logger)
		if err != nil {
			lnk.Close()
			return nil, err
		}
		notifiers = append(notifiers, b)
		a.bridge = b
	}

	if cfg.S3Options.Enabled() {
		store, err := geotag.NewMinIOStore(cfg.S3Options, logger.WithName("s3"))
		if err != nil {
			lnk.Close()
			return nil, err
		}
		archive := geotag.NewArchive(vid, store, cfg.S3Options.UploadTimeout, logger.WithName("geotag"))
		notifiers = append(notifiers, archive)
		a.archive = archive
	}

	return a, nil
}

func (cfg *Config) newBridge(vid string, vehicle *ardupilot.Vehicle, exec core.Executor, logger log.Logger) (*bridge.Bridge, error) {
	codec, err := bridge.NewCodec(cfg.MqttOptions.Encoding)
	if err != nil {
		return nil, err
	}
	topics := mqtttopic.NewBuilder(cfg.MqttOptions.TopicRoot)

	mqttConfig := cfg.MqttOptions.ToClientConfig()
	if mqttConfig.ClientID == "" {
		mqttConfig.ClientID = fmt.Sprintf("cpeer-gcs-agent-%s", vid)
	}
	mqttConfig.WillTopic, mqttConfig.WillPayload, err = bridge.WillMessage(topics, codec, vid)
	if err != nil {
		return nil, err
	}
	mqttConfig.WillQoS = mqtt.AtLeastOnce
	mqttConfig.WillRetain = true
	mqttConfig.Logger = logger.WithName("mqtt")

	mqttClient, err := mqtt.NewClient(mqttConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to init mqtt client: %w", err)
	}

	return bridge.New(bridge.Config{
		VehicleID: vid,
		Client:    mqttClient,
		Topics:    topics,
		Codec:     codec,
		Drone:     vehicle,
		Executor:  exec,
		Logger:    logger.WithName("mqtt"),
	}), nil
}
