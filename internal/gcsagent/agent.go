// Package gcsagent runs one vehicle: its processing loop, MAVLink link,
// collaborators and the outer surfaces operators connect to.
package gcsagent

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/autopeer-io/gcslink/internal/autopilot"
	"github.com/autopeer-io/gcslink/internal/autopilot/loop"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/internal/autopilot/state"
	"github.com/autopeer-io/gcslink/internal/autopilot/telemetry"
	"github.com/autopeer-io/gcslink/internal/bridge"
	"github.com/autopeer-io/gcslink/internal/geotag"
	"github.com/autopeer-io/gcslink/internal/link"
	"github.com/autopeer-io/gcslink/internal/paramcache"
	"github.com/autopeer-io/gcslink/internal/pkg/metrics"
	"github.com/autopeer-io/gcslink/internal/server"
	"github.com/autopeer-io/gcslink/pkg/log"
)

var (
	errLinkDown    = errors.New("mavlink link has no open channel")
	errNoHeartbeat = errors.New("no autopilot heartbeat")
)

type Agent struct {
	vid     string
	loop    *loop.Loop
	link    *link.Link
	vehicle autopilot.Drone
	params  *paramcache.Cache
	server  *server.Server
	bridge  *bridge.Bridge
	archive *geotag.Archive
	logger  log.Logger

	heartbeatOK atomic.Bool
}

var _ server.Source = (*Agent)(nil)

// VehicleView is the JSON document served on /api/v1/vehicle.
type VehicleView struct {
	ID         string             `json:"id"`
	Target     mavlink.Identity   `json:"target"`
	Status     state.Status       `json:"status"`
	Telemetry  telemetry.Snapshot `json:"telemetry"`
	Parameters int                `json:"parameters"`
}

// Run blocks until ctx is cancelled or a component fails.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("Starting cpeer-gcs-agent")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.loop.Run(ctx) })
	g.Go(func() error { return a.link.Run(ctx, a.vehicle.Route) })
	g.Go(func() error { return a.server.Start(ctx) })
	if a.bridge != nil {
		g.Go(func() error { return a.bridge.Run(ctx) })
	}
	if a.archive != nil {
		g.Go(func() error { return a.archive.Run(ctx) })
	}

	err := g.Wait()
	a.logger.Info("Agent shutting down...")
	return err
}

// checkHeartbeat runs on the loop.
func (a *Agent) checkHeartbeat() {
	a.vehicle.CheckHeartbeat()
	ok := a.vehicle.Status().Heartbeat == state.HeartbeatOK
	a.heartbeatOK.Store(ok)
	metrics.HeartbeatHealthy.Set(metrics.BoolValue(ok))
}

func (a *Agent) Ready() error {
	if !a.link.Connected() {
		return errLinkDown
	}
	if !a.heartbeatOK.Load() {
		return errNoHeartbeat
	}
	return nil
}

func (a *Agent) Snapshot(ctx context.Context) (any, error) {
	var view VehicleView
	err := a.loop.Call(ctx, func() {
		view = VehicleView{
			ID:         a.vid,
			Target:     a.vehicle.Target(),
			Status:     a.vehicle.Status(),
			Telemetry:  a.vehicle.Telemetry(),
			Parameters: a.params.Len(),
		}
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
