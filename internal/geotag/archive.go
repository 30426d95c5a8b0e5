// Package geotag archives the position sample of every captured image to
// object storage, one JSON object per image.
package geotag

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/telemetry"
	"github.com/autopeer-io/gcslink/internal/pkg/metrics"
	"github.com/autopeer-io/gcslink/pkg/log"
)

const defaultQueueSize = 64

// Record is the archived object.
type Record struct {
	VehicleID string `json:"vehicleId"`
	telemetry.Geotag
}

// Archive implements core.Notifier and uploads EventGeotag payloads from
// Run, off the processing context.
type Archive struct {
	vid     string
	store   Store
	timeout time.Duration
	logger  log.Logger

	queue chan telemetry.Geotag
}

var _ core.Notifier = (*Archive)(nil)

func NewArchive(vid string, store Store, timeout time.Duration, logger log.Logger) *Archive {
	return &Archive{
		vid:     vid,
		store:   store,
		timeout: timeout,
		logger:  logger,
		queue:   make(chan telemetry.Geotag, defaultQueueSize),
	}
}

// Key is {vehicle}/geotags/{imageIndex}-{unixNano}.json.
func Key(vid string, g telemetry.Geotag) string {
	return fmt.Sprintf("%s/geotags/%d-%d.json", vid, g.ImageIndex, g.Time.UnixNano())
}

func (a *Archive) NotifyEvent(ev core.Event) {
	if ev.Type != core.EventGeotag {
		return
	}
	g, ok := ev.Data.(telemetry.Geotag)
	if !ok {
		return
	}
	select {
	case a.queue <- g:
	default:
		metrics.GeotagUploads.WithLabelValues("dropped").Inc()
	}
}

func (a *Archive) LogMessage(core.LogLevel, string) {}

// Run creates the bucket if needed and uploads queued geotags until ctx is
// cancelled.
func (a *Archive) Run(ctx context.Context) error {
	if err := a.store.EnsureBucket(ctx); err != nil {
		return err
	}
	a.logger.Info("Geotag archive started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case g := <-a.queue:
			a.upload(ctx, g)
		}
	}
}

func (a *Archive) upload(ctx context.Context, g telemetry.Geotag) {
	data, err := json.Marshal(Record{VehicleID: a.vid, Geotag: g})
	if err != nil {
		a.logger.Error(err, "Failed to encode geotag")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	key := Key(a.vid, g)
	if err := a.store.Put(ctx, key, data); err != nil {
		metrics.GeotagUploads.WithLabelValues("error").Inc()
		a.logger.Error(err, "Geotag upload failed", "key", key)
		return
	}
	metrics.GeotagUploads.WithLabelValues("success").Inc()
	a.logger.Debug("Geotag archived", "key", key)
}
