// Package paramcache keeps the last known value of every vehicle parameter.
// It claims PARAM_VALUE messages and turns writes and refreshes into
// PARAM_SET and PARAM_REQUEST_LIST requests.
package paramcache

import (
	"maps"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
	"github.com/autopeer-io/gcslink/pkg/log"
)

// paramTypeReal32 is MAV_PARAM_TYPE_REAL32, used for parameters whose type
// is not known yet.
const paramTypeReal32 = 9

// DefaultRefreshTimeout bounds a full parameter refresh.
const DefaultRefreshTimeout = 30 * time.Second

// Param is a cached parameter.
type Param struct {
	Value float64 `json:"value"`
	Type  uint8   `json:"type"`
	Index uint16  `json:"index"`
}

// Config holds the collaborators of a Cache.
type Config struct {
	// Target returns the autopilot the requests are addressed to.
	Target    func() mavlink.Identity
	Transport core.Transport
	Notifier  core.Notifier
	Executor  core.Executor
	Clock     clock.WithDelayedExecution
	Logger    log.Logger

	RefreshTimeout time.Duration
}

// Cache is a core.ParameterStore. It is not safe for concurrent use and must
// be driven from the vehicle's processing context.
type Cache struct {
	cfg    Config
	logger log.Logger

	params map[string]Param

	// Refresh progress. generation invalidates the timer of an earlier
	// refresh.
	refreshing []core.Listener
	generation int
	total      uint16
	received   map[uint16]struct{}
}

var _ core.ParameterStore = (*Cache)(nil)

func New(cfg Config) *Cache {
	if cfg.Executor == nil {
		cfg.Executor = core.Immediate
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultRefreshTimeout
	}
	if cfg.Target == nil {
		cfg.Target = func() mavlink.Identity {
			return mavlink.Identity{SystemID: 1, ComponentID: mavlink.ComponentAutopilot}
		}
	}
	return &Cache{
		cfg:    cfg,
		logger: cfg.Logger.WithName("params"),
		params: make(map[string]Param),
	}
}

// Get returns the cached value of name.
func (c *Cache) Get(name string) (float64, bool) {
	p, ok := c.params[name]
	return p.Value, ok
}

// Values returns a copy of every cached parameter.
func (c *Cache) Values() map[string]Param {
	return maps.Clone(c.params)
}

// Len returns the number of cached parameters.
func (c *Cache) Len() int { return len(c.params) }

// ProcessMessage claims PARAM_VALUE messages.
func (c *Cache) ProcessMessage(msg *mavlink.Message) bool {
	pv, ok := msg.Payload.(*mavlink.ParamValue)
	if !ok {
		return false
	}

	value := float64(pv.Value)
	prev, known := c.params[pv.ParamID]
	c.params[pv.ParamID] = Param{Value: value, Type: pv.Type, Index: pv.Index}

	if c.refreshing != nil {
		c.progress(pv)
		return true
	}
	if !known || prev.Value != value {
		c.cfg.Notifier.NotifyEvent(core.Event{
			Type: core.EventParameters,
			Data: map[string]float64{pv.ParamID: value},
		})
	}
	return true
}

// progress counts pv toward the running refresh. Echoes of PARAM_SET carry
// index 65535 and are not part of the list.
func (c *Cache) progress(pv *mavlink.ParamValue) {
	if pv.Index >= pv.Count {
		return
	}
	c.total = pv.Count
	c.received[pv.Index] = struct{}{}
	if c.total == 0 || len(c.received) < int(c.total) {
		return
	}

	c.logger.Info("Parameters refreshed", "count", c.total)
	listeners := c.refreshing
	c.endRefresh()
	c.cfg.Notifier.NotifyEvent(core.Event{Type: core.EventParameters, Data: c.snapshot()})
	for _, l := range listeners {
		l.OnSuccess()
	}
}

func (c *Cache) snapshot() map[string]float64 {
	out := make(map[string]float64, len(c.params))
	for name, p := range c.params {
		out[name] = p.Value
	}
	return out
}

func (c *Cache) endRefresh() {
	c.refreshing = nil
	c.received = nil
	c.total = 0
	c.generation++
}

// Write requests a new value. The listener succeeds once the vehicle echoes
// the parameter; the cache is updated from the echo.
func (c *Cache) Write(name string, value float64, l core.Listener) {
	typ := uint8(paramTypeReal32)
	if p, ok := c.params[name]; ok && p.Type != 0 {
		typ = p.Type
	}
	t := c.cfg.Target()
	c.cfg.Transport.Send(&mavlink.ParamSet{
		TargetSystem:    t.SystemID,
		TargetComponent: t.ComponentID,
		ParamID:         name,
		Value:           float32(value),
		Type:            typ,
	}, l)
}

// Refresh requests the whole parameter list. Concurrent refreshes share the
// same request; every listener is resolved when the last parameter arrives or
// the refresh times out.
func (c *Cache) Refresh(l core.Listener) {
	l = core.Guard(l)
	if c.refreshing != nil {
		c.refreshing = append(c.refreshing, l)
		return
	}

	c.refreshing = []core.Listener{l}
	c.received = make(map[uint16]struct{})
	gen := c.generation
	c.cfg.Clock.AfterFunc(c.cfg.RefreshTimeout, func() {
		c.cfg.Executor.Post(func() { c.timeout(gen) })
	})

	t := c.cfg.Target()
	c.cfg.Transport.Send(&mavlink.ParamRequestList{
		TargetSystem:    t.SystemID,
		TargetComponent: t.ComponentID,
	}, core.ListenerFuncs{Error: func(code core.ErrorCode) { c.fail(gen, code) }})
}

func (c *Cache) fail(gen int, code core.ErrorCode) {
	if gen != c.generation || c.refreshing == nil {
		return
	}
	listeners := c.refreshing
	c.endRefresh()
	for _, l := range listeners {
		l.OnError(code)
	}
}

func (c *Cache) timeout(gen int) {
	if gen != c.generation || c.refreshing == nil {
		return
	}
	c.logger.Warn("Parameter refresh timed out", "received", len(c.received), "total", c.total)
	listeners := c.refreshing
	c.endRefresh()
	for _, l := range listeners {
		l.OnTimeout()
	}
}
