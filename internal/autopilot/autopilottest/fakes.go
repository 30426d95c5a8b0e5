// Package autopilottest provides recording fakes for the autopilot core
// collaborators.
package autopilottest

import (
	"sync"

	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/internal/autopilot/mavlink"
)

// LogLine is a vehicle log line captured by Recorder.
type LogLine struct {
	Level core.LogLevel
	Text  string
}

// Recorder is a core.Notifier that keeps everything it receives.
type Recorder struct {
	mu     sync.Mutex
	events []core.Event
	logs   []LogLine
}

var _ core.Notifier = (*Recorder)(nil)

func (r *Recorder) NotifyEvent(ev core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) LogMessage(level core.LogLevel, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, LogLine{Level: level, Text: text})
}

func (r *Recorder) Events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Event(nil), r.events...)
}

// EventsOf returns the recorded events of type t in arrival order.
func (r *Recorder) EventsOf(t core.EventType) []core.Event {
	var out []core.Event
	for _, ev := range r.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (r *Recorder) Count(t core.EventType) int { return len(r.EventsOf(t)) }

func (r *Recorder) Logs() []LogLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogLine(nil), r.logs...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events, r.logs = nil, nil
}

// Transport records outgoing messages. Resolve, when set, is called for
// every message and may resolve the listener immediately.
type Transport struct {
	Resolve func(msg mavlink.Payload, l core.Listener)

	Sent      []mavlink.Payload
	Listeners []core.Listener
}

var _ core.Transport = (*Transport)(nil)

func (t *Transport) Send(msg mavlink.Payload, l core.Listener) {
	l = core.Guard(l)
	t.Sent = append(t.Sent, msg)
	t.Listeners = append(t.Listeners, l)
	if t.Resolve != nil {
		t.Resolve(msg, l)
	}
}

// Commands returns the COMMAND_LONG messages sent so far.
func (t *Transport) Commands() []*mavlink.CommandLong {
	var out []*mavlink.CommandLong
	for _, m := range t.Sent {
		if c, ok := m.(*mavlink.CommandLong); ok {
			out = append(out, c)
		}
	}
	return out
}

// CommandIDs returns the command numbers of Commands in order.
func (t *Transport) CommandIDs() []mavlink.Cmd {
	var out []mavlink.Cmd
	for _, c := range t.Commands() {
		out = append(out, c.Command)
	}
	return out
}

// Last returns the most recently sent message, or nil.
func (t *Transport) Last() mavlink.Payload {
	if len(t.Sent) == 0 {
		return nil
	}
	return t.Sent[len(t.Sent)-1]
}

// Succeed resolves every outgoing message with success.
func Succeed(_ mavlink.Payload, l core.Listener) { l.OnSuccess() }

// TimeOut resolves every outgoing message with a timeout.
func TimeOut(_ mavlink.Payload, l core.Listener) { l.OnTimeout() }

// Fail returns a resolver that reports code for every outgoing message.
func Fail(code core.ErrorCode) func(mavlink.Payload, core.Listener) {
	return func(_ mavlink.Payload, l core.Listener) { l.OnError(code) }
}

// ParamWrite is a write captured by Params.
type ParamWrite struct {
	Name  string
	Value float64
}

// Params is an in-memory core.ParameterStore.
type Params struct {
	Values    map[string]float64
	Writes    []ParamWrite
	Refreshes int
	Claim     func(msg *mavlink.Message) bool
}

var _ core.ParameterStore = (*Params)(nil)

func NewParams(kv map[string]float64) *Params {
	if kv == nil {
		kv = map[string]float64{}
	}
	return &Params{Values: kv}
}

func (p *Params) Get(name string) (float64, bool) {
	v, ok := p.Values[name]
	return v, ok
}

func (p *Params) Write(name string, value float64, l core.Listener) {
	p.Writes = append(p.Writes, ParamWrite{Name: name, Value: value})
	p.Values[name] = value
	core.Guard(l).OnSuccess()
}

func (p *Params) Refresh(l core.Listener) {
	p.Refreshes++
	core.Guard(l).OnSuccess()
}

func (p *Params) ProcessMessage(msg *mavlink.Message) bool {
	return p.Claim != nil && p.Claim(msg)
}

// Processor is a MessageProcessor that claims messages of the given kinds and
// records what it saw.
type Processor struct {
	Kinds map[mavlink.Kind]bool
	Seen  []mavlink.Kind
}

func (p *Processor) ProcessMessage(msg *mavlink.Message) bool {
	p.Seen = append(p.Seen, msg.Kind())
	return p.Kinds[msg.Kind()]
}

// Listener records the outcome it receives.
type Listener struct {
	Successes int
	Errors    []core.ErrorCode
	Timeouts  int
}

func (l *Listener) OnSuccess()                  { l.Successes++ }
func (l *Listener) OnError(code core.ErrorCode) { l.Errors = append(l.Errors, code) }
func (l *Listener) OnTimeout()                  { l.Timeouts++ }

// Resolutions returns how many outcomes were delivered in total.
func (l *Listener) Resolutions() int { return l.Successes + len(l.Errors) + l.Timeouts }
