package gcsagent

import (
	"github.com/autopeer-io/gcslink/internal/autopilot/core"
	"github.com/autopeer-io/gcslink/pkg/log"
)

// logMirror copies vehicle log lines into the agent log.
type logMirror struct {
	logger log.Logger
}

var _ core.Notifier = logMirror{}

func newLogMirror(logger log.Logger) logMirror {
	return logMirror{logger: logger}
}

func (m logMirror) NotifyEvent(ev core.Event) {
	m.logger.Debug("Vehicle event", "type", ev.Type)
}

func (m logMirror) LogMessage(level core.LogLevel, text string) {
	switch level {
	case core.LogVerbose, core.LogDebug:
		m.logger.Debug(text)
	case core.LogInfo:
		m.logger.Info(text)
	case core.LogWarn:
		m.logger.Warn(text)
	default:
		m.logger.Error(nil, text)
	}
}
