package telemetry

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// CronLogger adapts slog to cron's logger interface.
type CronLogger struct {
	Log *slog.Logger
}

var _ cron.Logger = CronLogger{}

func (l CronLogger) Info(msg string, keysAndValues ...any) {
	l.Log.Debug("cron: "+msg, keysAndValues...)
}

func (l CronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.Log.Error("cron: "+msg, append([]any{"err", err}, keysAndValues...)...)
}
