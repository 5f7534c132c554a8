package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"weathersub.app/internal/ports"
)

var _ cron.Logger = cronLogger{}

// cronLogger forwards cron's key/value logging to ports.Logger.
// Routine runner chatter is logged at debug.
type cronLogger struct {
	logger ports.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, toFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := append(toFields(keysAndValues), ports.F("error", err))
	l.logger.Error("cron: "+msg, fields...)
}

func toFields(keysAndValues []interface{}) []ports.Field {
	fields := make([]ports.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		var value interface{}
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		fields = append(fields, ports.F(key, value))
	}
	return fields
}
