package analytics

import (
	"maps"
	"slices"

	"go.uber.org/zap"
)

// Logger writes each event as a structured log line.
type Logger struct {
	logger *zap.Logger
}

// NewLogger returns a sink logging at info level on logger.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Record(name string, attrs map[string]any) {
	fields := make([]zap.Field, 0, len(attrs)+1)
	fields = append(fields, zap.String("event", name))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		fields = append(fields, zap.Any(k, attrs[k]))
	}
	l.logger.Info("analytics event", fields...)
}
