// Package logger adapts logrus to the ports.Logger interface.
package logger

import (
	"context"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements ports.Logger using logrus.
type LogrusAdapter struct {
	log *logrus.Logger
}

// New creates a logrus-backed logger at the given level. Unknown levels
// fall back to info.
func New(level string) *LogrusAdapter {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return &LogrusAdapter{log: log}
}

func (l *LogrusAdapter) Debug(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.entry(fields).Debug(msg)
}

func (l *LogrusAdapter) Info(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.entry(fields).Info(msg)
}

func (l *LogrusAdapter) Warn(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.entry(fields).Warn(msg)
}

func (l *LogrusAdapter) Error(_ context.Context, err error, msg string, fields ...map[string]interface{}) {
	entry := l.entry(fields)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(msg)
}

func (l *LogrusAdapter) entry(fields []map[string]interface{}) *logrus.Entry {
	entry := logrus.NewEntry(l.log)
	for _, f := range fields {
		entry = entry.WithFields(logrus.Fields(f))
	}
	return entry
}
