// Package log is a thin facade over logrus shared by every command and
// package, so GUI, TUI and CLI paths log through one configuration.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetDebug toggles debug-level output.
func SetDebug(debug bool) {
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects log output, mainly for tests and for keeping the
// TUI's alternate screen clean.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// F builds a structured field set for LogWithFields.
func F(kv ...interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}

// LogWithFields logs a message with structured fields at info level.
func LogWithFields(fields logrus.Fields, msg string) {
	logger.WithFields(fields).Info(msg)
}

func Info(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Debug logs a message followed by its arguments.
func Debug(msg string, args ...interface{}) {
	logger.Debugf(msg+": %v", args...)
}

func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Error logs a message followed by its arguments.
func Error(msg string, args ...interface{}) {
	logger.Errorf(msg+": %v", args...)
}

func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// Warn logs a message followed by its arguments.
func Warn(msg string, args ...interface{}) {
	logger.Warnf(msg+": %v", args...)
}

func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}
