// Package logging wraps logrus for the handful of diagnostic messages
// the core emits: the enlarged-Unicode-block-range warning (spec.md
// §6) and optional scan tracing (spec.md §6 "-D, --trace"). Everything
// goes to stderr so stdout stays clean for finding output.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// SetDebug turns Debugf tracing on or off (spec.md §6 "-D, --trace").
func SetDebug(on bool) {
	if on {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// Warnf reports a non-fatal condition, such as a Unicode-block range
// enlarged to leading-byte granularity (spec.md §4.3, §6).
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Debugf traces scan progress (window steps, scanner construction);
// silent unless SetDebug(true) was called.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// AddHook registers a logrus hook on the package logger, letting tests
// elsewhere in the module assert on emitted log entries without
// reaching into this package's unexported state.
func AddHook(h logrus.Hook) {
	log.AddHook(h)
}
