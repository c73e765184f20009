// Package logger holds the process-wide logrus instance. Debug runs get
// human-readable text output; production runs emit JSON for the log
// shipper, with the writer (stdout plus the rotating file) supplied by main.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var root = logrus.New()

// Init configures the shared logger. A nil writer falls back to stdout.
func Init(debug bool, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	root.SetOutput(out)
	if debug {
		root.SetLevel(logrus.DebugLevel)
		root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		root.SetLevel(logrus.InfoLevel)
		root.SetFormatter(&logrus.JSONFormatter{})
	}
}

// Log returns a fresh entry on the shared logger.
func Log() *logrus.Entry {
	return logrus.NewEntry(root)
}

// WithFields returns an entry pre-populated with the given fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log().WithFields(fields)
}
