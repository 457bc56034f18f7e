package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process logger. It starts out as the logrus standard logger so
// packages can log before InitLogger runs (tests never call it).
var Log = logrus.StandardLogger()

func InitLogger(level string) {
	Log = logrus.StandardLogger()

	// Output to stdout instead of the default stderr
	Log.Out = os.Stdout

	// Set JSON formatter for structured logging
	Log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Log.WithField("level", level).Warn("Unknown log level, falling back to info")
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}
