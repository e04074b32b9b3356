package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const serviceName = "blogapi"

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests and tools that never call Init still get a usable logger.
func init() {
	Init("info", "text")
}

// Init configures the global logger. Unknown levels fall back to info.
func Init(level, format string) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Log = logger.WithFields(logrus.Fields{"service": serviceName})
}

// Component returns a child entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
