// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level       string
	Format      string
	Environment string
	Output      io.Writer
}

// New builds a logger from opts. JSON output is used in production and
// staging, or whenever Format is "json".
func New(opts Options) *logrus.Logger {
	log := logrus.New()
	Configure(log, opts)
	return log
}

func Configure(log *logrus.Logger, opts Options) {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	log.SetOutput(output)

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.Warnf("invalid log level %q, defaulting to info", opts.Level)
	} else {
		log.SetLevel(level)
	}

	if useJSON(opts) {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
		return
	}
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

func useJSON(opts Options) bool {
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(opts.Environment)) {
	case "production", "staging":
		return true
	default:
		return false
	}
}
