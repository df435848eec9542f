package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup configures the process-wide logrus logger.
// format is "json" or "text"; level is any logrus level name.
func Setup(level, format string) error {
	return Configure(logrus.StandardLogger(), level, format, os.Stdout)
}

// Configure applies level, format and output to the given logger.
func Configure(l *logrus.Logger, level, format string, out io.Writer) error {
	lvl := strings.TrimSpace(level)
	if lvl == "" {
		lvl = "info"
	}
	parsed, err := logrus.ParseLevel(lvl)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l.SetLevel(parsed)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	if out != nil {
		l.SetOutput(out)
	}
	return nil
}

// Component returns an entry tagged with the owning component name.
func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
