package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	if err := Configure(l, "debug", "json", &buf); err != nil {
		t.Fatalf("Configure err: %v", err)
	}

	l.WithField("component", "test").Debug("hello")
	if !strings.Contains(buf.String(), `"component":"test"`) {
		t.Fatalf("expected json output, got %s", buf.String())
	}
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	if err := Configure(logrus.New(), "loud", "text", nil); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestConfigureRejectsUnknownFormat(t *testing.T) {
	if err := Configure(logrus.New(), "info", "xml", nil); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
