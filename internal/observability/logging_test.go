package observability

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug", "json")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want %v", log.GetLevel(), logrus.DebugLevel)
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("formatter = %T, want *logrus.JSONFormatter", log.Formatter)
	}
}

func TestNewLoggerRejectsUnknownValues(t *testing.T) {
	if _, err := NewLogger("loud", "text"); err == nil {
		t.Fatalf("NewLogger() expected error for invalid level")
	}
	if _, err := NewLogger("info", "xml"); err == nil {
		t.Fatalf("NewLogger() expected error for invalid format")
	}
}
