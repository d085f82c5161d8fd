package observ

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	logger, err := NewLogger("development", "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug logger does not enable debug level")
	}

	logger, err = NewLogger("production", "warn")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("warn logger still enables info level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("warn logger does not enable error level")
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := NewLogger("development", "loud"); err == nil {
		t.Error("unparseable level accepted")
	}
}
