package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() == zerolog.Disabled {
		t.Error("Expected logger to be enabled")
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("sender", "5511999998888").Msg("message received")

	output := buf.String()
	if output == "" {
		t.Fatal("Expected log output, got empty string")
	}
	if !strings.Contains(output, "message received") {
		t.Errorf("Expected output to contain the message, got: %s", output)
	}
	if !strings.Contains(output, "5511999998888") {
		t.Errorf("Expected output to contain the sender field, got: %s", output)
	}
}
