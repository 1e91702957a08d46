package utils

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stdout)
	defer SetVerboseLogging(false)

	SetVerboseLogging(false)
	LogInfo("POLLER", "hidden %d", 1)
	LogDebug("POLLER", "hidden too")
	if buf.Len() != 0 {
		t.Errorf("Expected no output with verbose off, got %q", buf.String())
	}

	LogError("API", "boom: %s", "bad")
	if !strings.Contains(buf.String(), "[ERROR] [API] boom: bad") {
		t.Errorf("Expected tagged error line, got %q", buf.String())
	}

	buf.Reset()
	SetVerboseLogging(true)
	LogInfo("", "plain")
	if !strings.Contains(buf.String(), "[INFO] plain") {
		t.Errorf("Expected untagged info line, got %q", buf.String())
	}
	if !VerboseLogging() {
		t.Error("Expected VerboseLogging to report true")
	}
}
