package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "warn", "json")

	logger.Info().Msg("dropped")
	logger.Warn().Int64("channel_id", 3).Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line above warn level, got %q", buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected json output: %v", err)
	}
	if entry["message"] != "kept" || entry["level"] != "warn" || entry["channel_id"] != float64(3) {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if lvl := parseLevel("loud"); lvl.String() != "info" {
		t.Fatalf("expected info, got %s", lvl)
	}
	if lvl := parseLevel("WARNING"); lvl.String() != "warn" {
		t.Fatalf("expected warn, got %s", lvl)
	}
}
