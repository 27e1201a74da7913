package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestCloudRunHandlerSeverityAndData(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerWithWriter(slog.LevelInfo, &buf))

	log.Debug("hidden")
	log.Warn("duplicate reference", "reference", "987654", "error", errors.New("boom"))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0]["severity"] != "WARNING" {
		t.Fatalf("severity = %v, want WARNING", lines[0]["severity"])
	}
	data, ok := lines[0]["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data: %#v", lines[0])
	}
	if data["reference"] != "987654" {
		t.Fatalf("reference = %v", data["reference"])
	}
	if data["error"] != "boom" {
		t.Fatalf("error attr should render as message, got %v", data["error"])
	}
}

func TestCloudRunHandlerWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCloudRunHandlerWithWriter(slog.LevelDebug, &buf)).
		With("request_id", "r1").
		WithGroup("ingest")

	log.Info("stored", "attempt", 2)

	lines := decodeLines(t, &buf)
	data := lines[0]["data"].(map[string]any)
	if data["request_id"] != "r1" {
		t.Fatalf("request_id = %v", data["request_id"])
	}
	if data["ingest.attempt"] != float64(2) {
		t.Fatalf("ingest.attempt = %v", data["ingest.attempt"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
