package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
		if err := SetLevel("info"); err != nil {
			t.Fatalf("restore level: %v", err)
		}
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := capture(t)

	Info(context.Background(), "batch received", "material", "oak")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	if !strings.Contains(line, "ts=") {
		t.Fatalf("expected timestamp field in log line, got %q", line)
	}
	if !strings.Contains(line, "level=info") {
		t.Fatalf("expected level field in log line, got %q", line)
	}
	if !strings.Contains(line, "msg=") {
		t.Fatalf("expected message field in log line, got %q", line)
	}
	if !strings.Contains(line, "material=oak") {
		t.Fatalf("expected structured field in log line, got %q", line)
	}
}

func TestSetLevelGatesDebugOutput(t *testing.T) {
	buf := capture(t)

	Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug output at info level: %q", buf.String())
	}

	if err := SetLevel("DEBUG"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	Debug(context.Background(), "visible")
	if !strings.Contains(buf.String(), "level=debug") {
		t.Fatalf("expected debug line after lowering level, got %q", buf.String())
	}
}

func TestSetLevelRejectsUnknownLevel(t *testing.T) {
	if err := SetLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
