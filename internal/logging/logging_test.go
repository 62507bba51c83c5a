package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarning)

	logger.Debug("not emitted", nil)
	logger.Info("not emitted either", nil)
	logger.Warn("emitted", nil)
	logger.Error("also emitted", nil)

	out := buf.String()
	if strings.Contains(out, "not emitted") {
		t.Errorf("low-level entries leaked: %q", out)
	}
	if !strings.Contains(out, `level=warning msg="emitted"`) {
		t.Errorf("missing warning entry: %q", out)
	}
	if !strings.Contains(out, `level=error msg="also emitted"`) {
		t.Errorf("missing error entry: %q", out)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug).With(map[string]string{"watch": "/data"})

	logger.Info("poll complete", map[string]string{"events": "3"})

	out := buf.String()
	if !strings.Contains(out, `watch="/data"`) {
		t.Errorf("missing base field: %q", out)
	}
	if !strings.Contains(out, `events="3"`) {
		t.Errorf("missing call field: %q", out)
	}
}

func TestFieldsSorted(t *testing.T) {
	entry := formatEntry(LevelInfo, "m", map[string]string{"b": "2", "a": "1"})
	if strings.Index(entry, `a="1"`) > strings.Index(entry, `b="2"`) {
		t.Errorf("fields not sorted: %q", entry)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": LevelDebug,
		"INFO":  LevelInfo,
		"warn":  LevelWarning,
		"error": LevelError,
	}
	for input, want := range cases {
		got, ok := ParseLevel(input)
		if !ok || got != want {
			t.Errorf("ParseLevel(%q) = %q, %v; want %q", input, got, ok, want)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Error("expected unknown level to fail")
	}
}

func TestNilLoggerSafe(t *testing.T) {
	var logger *Logger
	logger.Info("should not panic", nil)
	logger.With(map[string]string{"k": "v"}).Error("still fine", nil)
}
