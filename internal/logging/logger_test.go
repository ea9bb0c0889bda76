package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	logger.Info("fit started", "identity", "star1", "nlive", 500)
	line := buf.String()
	if !strings.Contains(line, "INF") || !strings.Contains(line, "fit started") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "identity=star1") || !strings.Contains(line, "nlive=500") {
		t.Fatalf("missing attrs in console line: %q", line)
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	logger.Warn("skipping target", "reason", "no match")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if entry["level"] != "warn" || entry["msg"] != "skipping target" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["reason"] != "no match" {
		t.Fatalf("missing attr: %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected format error")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	if strings.Contains(buf.String(), "quiet") {
		t.Fatalf("info leaked past warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "loud") {
		t.Fatalf("warn suppressed: %q", buf.String())
	}
}

func TestConsoleHandlerGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.With("identity", "star9").WithGroup("sampler").Info("done", "niter", 3)
	line := buf.String()
	if !strings.Contains(line, "identity=star9") || !strings.Contains(line, "sampler.niter=3") {
		t.Fatalf("group/attr rendering wrong: %q", line)
	}
}

func TestNewJobLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "star1")
	logger, closeFn, err := NewJobLogger(dir)
	if err != nil {
		t.Fatalf("job logger: %v", err)
	}
	logger.Info("sampling finished", "logz", -42.0)
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stdout.log"))
	if err != nil {
		t.Fatalf("read job log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("job log line not json: %v", err)
	}
	if entry["msg"] != "sampling finished" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLevelFallback(t *testing.T) {
	if parseLevel("bogus") != slog.LevelInfo {
		t.Fatal("unknown level should fall back to info")
	}
	if parseLevel("") != slog.LevelInfo {
		t.Fatal("empty level should fall back to info")
	}
}
