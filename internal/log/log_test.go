package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitStderrLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Stderr: &buf}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	Debug("debug message")
	Info("info message")
	Warn("warn message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug should be suppressed without Verbose")
	}
	if strings.Contains(out, "info message") {
		t.Error("info should be suppressed without Verbose")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn should always reach stderr")
	}
}

func TestInitVerbose(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Verbose: true, Stderr: &buf}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Error("verbose mode should emit debug to stderr")
	}
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{JSONFormat: true, Stderr: &buf}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	Error("boom", "session", "grid_abc123")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "boom" {
		t.Errorf("msg = %v, want boom", rec["msg"])
	}
	if rec["session"] != "grid_abc123" {
		t.Errorf("session = %v, want grid_abc123", rec["session"])
	}
}

func TestFileWriterRotationTarget(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(dir)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	defer fw.Close()

	if _, err := fw.Write([]byte(`{"msg":"hello"}` + "\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if !datePattern.MatchString(fw.currDate + ".jsonl") {
		t.Errorf("current file %q does not match date pattern", fw.currDate)
	}
}
