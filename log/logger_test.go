package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// decodeEntry parses one JSON log line.
func decodeEntry(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v\n%s", err, line)
	}
	return entry
}

func TestLogger_CarriesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerWithWriter(false, &buf).
		WithRun("run-001").
		WithEndpoint("localhost", 9876)

	logger.Info("stage starting", map[string]any{"stage": "clear_scene"})

	entry := decodeEntry(t, buf.String())
	if entry["message"] != "stage starting" {
		t.Errorf("message = %v, want stage starting", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["run_id"] != "run-001" {
		t.Errorf("run_id = %v, want run-001", entry["run_id"])
	}
	if entry["host"] != "localhost" {
		t.Errorf("host = %v, want localhost", entry["host"])
	}
	if entry["port"] != float64(9876) {
		t.Errorf("port = %v, want 9876", entry["port"])
	}
}

func TestLogger_DebugLevelGating(t *testing.T) {
	var quiet bytes.Buffer
	newLoggerWithWriter(false, &quiet).Debug("round trip detail", nil)
	if quiet.Len() != 0 {
		t.Errorf("debug entry emitted at info level: %s", quiet.String())
	}

	var verbose bytes.Buffer
	newLoggerWithWriter(true, &verbose).Debug("round trip detail", nil)
	if verbose.Len() == 0 {
		t.Error("debug entry suppressed in debug mode")
	}
}

func TestWithOutput_RedirectsEntries(t *testing.T) {
	var original, redirected bytes.Buffer
	logger := newLoggerWithWriter(false, &original)

	logger.WithOutput(&redirected).Info("moved", nil)

	if original.Len() != 0 {
		t.Errorf("entry written to the original writer: %s", original.String())
	}
	if !strings.Contains(redirected.String(), "moved") {
		t.Errorf("redirected output = %q, want the entry", redirected.String())
	}
}

func TestSugar_PrintfFormatting(t *testing.T) {
	var buf bytes.Buffer
	sugar := newLoggerWithWriter(false, &buf).Sugar()

	sugar.Infof("%s succeeded after %d attempt(s)", "Scene Clearing", 2)
	sugar.Warnf("journal append failed: %v", "disk full")
	sugar.Errorf("stage %s failed", "import_parts")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("entries = %d, want 3", len(lines))
	}

	info := decodeEntry(t, lines[0])
	if info["message"] != "Scene Clearing succeeded after 2 attempt(s)" {
		t.Errorf("formatted message = %v", info["message"])
	}
	if warn := decodeEntry(t, lines[1]); warn["level"] != "warn" {
		t.Errorf("level = %v, want warn", warn["level"])
	}
	if errEntry := decodeEntry(t, lines[2]); errEntry["level"] != "error" {
		t.Errorf("level = %v, want error", errEntry["level"])
	}
}

func TestNop_DiscardsEverything(t *testing.T) {
	logger := Nop()
	logger.Info("dropped", nil)
	logger.Sugar().Infof("dropped %d", 1)
}
