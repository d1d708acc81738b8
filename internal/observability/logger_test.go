package observability

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_EmitsJSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("").WithOutput(&buf)

	logger.LogPlan("run-1", true, []string{"internal_data", "context_analysis"}, []string{`\bkiln\b`})
	logger.LogStage("run-1", "internal_data", "completed", "")

	scanner := bufio.NewScanner(&buf)
	var events []Event
	for scanner.Scan() {
		var evt Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		events = append(events, evt)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventTypePlan || events[0].RunID != "run-1" {
		t.Errorf("unexpected plan event: %+v", events[0])
	}
	if events[1].Type != EventTypeStage || events[1].StageID != "internal_data" {
		t.Errorf("unexpected stage event: %+v", events[1])
	}
	if events[0].Timestamp.IsZero() {
		t.Error("timestamp should be filled in")
	}
}

func TestLogger_WritesLLMEventsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "llm.jsonl")
	logger := NewLogger(path).WithOutput(&bytes.Buffer{})

	logger.LogLLM("run-2", "executive_brief", "prompt text", "brief", nil)
	logger.LogStage("run-2", "executive_brief", "completed", "")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the llm event in the file, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], `"type":"llm"`) {
		t.Errorf("unexpected line: %s", lines[0])
	}
}

func TestLogger_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llm.jsonl")
	logger := NewLogger(path).WithOutput(&bytes.Buffer{})
	logger.maxSize = 10

	logger.LogLLM("run-3", "s", "p", "first", nil)
	logger.LogLLM("run-3", "s", "p", "second", nil)

	if _, err := os.Stat(path + ".old"); err != nil {
		t.Errorf("expected rotated file: %v", err)
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	var logger *Logger
	logger.LogStage("run", "stage", "started", "")
}
