package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan        EventType = "plan"
	EventTypeStage       EventType = "stage"
	EventTypeToolCall    EventType = "tool_call"
	EventTypeToolResult  EventType = "tool_result"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeCost        EventType = "cost"
	EventTypeLLM         EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	StageID   string    `json:"stage_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging. A nil *Logger discards everything.
type Logger struct {
	mu         sync.Mutex
	out        io.Writer
	llmLogPath string
	maxSize    int64
}

// NewLogger writes events to stdout. LLM events are also appended to
// llmLogPath unless it is empty.
func NewLogger(llmLogPath string) *Logger {
	return &Logger{
		out:        os.Stdout,
		llmLogPath: llmLogPath,
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// WithOutput redirects the event stream.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	l.out = w
	return l
}

// Log emits a structured JSON event.
func (l *Logger) Log(evt Event) {
	if l == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		data = []byte(fmt.Sprintf("{\"error\": %q}", "failed to marshal event: "+err.Error()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, string(data))

	if evt.Type == EventTypeLLM && l.llmLogPath != "" {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(runID string, verdict bool, stages []string, matches []string) {
	l.Log(Event{
		Type:  EventTypePlan,
		RunID: runID,
		Data: map[string]any{
			"sector_relevant": verdict,
			"stages":          stages,
			"matches":         matches,
		},
	})
}

func (l *Logger) LogStage(runID, stageID, status, detail string) {
	data := map[string]string{"status": status}
	if detail != "" {
		data["detail"] = detail
	}
	l.Log(Event{Type: EventTypeStage, RunID: runID, StageID: stageID, Data: data})
}

func (l *Logger) LogToolCall(runID, stageID, tool, args string) {
	l.Log(Event{
		Type:    EventTypeToolCall,
		RunID:   runID,
		StageID: stageID,
		Data: map[string]string{
			"tool": tool,
			"args": args,
		},
	})
}

func (l *Logger) LogToolResult(runID, stageID, tool, result string) {
	if len(result) > 2000 {
		result = result[:2000] + "... (truncated)"
	}
	l.Log(Event{
		Type:    EventTypeToolResult,
		RunID:   runID,
		StageID: stageID,
		Data: map[string]string{
			"tool":   tool,
			"result": result,
		},
	})
}

func (l *Logger) LogPolicyCheck(runID, stageID, tool, effect, reason string) {
	l.Log(Event{
		Type:    EventTypePolicyCheck,
		RunID:   runID,
		StageID: stageID,
		Data: map[string]string{
			"tool":   tool,
			"effect": effect,
			"reason": reason,
		},
	})
}

func (l *Logger) LogCost(runID, stageID string, promptTokens, completionTokens int) {
	l.Log(Event{
		Type:    EventTypeCost,
		RunID:   runID,
		StageID: stageID,
		Data: map[string]any{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
			"total_tokens":      promptTokens + completionTokens,
		},
	})
}

func (l *Logger) LogLLM(runID, stageID string, prompt any, response string, toolCalls any) {
	l.Log(Event{
		Type:    EventTypeLLM,
		RunID:   runID,
		StageID: stageID,
		Data: map[string]any{
			"prompt":     prompt,
			"response":   response,
			"tool_calls": toolCalls,
		},
	})
}
