package logging

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Fields represents structured context for a log entry.
// Keys should be short, lowerCamelCase; values must be JSON-serializable.
type Fields map[string]any

// Logger is a tiny leveled logger for internal library use.
// Callers pass a message and optional structured context (key/value pairs).
// Implementations should prefer structured output (JSON-friendly) and avoid
// interpolating user data into the message string.
type Logger interface {
	Debug(msg string, ctx Fields)
	Info(msg string, ctx Fields)
	Warn(msg string, ctx Fields)
	Error(msg string, ctx Fields)
}

// NopLogger discards all logs.
type NopLogger struct{}

// Debug discards the log entry.
func (NopLogger) Debug(string, Fields) {}

// Info discards the log entry.
func (NopLogger) Info(string, Fields) {}

// Warn discards the log entry.
func (NopLogger) Warn(string, Fields) {}

// Error discards the log entry.
func (NopLogger) Error(string, Fields) {}

// JSONLogger emits one JSON object per entry, suitable for CloudWatch log
// groups where each line is indexed as a structured event.
type JSONLogger struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewJSONLogger returns a JSONLogger writing to out.
func NewJSONLogger(out io.Writer) *JSONLogger {
	return &JSONLogger{out: out, now: time.Now}
}

type jsonEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
	Context Fields `json:"ctx,omitempty"`
}

func (l *JSONLogger) emit(level, msg string, ctx Fields) {
	entry := jsonEntry{
		Time:    l.now().UTC().Format(time.RFC3339Nano),
		Level:   level,
		Message: msg,
		Context: ctx,
	}
	b, err := json.Marshal(entry)
	if err != nil {
		// context contained a non-serializable value; keep the message
		entry.Context = nil
		b, _ = json.Marshal(entry)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(b, '\n'))
}

// Debug emits a debug-level entry.
func (l *JSONLogger) Debug(msg string, ctx Fields) { l.emit("debug", msg, ctx) }

// Info emits an info-level entry.
func (l *JSONLogger) Info(msg string, ctx Fields) { l.emit("info", msg, ctx) }

// Warn emits a warn-level entry.
func (l *JSONLogger) Warn(msg string, ctx Fields) { l.emit("warn", msg, ctx) }

// Error emits an error-level entry.
func (l *JSONLogger) Error(msg string, ctx Fields) { l.emit("error", msg, ctx) }

var _ Logger = (*JSONLogger)(nil)
