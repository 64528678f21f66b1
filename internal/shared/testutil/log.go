package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is a captured log record.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// BufferedSlogHandler captures log records for testing. Handlers derived
// with WithAttrs share the record buffer of their parent.
type BufferedSlogHandler struct {
	store *recordStore
	attrs []slog.Attr
	t     *testing.T
}

type recordStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// NewBufferedSlogHandler creates a handler that also echoes records to t.Logf
// when t is not nil.
func NewBufferedSlogHandler(t *testing.T) *BufferedSlogHandler {
	return &BufferedSlogHandler{store: &recordStore{}, t: t}
}

// Handle implements slog.Handler
func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// Enabled implements slog.Handler. Every level is captured.
func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler
func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &BufferedSlogHandler{store: h.store, attrs: merged, t: h.t}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *BufferedSlogHandler) WithGroup(string) slog.Handler {
	return h
}

// GetRecords returns a copy of the captured records.
func (h *BufferedSlogHandler) GetRecords() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	records := make([]LogRecord, len(h.store.records))
	copy(records, h.store.records)
	return records
}

// GetRecordsByLevel returns the records logged at level.
func (h *BufferedSlogHandler) GetRecordsByLevel(level slog.Level) []LogRecord {
	var filtered []LogRecord
	for _, r := range h.GetRecords() {
		if r.Level == level {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ContainsMessage reports whether any record message contains message.
func (h *BufferedSlogHandler) ContainsMessage(message string) bool {
	for _, r := range h.GetRecords() {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ContainsAttr reports whether any record carries key with value.
func (h *BufferedSlogHandler) ContainsAttr(key string, value any) bool {
	for _, r := range h.GetRecords() {
		if val, ok := r.Attrs[key]; ok && val == value {
			return true
		}
	}
	return false
}

// Count returns the number of captured records.
func (h *BufferedSlogHandler) Count() int {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return len(h.store.records)
}

// NewTestLogger creates a logger backed by a buffered handler.
func NewTestLogger(t *testing.T) (*slog.Logger, *BufferedSlogHandler) {
	handler := NewBufferedSlogHandler(t)
	return slog.New(handler), handler
}

// AssertLogContains fails t unless a record at level contains message.
func AssertLogContains(t *testing.T, handler *BufferedSlogHandler, level slog.Level, message string) {
	t.Helper()

	records := handler.GetRecordsByLevel(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}

	t.Errorf("Expected log message not found at level %s: %q", level, message)
	for _, r := range records {
		t.Logf("  - %s", r.Message)
	}
}

// AssertNoErrors fails t if any error-level record was captured.
func AssertNoErrors(t *testing.T, handler *BufferedSlogHandler) {
	t.Helper()

	for _, r := range handler.GetRecordsByLevel(slog.LevelError) {
		t.Errorf("Unexpected error log: %s: %v", r.Message, r.Attrs)
	}
}
